package repositories

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pranavxdevops/membership-backend/config"
	"github.com/pranavxdevops/membership-backend/models"
)

// RequestRepository persists organisation-info update requests.
type RequestRepository struct {
	collection *mongo.Collection
}

func NewRequestRepository(db *mongo.Client) *RequestRepository {
	return &RequestRepository{
		collection: config.GetCollection(db, "requests"),
	}
}

// FindByID returns the request with the given hex id. Returns
// mongo.ErrNoDocuments for unknown or malformed ids.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.Request, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var request models.Request
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "deletedAt": nil}).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByMemberID returns the single existing request for a member, any
// status, soft-deleted included. The upsert logic in the service keeps at
// most one per member; skipping a soft-deleted document here would make the
// insert path collide with the unique memberId index.
func (r *RequestRepository) FindByMemberID(ctx context.Context, memberID string) (*models.Request, error) {
	var request models.Request
	err := r.collection.FindOne(ctx, bson.M{"memberId": memberID}).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByMemberID returns all non-deleted requests for a member, newest first.
func (r *RequestRepository) ListByMemberID(ctx context.Context, memberID string) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// List returns a page of non-deleted requests, optionally filtered by status.
func (r *RequestRepository) List(ctx context.Context, status string, page, limit int) (*models.RequestList, error) {
	filter := bson.M{"deletedAt": nil}
	if status != "" {
		filter["requestStatus"] = status
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.Request{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.RequestList{
		Requests:   requests,
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(limit))),
	}, nil
}

// Insert stores a new request and returns it with its assigned id.
func (r *RequestRepository) Insert(ctx context.Context, request *models.Request) (*models.Request, error) {
	request.ID = primitive.NewObjectID()
	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ReplaceContent overwrites an existing request's proposed organisation info
// and status in place, clearing any reviewer comments. A soft-deleted
// request is revived by the overwrite.
func (r *RequestRepository) ReplaceContent(ctx context.Context, id primitive.ObjectID, organisationInfo map[string]interface{}, status string) (*models.Request, error) {
	update := bson.M{
		"$set": bson.M{
			"organisationInfo": organisationInfo,
			"requestStatus":    status,
			"comments":         nil,
			"deletedAt":        nil,
			"updatedAt":        time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var request models.Request
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateStatus persists a status decision together with its comments.
// Comments are stored as null when nil.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, comments *string) (*models.Request, error) {
	update := bson.M{
		"$set": bson.M{
			"requestStatus": status,
			"comments":      comments,
			"updatedAt":     time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var request models.Request
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

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

// MemberRepository persists canonical member records.
type MemberRepository struct {
	collection *mongo.Collection
}

func NewMemberRepository(db *mongo.Client) *MemberRepository {
	return &MemberRepository{
		collection: config.GetCollection(db, "members"),
	}
}

// FindByMemberID resolves a member by its business id ("MEMBER-001").
func (r *MemberRepository) FindByMemberID(ctx context.Context, memberID string) (*models.Member, error) {
	var member models.Member
	err := r.collection.FindOne(ctx, bson.M{"memberId": memberID, "deletedAt": nil}).Decode(&member)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GenericUpdate merges the given organisationInfo fields into the member
// record. Only the submitted keys are written; everything else survives.
func (r *MemberRepository) GenericUpdate(ctx context.Context, memberID string, organisationInfo map[string]interface{}) (*models.Member, error) {
	set := bson.M{"updatedAt": time.Now()}
	for key, value := range organisationInfo {
		set["organisationInfo."+key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var member models.Member
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, bson.M{"$set": set}, opts).Decode(&member)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Insert stores a new member record.
func (r *MemberRepository) Insert(ctx context.Context, member *models.Member) (*models.Member, error) {
	member.ID = primitive.NewObjectID()
	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now
	if member.Status == "" {
		member.Status = models.MemberStatusPending
	}
	if member.PaymentStatus == "" {
		member.PaymentStatus = models.PaymentStatusUnpaid
	}

	_, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		return nil, err
	}
	return member, nil
}

// List returns a page of non-deleted members, newest first.
func (r *MemberRepository) List(ctx context.Context, page, limit int) (*models.MemberList, error) {
	filter := bson.M{"deletedAt": nil}

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

	members := []models.Member{}
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &models.MemberList{
		Members:    members,
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(limit))),
	}, nil
}

// UpdateStatus sets the member lifecycle status.
func (r *MemberRepository) UpdateStatus(ctx context.Context, memberID, status string) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePaymentStatus marks the membership fee as paid or unpaid.
func (r *MemberRepository) UpdatePaymentStatus(ctx context.Context, memberID, paymentStatus string) error {
	update := bson.M{
		"$set": bson.M{
			"paymentStatus": paymentStatus,
			"updatedAt":     time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateLogo stores the uploaded logo path on the member record.
func (r *MemberRepository) UpdateLogo(ctx context.Context, memberID, logoPath string) error {
	update := bson.M{
		"$set": bson.M{
			"logoPath":  logoPath,
			"updatedAt": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SoftDelete marks a member as deleted without removing the document.
func (r *MemberRepository) SoftDelete(ctx context.Context, memberID string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"deletedAt": now,
			"updatedAt": now,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": memberID, "deletedAt": nil}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pranavxdevops/membership-backend/config"
	"github.com/pranavxdevops/membership-backend/models"
)

// PaymentRepository records membership-fee transactions.
type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Client) *PaymentRepository {
	return &PaymentRepository{
		collection: config.GetCollection(db, "payments"),
	}
}

func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	payment.ID = primitive.NewObjectID()
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) FindByCartID(ctx context.Context, cartID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"cartId": cartID}).Decode(&payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkResult stores the gateway's final status and transaction reference.
func (r *PaymentRepository) MarkResult(ctx context.Context, cartID, tranRef, status string) (*models.Payment, error) {
	update := bson.M{
		"$set": bson.M{
			"tranRef":   tranRef,
			"status":    status,
			"updatedAt": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var payment models.Payment
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"cartId": cartID}, update, opts).Decode(&payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) ListByMemberID(ctx context.Context, memberID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

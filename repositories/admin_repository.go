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

// AdminRepository persists console users, their roles and their in-app
// notifications.
type AdminRepository struct {
	admins        *mongo.Collection
	roles         *mongo.Collection
	notifications *mongo.Collection
}

func NewAdminRepository(db *mongo.Client) *AdminRepository {
	return &AdminRepository{
		admins:        config.GetCollection(db, "admins"),
		roles:         config.GetCollection(db, "roles"),
		notifications: config.GetCollection(db, "notifications"),
	}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.admins.FindOne(ctx, bson.M{"email": email}).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := r.admins.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) InsertAdmin(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	admin.ID = primitive.NewObjectID()
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	_, err := r.admins.InsertOne(ctx, admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// ListAdmins returns all console users with password hashes projected out.
func (r *AdminRepository) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.admins.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	admins := []models.Admin{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// ListActiveAdmins returns all active console users, password hashes
// projected out. Used to fan out request notifications.
func (r *AdminRepository) ListActiveAdmins(ctx context.Context) ([]models.Admin, error) {
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cursor, err := r.admins.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	admins := []models.Admin{}
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *AdminRepository) FindRole(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	var role models.Role
	err := r.roles.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *AdminRepository) InsertRole(ctx context.Context, role *models.Role) (*models.Role, error) {
	role.ID = primitive.NewObjectID()
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now

	_, err := r.roles.InsertOne(ctx, role)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (r *AdminRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, name string, privileges []string) (*models.Role, error) {
	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"privileges": privileges,
			"updatedAt":  time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var role models.Role
	err := r.roles.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SaveNotification stores an in-app notification for one admin.
func (r *AdminRepository) SaveNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()

	_, err := r.notifications.InsertOne(ctx, notification)
	return err
}

// ListNotifications returns an admin's notifications, newest first.
func (r *AdminRepository) ListNotifications(ctx context.Context, adminID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := r.notifications.Find(ctx, bson.M{"adminId": adminID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags one of the admin's notifications as read.
func (r *AdminRepository) MarkNotificationRead(ctx context.Context, id, adminID primitive.ObjectID) error {
	result, err := r.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "adminId": adminID},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *AdminRepository) ListRoles(ctx context.Context) ([]models.Role, error) {
	cursor, err := r.roles.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	roles := []models.Role{}
	if err := cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types emitted by the request pipeline.
const (
	NotificationTypeRequestSubmitted = "request_submitted"
	NotificationTypeRequestProcessed = "request_processed"
)

// Notification is an in-app notification shown in the admin console.
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AdminID   primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"`
	Data      interface{}        `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

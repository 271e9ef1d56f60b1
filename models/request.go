package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses
const (
	RequestStatusDraft    = "DRAFT"
	RequestStatusPending  = "PENDING"
	RequestStatusApproved = "APPROVED"
	RequestStatusRejected = "REJECTED"
)

// ValidRequestStatus reports whether s is one of the four request statuses.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusDraft, RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// Request represents a proposed change to a member's organisation profile
// awaiting admin review.
type Request struct {
	ID               primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	MemberID         string                 `json:"memberId" bson:"memberId"`
	OrganisationInfo map[string]interface{} `json:"organisationInfo" bson:"organisationInfo"`
	RequestStatus    string                 `json:"requestStatus" bson:"requestStatus"`
	Comments         *string                `json:"comments" bson:"comments"`
	DeletedAt        *time.Time             `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// CreateRequestData is the body for POST /api/requests and /api/requests/draft
type CreateRequestData struct {
	MemberID         string                 `json:"memberId" validate:"required"`
	OrganisationInfo map[string]interface{} `json:"organisationInfo" validate:"required"`
}

// UpdateRequestData is the body for PUT /api/requests/:id
type UpdateRequestData struct {
	RequestStatus string `json:"requestStatus" validate:"required"`
	Comments      string `json:"comments,omitempty"`
}

// RequestList is a paginated page of requests.
type RequestList struct {
	Requests   []Request `json:"requests"`
	TotalCount int64     `json:"totalCount"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

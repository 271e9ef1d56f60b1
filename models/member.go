package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member statuses
const (
	MemberStatusPending  = "pending"
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

// Member payment statuses
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// UserSnapshot is a denormalized copy of a member's contact user. The
// primary snapshot carries the email used for request notifications.
type UserSnapshot struct {
	FullName  string `json:"fullName" bson:"fullName"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	IsPrimary bool   `json:"isPrimary" bson:"isPrimary"`
}

// MemberLocation is the geo point shown on the member map.
type MemberLocation struct {
	Country string  `json:"country,omitempty" bson:"country,omitempty"`
	City    string  `json:"city,omitempty" bson:"city,omitempty"`
	Lat     float64 `json:"lat" bson:"lat"`
	Lng     float64 `json:"lng" bson:"lng"`
}

// Member is the canonical record for an organisation's membership.
// OrganisationInfo is intentionally open-ended: it mirrors whatever the
// registration forms submit and is merged field-by-field on approval.
type Member struct {
	ID               primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	MemberID         string                 `json:"memberId" bson:"memberId"`
	OrganisationInfo map[string]interface{} `json:"organisationInfo" bson:"organisationInfo"`
	Users            []UserSnapshot         `json:"users,omitempty" bson:"users,omitempty"`
	Status           string                 `json:"status" bson:"status"`
	PaymentStatus    string                 `json:"paymentStatus" bson:"paymentStatus"`
	Location         *MemberLocation        `json:"location,omitempty" bson:"location,omitempty"`
	LogoPath         string                 `json:"logoPath,omitempty" bson:"logoPath,omitempty"`
	DeletedAt        *time.Time             `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// PrimaryEmail returns the primary user snapshot's email, falling back to
// the first snapshot carrying one. Empty when the member has none.
func (m *Member) PrimaryEmail() string {
	for _, u := range m.Users {
		if u.IsPrimary && u.Email != "" {
			return u.Email
		}
	}
	for _, u := range m.Users {
		if u.Email != "" {
			return u.Email
		}
	}
	return ""
}

// CreateMemberData is the body for POST /api/members
type CreateMemberData struct {
	MemberID         string                 `json:"memberId" validate:"required"`
	OrganisationInfo map[string]interface{} `json:"organisationInfo" validate:"required"`
	Users            []UserSnapshot         `json:"users,omitempty"`
	Location         *MemberLocation        `json:"location,omitempty"`
}

// MemberList is a paginated page of members.
type MemberList struct {
	Members    []Member `json:"members"`
	TotalCount int64    `json:"totalCount"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Privileges recognized by the admin console.
const (
	PrivilegeManageRequests = "manage_requests"
	PrivilegeManageMembers  = "manage_members"
	PrivilegeManageAdmins   = "manage_admins"
	PrivilegeManageRoles    = "manage_roles"
	PrivilegeViewPayments   = "view_payments"
)

// Role groups privileges for admin users.
type Role struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name" bson:"name"`
	Privileges []string           `json:"privileges" bson:"privileges"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HasPrivilege reports whether the role grants the named privilege.
func (r *Role) HasPrivilege(privilege string) bool {
	for _, p := range r.Privileges {
		if p == privilege {
			return true
		}
	}
	return false
}

// Admin is an internal console user.
type Admin struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password,omitempty" bson:"password"`
	FullName  string             `json:"fullName" bson:"fullName"`
	RoleID    primitive.ObjectID `json:"roleId,omitempty" bson:"roleId,omitempty"`
	FCMToken  string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// LoginData is the body for POST /api/admin/login
type LoginData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateAdminData is the body for POST /api/admin/admins
type CreateAdminData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	RoleID   string `json:"roleId,omitempty"`
}

// RoleData is the body for role create/update.
type RoleData struct {
	Name       string   `json:"name" validate:"required"`
	Privileges []string `json:"privileges" validate:"required"`
}

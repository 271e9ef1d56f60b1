package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/pranavxdevops/membership-backend/middleware"
	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/repositories"
	"github.com/pranavxdevops/membership-backend/services"
)

// AdminController handles console user and role management
type AdminController struct {
	admins *repositories.AdminRepository
	roles  *services.RoleService
}

// NewAdminController creates a new admin controller
func NewAdminController(admins *repositories.AdminRepository, roles *services.RoleService) *AdminController {
	return &AdminController{admins: admins, roles: roles}
}

// CreateAdmin handles POST /api/admin/admins
func (ac *AdminController) CreateAdmin(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.CreateAdminData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email, full name and a password of at least 8 characters are required",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to hash password",
		})
	}

	admin := &models.Admin{
		Email:    data.Email,
		Password: string(hashed),
		FullName: data.FullName,
		IsActive: true,
	}

	if data.RoleID != "" {
		roleID, err := primitive.ObjectIDFromHex(data.RoleID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid role ID format",
			})
		}
		// A bad roleId in the body is the caller's mistake, not a missing
		// resource.
		if _, err := ac.roles.GetRole(ctx, roleID); err != nil {
			if _, ok := err.(*services.NotFoundError); ok {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: err.Error(),
				})
			}
			return respondServiceError(c, err)
		}
		admin.RoleID = roleID
	}

	created, err := ac.admins.InsertAdmin(ctx, admin)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "An admin with this email already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create admin",
		})
	}

	created.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Admin created successfully",
		Data:    created,
	})
}

// GetAdmins handles GET /api/admin/admins
func (ac *AdminController) GetAdmins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins, err := ac.admins.ListAdmins(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve admins",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Admins retrieved successfully",
		Data:    admins,
	})
}

// CreateRole handles POST /api/admin/roles
func (ac *AdminController) CreateRole(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.RoleData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Role name and privileges are required",
		})
	}

	role, err := ac.admins.InsertRole(ctx, &models.Role{
		Name:       data.Name,
		Privileges: data.Privileges,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create role",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Role created successfully",
		Data:    role,
	})
}

// UpdateRole handles PUT /api/admin/roles/:id
func (ac *AdminController) UpdateRole(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	roleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid role ID format",
		})
	}

	var data models.RoleData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Role name and privileges are required",
		})
	}

	role, err := ac.admins.UpdateRole(ctx, roleID, data.Name, data.Privileges)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Role not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update role",
		})
	}

	// Privilege changes must not wait out the cache TTL.
	ac.roles.Invalidate(ctx, roleID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Role updated successfully",
		Data:    role,
	})
}

// GetNotifications handles GET /api/admin/notifications
func (ac *AdminController) GetNotifications(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetAdminFromToken(c)
	adminID, err := primitive.ObjectIDFromHex(claims.AdminID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	notifications, err := ac.admins.ListNotifications(ctx, adminID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    notifications,
	})
}

// MarkNotificationRead handles PUT /api/admin/notifications/:id/read
func (ac *AdminController) MarkNotificationRead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	claims := middleware.GetAdminFromToken(c)
	adminID, err := primitive.ObjectIDFromHex(claims.AdminID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID format",
		})
	}

	if err := ac.admins.MarkNotificationRead(ctx, notificationID, adminID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Notification not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update notification",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
	})
}

// GetRoles handles GET /api/admin/roles
func (ac *AdminController) GetRoles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	roles, err := ac.admins.ListRoles(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve roles",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Roles retrieved successfully",
		Data:    roles,
	})
}

package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranavxdevops/membership-backend/controllers"
	"github.com/pranavxdevops/membership-backend/middleware"
	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/services"
	"github.com/pranavxdevops/membership-backend/websocket"
)

// RegisterAdminRoutes sets up the admin console: login, admin and role
// management, and the live dashboard websocket.
func RegisterAdminRoutes(e *echo.Echo, authController *controllers.AuthController, adminController *controllers.AdminController, roleService *services.RoleService, hub *websocket.Hub) {
	e.POST("/api/admin/login", authController.Login)

	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())

	r.POST("/admins", adminController.CreateAdmin, middleware.RequirePrivilege(roleService, models.PrivilegeManageAdmins))
	r.GET("/admins", adminController.GetAdmins, middleware.RequirePrivilege(roleService, models.PrivilegeManageAdmins))

	r.GET("/notifications", adminController.GetNotifications)
	r.PUT("/notifications/:id/read", adminController.MarkNotificationRead)

	r.POST("/roles", adminController.CreateRole, middleware.RequirePrivilege(roleService, models.PrivilegeManageRoles))
	r.PUT("/roles/:id", adminController.UpdateRole, middleware.RequirePrivilege(roleService, models.PrivilegeManageRoles))
	r.GET("/roles", adminController.GetRoles, middleware.RequirePrivilege(roleService, models.PrivilegeManageRoles))

	// Live dashboard events for request submissions and decisions
	r.GET("/ws", func(c echo.Context) error {
		claims := middleware.GetAdminFromToken(c)
		adminID, err := primitive.ObjectIDFromHex(claims.AdminID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid or expired token",
			})
		}
		return websocket.HandleWebSocket(c, hub, adminID)
	})
}

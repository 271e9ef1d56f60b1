package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pranavxdevops/membership-backend/controllers"
	"github.com/pranavxdevops/membership-backend/middleware"
	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/services"
)

// RegisterPaymentRoutes sets up membership-fee payment routes. The callback
// endpoint stays open because the gateway posts to it directly; the handler
// re-verifies every transaction against the gateway before trusting it.
func RegisterPaymentRoutes(e *echo.Echo, paymentController *controllers.PaymentController, roleService *services.RoleService, apiKey string) {
	e.POST("/api/payments/callback", paymentController.PaymentCallback)

	r := e.Group("/api/payments")
	r.Use(middleware.APIKey(apiKey))
	r.POST("/membership", paymentController.CreateMembershipPayment)

	a := e.Group("/api/admin/payments")
	a.Use(middleware.JWTMiddleware())
	a.GET("/member/:memberId", paymentController.GetMemberPayments, middleware.RequirePrivilege(roleService, models.PrivilegeViewPayments))
}

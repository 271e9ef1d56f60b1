package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pranavxdevops/membership-backend/controllers"
	"github.com/pranavxdevops/membership-backend/middleware"
)

// RegisterRequestRoutes sets up the organisation-info request pipeline.
// Every endpoint in this group is guarded by the shared API key.
func RegisterRequestRoutes(e *echo.Echo, requestController *controllers.RequestController, apiKey string) {
	r := e.Group("/api/requests")
	r.Use(middleware.APIKey(apiKey))

	r.POST("", requestController.CreateRequest)
	r.POST("/draft", requestController.SaveDraft)
	r.PUT("/:id", requestController.UpdateRequest)
	r.GET("", requestController.GetRequests)
	r.GET("/:id", requestController.GetRequest)
	r.GET("/member/:memberId", requestController.GetRequestsByMember)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/pranavxdevops/membership-backend/controllers"
	"github.com/pranavxdevops/membership-backend/middleware"
	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/services"
)

// RegisterMemberRoutes sets up member directory and profile routes. Directory
// search and membership cards are public; everything that mutates a member
// is console-only.
func RegisterMemberRoutes(e *echo.Echo, memberController *controllers.MemberController, roleService *services.RoleService) {
	e.GET("/api/members/search", memberController.SearchMembers)
	e.GET("/api/members/:memberId/card", memberController.GetMembershipCard)

	r := e.Group("/api/members")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequirePrivilege(roleService, models.PrivilegeManageMembers))

	r.POST("", memberController.CreateMember)
	r.GET("", memberController.GetMembers)
	r.GET("/:memberId", memberController.GetMember)
	r.PUT("/:memberId", memberController.UpdateMember)
	r.DELETE("/:memberId", memberController.DeleteMember)
	r.POST("/:memberId/logo", memberController.UploadLogo)
}

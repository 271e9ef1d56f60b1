package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/repositories"
	"github.com/pranavxdevops/membership-backend/services"
	"github.com/pranavxdevops/membership-backend/utils"
	"github.com/pranavxdevops/membership-backend/websocket"
)

// RequestController handles the organisation-info update request endpoints
type RequestController struct {
	service *services.RequestService
	admins  *repositories.AdminRepository
	hub     *websocket.Hub
}

// NewRequestController creates a new request controller
func NewRequestController(service *services.RequestService, admins *repositories.AdminRepository, hub *websocket.Hub) *RequestController {
	return &RequestController{service: service, admins: admins, hub: hub}
}

// respondServiceError maps service failures onto HTTP status codes.
func respondServiceError(c echo.Context, err error) error {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: validationErr.Message,
		})
	case errors.As(err, &notFoundErr):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: notFoundErr.Message,
		})
	default:
		log.Printf("Internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
}

// CreateRequest handles POST /api/requests
func (rc *RequestController) CreateRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.CreateRequestData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "memberId and organisationInfo are required",
		})
	}

	request, err := rc.service.CreateRequest(ctx, data.MemberID, data.OrganisationInfo)
	if err != nil {
		return respondServiceError(c, err)
	}

	rc.hub.NotifyRequestSubmitted(request)
	go rc.pushToAdmins("New update request",
		"Member "+request.MemberID+" submitted an organisation info update",
		map[string]string{"type": models.NotificationTypeRequestSubmitted, "requestId": request.ID.Hex()})

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Request created successfully",
		Data:    request,
	})
}

// SaveDraft handles POST /api/requests/draft
func (rc *RequestController) SaveDraft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.CreateRequestData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "memberId and organisationInfo are required",
		})
	}

	request, err := rc.service.SaveDraft(ctx, data.MemberID, data.OrganisationInfo)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Draft saved successfully",
		Data:    request,
	})
}

// UpdateRequest handles PUT /api/requests/:id
func (rc *RequestController) UpdateRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Request ID is required",
		})
	}

	var data models.UpdateRequestData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "requestStatus is required",
		})
	}

	request, err := rc.service.UpdateRequest(ctx, id, data.RequestStatus, data.Comments)
	if err != nil {
		return respondServiceError(c, err)
	}

	rc.hub.NotifyRequestProcessed(request)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Request updated successfully",
		Data:    request,
	})
}

// GetRequests handles GET /api/requests?status=&page=&limit=
func (rc *RequestController) GetRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	list, err := rc.service.FindAll(ctx, c.QueryParam("status"), page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Requests retrieved successfully",
		Data:    list,
	})
}

// GetRequestsByMember handles GET /api/requests/member/:memberId
func (rc *RequestController) GetRequestsByMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, err := rc.service.FindByMemberID(ctx, c.Param("memberId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Requests retrieved successfully",
		Data:    requests,
	})
}

// GetRequest handles GET /api/requests/:id
func (rc *RequestController) GetRequest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	request, err := rc.service.FindByID(ctx, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Request retrieved successfully",
		Data:    request,
	})
}

// pushToAdmins stores an in-app notification for every active admin and
// pushes to their registered devices. Best-effort only; called from a
// goroutine.
func (rc *RequestController) pushToAdmins(title, message string, data map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins, err := rc.admins.ListActiveAdmins(ctx)
	if err != nil {
		log.Printf("Failed to list admins for notification: %v", err)
		return
	}

	tokens := []string{}
	for _, admin := range admins {
		notification := &models.Notification{
			AdminID: admin.ID,
			Title:   title,
			Message: message,
			Type:    data["type"],
			Data:    data,
		}
		if err := rc.admins.SaveNotification(ctx, notification); err != nil {
			log.Printf("Failed to save notification for admin %s: %v", admin.ID.Hex(), err)
		}
		if admin.FCMToken != "" {
			tokens = append(tokens, admin.FCMToken)
		}
	}
	utils.NotifyAdmins(tokens, title, message, data)
}

package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/repositories"
	"github.com/pranavxdevops/membership-backend/services"
	"github.com/pranavxdevops/membership-backend/utils"
)

// MemberController handles the member directory endpoints
type MemberController struct {
	members      *repositories.MemberRepository
	search       *services.TypesenseService
	directoryURL string
}

// NewMemberController creates a new member controller
func NewMemberController(members *repositories.MemberRepository, search *services.TypesenseService, directoryURL string) *MemberController {
	return &MemberController{members: members, search: search, directoryURL: directoryURL}
}

// CreateMember handles POST /api/members
func (mc *MemberController) CreateMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.CreateMemberData
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

	member, err := mc.members.Insert(ctx, &models.Member{
		MemberID:         data.MemberID,
		OrganisationInfo: data.OrganisationInfo,
		Users:            data.Users,
		Location:         data.Location,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Member with id %s already exists", data.MemberID),
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create member",
		})
	}

	mc.search.IndexAsync(member)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Member created successfully",
		Data:    member,
	})
}

// GetMember handles GET /api/members/:memberId
func (mc *MemberController) GetMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	member, err := mc.members.FindByMemberID(ctx, c.Param("memberId"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Member not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve member",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member retrieved successfully",
		Data:    member,
	})
}

// GetMembers handles GET /api/members?page=&limit=
func (mc *MemberController) GetMembers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	list, err := mc.members.List(ctx, page, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve members",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Members retrieved successfully",
		Data:    list,
	})
}

// UpdateMember handles PUT /api/members/:memberId, merging the submitted
// organisationInfo fields into the record.
func (mc *MemberController) UpdateMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var body struct {
		OrganisationInfo map[string]interface{} `json:"organisationInfo" validate:"required"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "organisationInfo is required",
		})
	}

	member, err := mc.members.GenericUpdate(ctx, c.Param("memberId"), body.OrganisationInfo)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Member not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update member",
		})
	}

	mc.search.IndexAsync(member)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member updated successfully",
		Data:    member,
	})
}

// DeleteMember handles DELETE /api/members/:memberId (soft delete)
func (mc *MemberController) DeleteMember(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	memberID := c.Param("memberId")
	if err := mc.members.SoftDelete(ctx, memberID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Member not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete member",
		})
	}

	go func() {
		if err := mc.search.DeleteMember(memberID); err != nil {
			c.Logger().Warnf("Failed to remove member %s from search index: %v", memberID, err)
		}
	}()

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member deleted successfully",
	})
}

// UploadLogo handles POST /api/members/:memberId/logo
func (mc *MemberController) UploadLogo(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	memberID := c.Param("memberId")
	if _, err := mc.members.FindByMemberID(ctx, memberID); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Member not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve member",
		})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Logo file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer src.Close()

	fileData, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}

	logoPath, err := utils.SaveMemberLogo(fileData, file.Filename, memberID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := mc.members.UpdateLogo(ctx, memberID, logoPath); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save logo path",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logo uploaded successfully",
		Data:    map[string]string{"logoPath": logoPath},
	})
}

// GetMembershipCard handles GET /api/members/:memberId/card. The returned QR
// code encodes the member's public directory URL.
func (mc *MemberController) GetMembershipCard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	member, err := mc.members.FindByMemberID(ctx, c.Param("memberId"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Member not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve member",
		})
	}

	qrCode, err := mc.generateCardQRCode(member.MemberID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate membership card",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Membership card generated successfully",
		Data: map[string]interface{}{
			"memberId": member.MemberID,
			"status":   member.Status,
			"qrCode":   qrCode,
		},
	})
}

// generateCardQRCode creates a QR code image for a member's directory entry
func (mc *MemberController) generateCardQRCode(memberID string) (string, error) {
	content := fmt.Sprintf("%s/members/%s", mc.directoryURL, memberID)

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return "", fmt.Errorf("failed to scale QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SearchMembers handles GET /api/members/search?q=&page=
func (mc *MemberController) SearchMembers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Search query is required",
		})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := mc.search.Search(query, page, limit)
	if err != nil {
		c.Logger().Errorf("Member search failed: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Member search is currently unavailable",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Search results retrieved successfully",
		Data:    result,
	})
}

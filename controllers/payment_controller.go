package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/repositories"
	"github.com/pranavxdevops/membership-backend/services"
)

// PaymentController handles membership-fee payments through PayTabs
type PaymentController struct {
	payments *repositories.PaymentRepository
	members  *repositories.MemberRepository
	gateway  *services.PayTabsService
}

// NewPaymentController creates a new payment controller
func NewPaymentController(payments *repositories.PaymentRepository, members *repositories.MemberRepository, gateway *services.PayTabsService) *PaymentController {
	return &PaymentController{payments: payments, members: members, gateway: gateway}
}

// CreateMembershipPayment handles POST /api/payments/membership. It creates
// a hosted payment page and returns the redirect URL for the frontend.
func (pc *PaymentController) CreateMembershipPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.MembershipPaymentData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "memberId and a positive amount are required",
		})
	}
	if data.Currency == "" {
		data.Currency = "USD"
	}

	member, err := pc.members.FindByMemberID(ctx, data.MemberID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Member with id " + data.MemberID + " not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve member",
		})
	}

	gatewayResp, cartID, err := pc.gateway.CreatePaymentPage(member, data.Amount, data.Currency)
	if err != nil {
		log.Printf("Failed to create payment page for %s: %v", data.MemberID, err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Payment gateway is currently unavailable",
		})
	}

	payment, err := pc.payments.Insert(ctx, &models.Payment{
		MemberID: data.MemberID,
		CartID:   cartID,
		TranRef:  gatewayResp.TranRef,
		Amount:   data.Amount,
		Currency: data.Currency,
		Status:   "initiated",
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to record payment",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payment page created successfully",
		Data: map[string]interface{}{
			"payment":     payment,
			"redirectUrl": gatewayResp.RedirectURL,
		},
	})
}

// PaymentCallback handles POST /api/payments/callback. The posted payload is
// never trusted: the transaction is re-queried against the gateway before
// the member is marked as paid.
func (pc *PaymentController) PaymentCallback(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data models.PaymentCallbackData
	if err := c.Bind(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid callback body",
		})
	}
	if err := c.Validate(&data); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "tran_ref and cart_id are required",
		})
	}

	payment, err := pc.payments.FindByCartID(ctx, data.CartID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Unknown payment reference",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payment",
		})
	}

	verification, err := pc.gateway.QueryTransaction(data.TranRef)
	if err != nil {
		log.Printf("Failed to verify transaction %s: %v", data.TranRef, err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Failed to verify transaction with gateway",
		})
	}

	status := "failed"
	if services.IsAuthorized(verification) {
		status = "paid"
	}

	updated, err := pc.payments.MarkResult(ctx, payment.CartID, data.TranRef, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update payment",
		})
	}

	if status == "paid" {
		if err := pc.members.UpdatePaymentStatus(ctx, payment.MemberID, models.PaymentStatusPaid); err != nil {
			log.Printf("Failed to mark member %s as paid: %v", payment.MemberID, err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payment " + status,
		Data:    updated,
	})
}

// GetMemberPayments handles GET /api/payments/member/:memberId
func (pc *PaymentController) GetMemberPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payments, err := pc.payments.ListByMemberID(ctx, c.Param("memberId"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to retrieve payments",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    payments,
	})
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment records a membership-fee transaction processed through PayTabs.
type Payment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	MemberID  string             `json:"memberId" bson:"memberId"`
	CartID    string             `json:"cartId" bson:"cartId"`
	TranRef   string             `json:"tranRef,omitempty" bson:"tranRef,omitempty"`
	Amount    float64            `json:"amount" bson:"amount"`
	Currency  string             `json:"currency" bson:"currency"`
	Status    string             `json:"status" bson:"status"` // "initiated", "paid", "failed"
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MembershipPaymentData is the body for POST /api/payments/membership
type MembershipPaymentData struct {
	MemberID string  `json:"memberId" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency,omitempty"`
}

// PayTabsPaymentRequest is the hosted-payment-page create request.
type PayTabsPaymentRequest struct {
	ProfileID       int64            `json:"profile_id"`
	TranType        string           `json:"tran_type"`
	TranClass       string           `json:"tran_class"`
	CartID          string           `json:"cart_id"`
	CartCurrency    string           `json:"cart_currency"`
	CartAmount      float64          `json:"cart_amount"`
	CartDescription string           `json:"cart_description"`
	Callback        string           `json:"callback,omitempty"`
	Return          string           `json:"return,omitempty"`
	CustomerDetails *PayTabsCustomer `json:"customer_details,omitempty"`
}

// PayTabsCustomer identifies the paying member on the hosted page.
type PayTabsCustomer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PayTabsPaymentResponse is returned by both page-create and query calls.
type PayTabsPaymentResponse struct {
	TranRef       string                `json:"tran_ref,omitempty"`
	CartID        string                `json:"cart_id,omitempty"`
	RedirectURL   string                `json:"redirect_url,omitempty"`
	PaymentResult *PayTabsPaymentResult `json:"payment_result,omitempty"`
	Code          int                   `json:"code,omitempty"`
	Message       string                `json:"message,omitempty"`
}

// PayTabsPaymentResult carries the gateway's final decision for a
// transaction. ResponseStatus "A" means authorized.
type PayTabsPaymentResult struct {
	ResponseStatus  string `json:"response_status"`
	ResponseCode    string `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	TransactionTime string `json:"transaction_time,omitempty"`
}

// PaymentCallbackData is the body PayTabs posts to the callback endpoint.
type PaymentCallbackData struct {
	TranRef string `json:"tran_ref" validate:"required"`
	CartID  string `json:"cart_id" validate:"required"`
}

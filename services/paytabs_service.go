package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pranavxdevops/membership-backend/models"
)

// PayTabsService handles interactions with the PayTabs hosted payment page
// API: creating payment pages for membership fees and verifying transaction
// results on callback.
type PayTabsService struct {
	baseURL     string
	profileID   int64
	serverKey   string
	callbackURL string
	client      *http.Client
}

// NewPayTabsService creates a new PayTabs service instance
func NewPayTabsService(baseURL string, profileID int64, serverKey, callbackBaseURL string) *PayTabsService {
	if profileID == 0 || serverKey == "" {
		log.Printf("WARNING: PayTabs credentials not fully configured:")
		if profileID == 0 {
			log.Printf("  - PAYTABS_PROFILE_ID is missing")
		}
		if serverKey == "" {
			log.Printf("  - PAYTABS_SERVER_KEY is missing")
		}
		log.Printf("Please set these environment variables for membership payments to work")
	}

	return &PayTabsService{
		baseURL:     baseURL,
		profileID:   profileID,
		serverKey:   serverKey,
		callbackURL: callbackBaseURL,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// makeRequest performs an HTTP request to the PayTabs API
func (s *PayTabsService) makeRequest(endpoint string, payload interface{}) (*models.PayTabsPaymentResponse, error) {
	if s.profileID == 0 || s.serverKey == "" {
		return nil, fmt.Errorf("missing PayTabs credentials. Please set PAYTABS_PROFILE_ID and PAYTABS_SERVER_KEY environment variables")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call PayTabs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PayTabs response: %w", err)
	}

	var paytabsResp models.PayTabsPaymentResponse
	if err := json.Unmarshal(body, &paytabsResp); err != nil {
		return nil, fmt.Errorf("failed to decode PayTabs response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if paytabsResp.Message != "" {
			return nil, fmt.Errorf("PayTabs error (%d): %s", resp.StatusCode, paytabsResp.Message)
		}
		return nil, fmt.Errorf("PayTabs returned status %d", resp.StatusCode)
	}

	return &paytabsResp, nil
}

// CreatePaymentPage requests a hosted payment page for a membership fee and
// returns the gateway response carrying the redirect URL. The generated cart
// id ties the later callback back to the member.
func (s *PayTabsService) CreatePaymentPage(member *models.Member, amount float64, currency string) (*models.PayTabsPaymentResponse, string, error) {
	cartID := uuid.New().String()

	payload := models.PayTabsPaymentRequest{
		ProfileID:       s.profileID,
		TranType:        "sale",
		TranClass:       "ecom",
		CartID:          cartID,
		CartCurrency:    currency,
		CartAmount:      amount,
		CartDescription: fmt.Sprintf("Membership fee for %s", member.MemberID),
		Callback:        s.callbackURL + "/api/payments/callback",
		Return:          s.callbackURL + "/payments/result",
	}

	if email := member.PrimaryEmail(); email != "" {
		payload.CustomerDetails = &models.PayTabsCustomer{Email: email}
	}

	resp, err := s.makeRequest("/payment/request", payload)
	if err != nil {
		return nil, "", err
	}
	if resp.RedirectURL == "" {
		return nil, "", fmt.Errorf("PayTabs did not return a redirect URL")
	}

	return resp, cartID, nil
}

// QueryTransaction verifies a transaction reference against the gateway.
// Used on callback instead of trusting the posted payload.
func (s *PayTabsService) QueryTransaction(tranRef string) (*models.PayTabsPaymentResponse, error) {
	payload := map[string]interface{}{
		"profile_id": s.profileID,
		"tran_ref":   tranRef,
	}
	return s.makeRequest("/payment/query", payload)
}

// IsAuthorized reports whether a queried transaction was approved by the
// gateway.
func IsAuthorized(resp *models.PayTabsPaymentResponse) bool {
	return resp != nil && resp.PaymentResult != nil && resp.PaymentResult.ResponseStatus == "A"
}

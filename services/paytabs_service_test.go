package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavxdevops/membership-backend/models"
)

func TestCreatePaymentPage(t *testing.T) {
	member := testMember("MEMBER-001", "contact@acme.test")

	t.Run("sends the hosted page request and returns the redirect URL", func(t *testing.T) {
		var received models.PayTabsPaymentRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payment/request", r.URL.Path)
			assert.Equal(t, "server-key-123", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			json.NewEncoder(w).Encode(models.PayTabsPaymentResponse{
				TranRef:     "TST2211100001",
				CartID:      received.CartID,
				RedirectURL: "https://secure.paytabs.com/payment/page/TST2211100001",
			})
		}))
		defer server.Close()

		svc := NewPayTabsService(server.URL, 12345, "server-key-123", "https://api.example.org")

		resp, cartID, err := svc.CreatePaymentPage(member, 250, "USD")
		require.NoError(t, err)

		assert.NotEmpty(t, cartID)
		assert.Equal(t, cartID, received.CartID)
		assert.Equal(t, "https://secure.paytabs.com/payment/page/TST2211100001", resp.RedirectURL)

		assert.Equal(t, int64(12345), received.ProfileID)
		assert.Equal(t, "sale", received.TranType)
		assert.Equal(t, "ecom", received.TranClass)
		assert.Equal(t, 250.0, received.CartAmount)
		assert.Equal(t, "USD", received.CartCurrency)
		assert.Equal(t, "https://api.example.org/api/payments/callback", received.Callback)
		require.NotNil(t, received.CustomerDetails)
		assert.Equal(t, "contact@acme.test", received.CustomerDetails.Email)
	})

	t.Run("fails when the gateway returns no redirect URL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.PayTabsPaymentResponse{TranRef: "TST2211100002"})
		}))
		defer server.Close()

		svc := NewPayTabsService(server.URL, 12345, "server-key-123", "https://api.example.org")

		_, _, err := svc.CreatePaymentPage(member, 250, "USD")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redirect URL")
	})

	t.Run("surfaces the gateway error message on non-200 responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.PayTabsPaymentResponse{Code: 1, Message: "Invalid credentials"})
		}))
		defer server.Close()

		svc := NewPayTabsService(server.URL, 12345, "bad-key", "https://api.example.org")

		_, _, err := svc.CreatePaymentPage(member, 250, "USD")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid credentials")
	})

	t.Run("fails fast without credentials", func(t *testing.T) {
		svc := NewPayTabsService("http://unused", 0, "", "https://api.example.org")

		_, _, err := svc.CreatePaymentPage(member, 250, "USD")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing PayTabs credentials")
	})
}

func TestQueryTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/query", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "TST2211100001", payload["tran_ref"])

		json.NewEncoder(w).Encode(models.PayTabsPaymentResponse{
			TranRef: "TST2211100001",
			PaymentResult: &models.PayTabsPaymentResult{
				ResponseStatus:  "A",
				ResponseMessage: "Authorised",
			},
		})
	}))
	defer server.Close()

	svc := NewPayTabsService(server.URL, 12345, "server-key-123", "https://api.example.org")

	resp, err := svc.QueryTransaction("TST2211100001")
	require.NoError(t, err)
	assert.True(t, IsAuthorized(resp))
}

func TestIsAuthorized(t *testing.T) {
	assert.False(t, IsAuthorized(nil))
	assert.False(t, IsAuthorized(&models.PayTabsPaymentResponse{}))
	assert.False(t, IsAuthorized(&models.PayTabsPaymentResponse{
		PaymentResult: &models.PayTabsPaymentResult{ResponseStatus: "D"},
	}))
	assert.True(t, IsAuthorized(&models.PayTabsPaymentResponse{
		PaymentResult: &models.PayTabsPaymentResult{ResponseStatus: "A"},
	}))
}

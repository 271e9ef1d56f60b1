package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKey(t *testing.T) {
	e := echo.New()
	handler := APIKey("secret-key")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	request := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
		if key != "" {
			req.Header.Set("x-api-key", key)
		}
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		return rec
	}

	t.Run("accepts the configured key", func(t *testing.T) {
		rec := request("secret-key")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		rec := request("wrong-key")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or missing API key")
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		rec := request("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

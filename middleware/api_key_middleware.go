// middleware/api_key_middleware.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pranavxdevops/membership-backend/models"
)

// APIKey guards the request endpoints with a static x-api-key header check.
// These routes are called by the registration frontend, not by logged-in
// console users.
func APIKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := c.Request().Header.Get("x-api-key")
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or missing API key",
				})
			}
			return next(c)
		}
	}
}

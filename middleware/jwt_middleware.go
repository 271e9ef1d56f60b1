// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pranavxdevops/membership-backend/models"
	"github.com/pranavxdevops/membership-backend/services"
)

// JwtCustomClaims for admin console JWT tokens
type JwtCustomClaims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	RoleID  string `json:"roleId,omitempty"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware
func (c JwtCustomClaims) Valid() error {
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	return nil
}

// GetJWTSecret returns the JWT secret from environment variables
func GetJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		panic("JWT_SECRET environment variable is required")
	}
	return secret
}

// GenerateToken issues a signed console token for an admin user.
func GenerateToken(admin *models.Admin) (string, error) {
	claims := &JwtCustomClaims{
		AdminID: admin.ID.Hex(),
		Email:   admin.Email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	if !admin.RoleID.IsZero() {
		claims.RoleID = admin.RoleID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(GetJWTSecret()))
}

// JWTMiddleware returns a configured JWT middleware for console routes
func JWTMiddleware() echo.MiddlewareFunc {
	return echoMiddleware.JWTWithConfig(echoMiddleware.JWTConfig{
		SigningKey: []byte(GetJWTSecret()),
		Claims:     &JwtCustomClaims{},
		SuccessHandler: func(c echo.Context) {
			token := c.Get("user").(*jwt.Token)
			claims := token.Claims.(*JwtCustomClaims)
			c.Set("adminId", claims.AdminID)
			c.Set("email", claims.Email)
			c.Set("roleId", claims.RoleID)
		},
		ErrorHandler: func(err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		},
	})
}

// GetAdminFromToken extracts the validated claims from the request context
func GetAdminFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return &JwtCustomClaims{}
	}
	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return &JwtCustomClaims{}
	}
	return claims
}

// RequirePrivilege rejects console requests whose admin's role does not
// grant the named privilege.
func RequirePrivilege(roleService *services.RoleService, privilege string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetAdminFromToken(c)

			roleID, err := primitive.ObjectIDFromHex(claims.RoleID)
			if err != nil {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Your role does not allow this action",
				})
			}

			allowed, err := roleService.HasPrivilege(c.Request().Context(), roleID, privilege)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Failed to resolve role privileges",
				})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Your role does not allow this action",
				})
			}

			return next(c)
		}
	}
}

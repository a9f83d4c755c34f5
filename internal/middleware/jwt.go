package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/utils"
)

// Context keys populated by the auth chain.
const (
	ContextClaims = "claims"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the decoded claims on the context.  The provided secret must match
// the one used when issuing tokens.  Any failure ends the request with 401;
// guards and handlers behind it never run.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return Unauthorized(c)
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return Unauthorized(c)
			}
			c.Set(ContextClaims, claims)
			c.Set(ContextEmail, claims.Email)
			return next(c)
		}
	}
}

// bearerToken splits "<scheme> <token>".  The scheme must be Bearer, compared
// case-insensitively.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Unauthorized writes the 401 body shared by every auth failure.
func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": true, "message": "unauthorized access"})
}

// Forbidden writes the 403 body shared by role and ownership failures.
func Forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": true, "message": "forbidden access"})
}

package middleware

// identity.go holds the accessors handlers use to read what the auth chain
// stored on the echo context.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/utils"
)

// ClaimsFrom returns the verified claims, if JWTAuth ran.
func ClaimsFrom(c echo.Context) (*utils.Claims, bool) {
	cl, ok := c.Get(ContextClaims).(*utils.Claims)
	return cl, ok && cl != nil
}

// EmailFrom returns the authenticated email or "".
func EmailFrom(c echo.Context) string {
	s, _ := c.Get(ContextEmail).(string)
	return s
}

// RoleFrom returns the role resolved by a guard; RoleUnset when no guard ran.
func RoleFrom(c echo.Context) model.Role {
	r, _ := c.Get(ContextRole).(model.Role)
	return r
}

// IsOwner reports whether the authenticated email is exactly email.
func IsOwner(c echo.Context, email string) bool {
	me := EmailFrom(c)
	return me != "" && me == email
}

package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/model"
)

// RoleResolver looks up the stored role for an email.  Unknown emails
// resolve to RoleUnset without error.
type RoleResolver interface {
	RoleByEmail(ctx context.Context, email string) (model.Role, error)
}

// Guard is a predicate over the resolved role.
type Guard func(model.Role) bool

// AdminOnly admits exactly the Admin role.
func AdminOnly(r model.Role) bool {
	switch r {
	case model.RoleAdmin:
		return true
	case model.RoleInstructor, model.RoleStudent, model.RoleUnset:
		return false
	}
	return false
}

// InstructorOnly admits exactly the Instructor role.
func InstructorOnly(r model.Role) bool {
	switch r {
	case model.RoleInstructor:
		return true
	case model.RoleAdmin, model.RoleStudent, model.RoleUnset:
		return false
	}
	return false
}

// StudentOnly admits any unprivileged caller: an explicit Student role or
// no role at all.
func StudentOnly(r model.Role) bool {
	switch r {
	case model.RoleStudent, model.RoleUnset:
		return true
	case model.RoleAdmin, model.RoleInstructor:
		return false
	}
	return false
}

// RequireRole resolves the caller's role on every request and rejects with
// 403 when guard refuses it.  It must be mounted after JWTAuth; without
// claims on the context the request is treated as unauthenticated.
func RequireRole(resolver RoleResolver, guard Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email := EmailFrom(c)
			if email == "" {
				return Unauthorized(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			role, err := resolver.RoleByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("resolve role: %w", err)
			}
			if !guard(role) {
				return Forbidden(c)
			}
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}

// RequireAdmin admits Admin callers only.
func RequireAdmin(resolver RoleResolver) echo.MiddlewareFunc {
	return RequireRole(resolver, AdminOnly)
}

// RequireInstructor admits Instructor callers only.
func RequireInstructor(resolver RoleResolver) echo.MiddlewareFunc {
	return RequireRole(resolver, InstructorOnly)
}

// RequireStudent admits callers with no privileged role.
func RequireStudent(resolver RoleResolver) echo.MiddlewareFunc {
	return RequireRole(resolver, StudentOnly)
}

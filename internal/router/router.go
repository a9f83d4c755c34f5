// Package router wires handlers and their auth chains onto echo.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/handler"
	"github.com/iliyamo/course-enrollment/internal/middleware"
)

// Handlers is everything the routes dispatch to.  Roles are resolved
// through Users on every guarded request.
type Handlers struct {
	Auth    *handler.AuthHandler
	Users   *handler.UserHandler
	Classes *handler.ClassHandler
	Cart    *handler.CartHandler
	Payment *handler.PaymentHandler
}

// Register mounts every route.  Guarded routes run JWTAuth first and then
// exactly one role guard.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	RegisterPublic(e, h)
	RegisterAuth(e, h, jwtSecret)
	RegisterAdmin(e, h, jwtSecret)
	RegisterInstructor(e, h, jwtSecret)
	RegisterStudent(e, h, jwtSecret)
}

// RegisterPublic mounts routes that need no token.
func RegisterPublic(e *echo.Echo, h Handlers) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)

	e.POST("/users", h.Users.Create)
	e.GET("/users", h.Users.List)
	e.GET("/classes", h.Classes.ListApproved)
}

// RegisterAuth mounts token issuance and the token-only role lookup, which
// checks ownership in the handler instead of a role guard.
func RegisterAuth(e *echo.Echo, h Handlers, jwtSecret string) {
	e.POST("/jwt", h.Auth.IssueToken)
	e.GET("/users/:email", h.Users.Role, middleware.JWTAuth(jwtSecret))
}

// RegisterAdmin mounts admin-only routes.  The /users routes share their
// prefix with public routes, so they take middleware per route rather than
// through a group.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireAdmin(h.Users.Users)

	e.PATCH("/users/:id", h.Users.SetRole, auth, admin)
	e.PATCH("/users/admin/:id", h.Users.SetRole, auth, admin)

	g := e.Group("/addedClasses", auth, admin)
	g.GET("", h.Classes.ListAll)
	g.PATCH("/:id", h.Classes.SetStatus)
}

func RegisterInstructor(e *echo.Echo, h Handlers, jwtSecret string) {
	e.POST("/classes", h.Classes.Create,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireInstructor(h.Users.Users),
	)
}

// RegisterStudent mounts the cart and checkout.  Admins and instructors are
// rejected; users without a stored role count as students.
func RegisterStudent(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := middleware.JWTAuth(jwtSecret)
	student := middleware.RequireStudent(h.Users.Users)

	g := e.Group("/selectedClasses", auth, student)
	g.POST("", h.Cart.Add)
	g.GET("", h.Cart.List)
	g.DELETE("/:id", h.Cart.Delete)

	e.POST("/create-payment-intent", h.Payment.CreateIntent, auth, student)
}

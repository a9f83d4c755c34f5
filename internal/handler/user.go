package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/repository"
	"github.com/iliyamo/course-enrollment/internal/service"
)

// UserHandler serves the /users routes.
type UserHandler struct {
	Users  repository.UserStore
	Events service.Publisher
	// Lenient answers {"role":"Student"} instead of 403 when a caller asks
	// for another user's role.
	Lenient bool
}

// NewUserHandler panics on a nil store; a nil publisher becomes service.Noop.
func NewUserHandler(users repository.UserStore, events service.Publisher, lenient bool) *UserHandler {
	if users == nil {
		panic("nil user store passed to NewUserHandler")
	}
	if events == nil {
		events = service.Noop{}
	}
	return &UserHandler{Users: users, Events: events, Lenient: lenient}
}

// Create registers a user on first sign-in.  A second registration with the
// same email is a normal outcome, not an error.
func (h *UserHandler) Create(c echo.Context) error {
	var u model.User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	u.ID = ""
	u.Role = model.RoleUnset
	u.Email = strings.TrimSpace(u.Email)
	if err := c.Validate(&u); err != nil {
		return err
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, created, err := h.Users.Create(ctx, u)
	if errors.Is(err, repository.ErrEmailExists) || (err == nil && !created) {
		return c.JSON(http.StatusOK, echo.Map{"message": "User already exists", "insertedId": nil})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return err
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Role: GET /users/:email.  Callers may only ask about themselves.
func (h *UserHandler) Role(c echo.Context) error {
	email := c.Param("email")
	if !middleware.IsOwner(c, email) {
		if h.Lenient {
			return c.JSON(http.StatusOK, echo.Map{"role": model.RoleStudent.Display()})
		}
		return middleware.Forbidden(c)
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	role, err := h.Users.RoleByEmail(ctx, email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"role": role.Display()})
}

// SetRole: PATCH /users/:id?role=R (admin).
func (h *UserHandler) SetRole(c echo.Context) error {
	role, ok := model.ParseRole(c.QueryParam("role"))
	if !ok || role == model.RoleUnset {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}
	id := c.Param("id")

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, err := h.Users.SetRole(ctx, id, role)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNotMatched
	}
	h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.UserRoleChanged, middleware.EmailFrom(c), id,
		map[string]string{"role": string(role)}))
	return c.JSON(http.StatusOK, res)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/repository"
	"github.com/iliyamo/course-enrollment/internal/service"
)

// ClassHandler serves the class catalogue and its approval workflow.
type ClassHandler struct {
	Classes repository.ClassStore
	Events  service.Publisher
}

// NewClassHandler panics on a nil store; a nil publisher becomes service.Noop.
func NewClassHandler(classes repository.ClassStore, events service.Publisher) *ClassHandler {
	if classes == nil {
		panic("nil class store passed to NewClassHandler")
	}
	if events == nil {
		events = service.Noop{}
	}
	return &ClassHandler{Classes: classes, Events: events}
}

// Create: POST /classes (instructor).  The listing always starts Pending and
// belongs to the calling instructor.
func (h *ClassHandler) Create(c echo.Context) error {
	var cl model.Class
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	me := middleware.EmailFrom(c)
	switch {
	case cl.InstructorEmail == "":
		cl.InstructorEmail = me
	case cl.InstructorEmail != me:
		return middleware.Forbidden(c)
	}
	if cl.InstructorName == "" {
		if claims, ok := middleware.ClaimsFrom(c); ok {
			cl.InstructorName = claims.Name
		}
	}
	cl.ID = ""
	cl.Status = model.StatusPending
	if err := c.Validate(&cl); err != nil {
		return err
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, err := h.Classes.Create(ctx, cl)
	if err != nil {
		return err
	}
	h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.ClassCreated, me, res.InsertedID,
		map[string]string{"name": cl.Name}))
	return c.JSON(http.StatusOK, res)
}

// ListAll: GET /addedClasses (admin), every status.
func (h *ClassHandler) ListAll(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	return classList(c, func() ([]model.Class, error) { return h.Classes.List(ctx) })
}

// ListApproved: GET /classes, public catalogue.
func (h *ClassHandler) ListApproved(c echo.Context) error {
	ctx, cancel := storeCtx(c)
	defer cancel()
	return classList(c, func() ([]model.Class, error) { return h.Classes.ListByStatus(ctx, model.StatusApproved) })
}

func classList(c echo.Context, load func() ([]model.Class, error)) error {
	classes, err := load()
	if err != nil {
		return err
	}
	if classes == nil {
		classes = []model.Class{}
	}
	return c.JSON(http.StatusOK, classes)
}

// SetStatus: PATCH /addedClasses/:id?status=... (admin).
func (h *ClassHandler) SetStatus(c echo.Context) error {
	status := decision(c.QueryParam("status"))
	id := c.Param("id")

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, err := h.Classes.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNotMatched
	}
	h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.ClassStatusChanged, middleware.EmailFrom(c), id,
		map[string]string{"status": string(status)}))
	return c.JSON(http.StatusOK, res)
}

// decision maps the admin's query value onto a final status.  Only an
// explicit approval approves; every other value denies.
func decision(v string) model.ClassStatus {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "approve", "approved":
		return model.StatusApproved
	}
	return model.StatusDenied
}

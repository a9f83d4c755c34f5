package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/model"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/repository"
	"github.com/iliyamo/course-enrollment/internal/service"
)

// CartHandler serves a student's selected classes.  Every operation is
// scoped to the authenticated email.
type CartHandler struct {
	Cart   repository.CartStore
	Events service.Publisher
}

// NewCartHandler panics on a nil store; a nil publisher becomes service.Noop.
func NewCartHandler(cart repository.CartStore, events service.Publisher) *CartHandler {
	if cart == nil {
		panic("nil cart store passed to NewCartHandler")
	}
	if events == nil {
		events = service.Noop{}
	}
	return &CartHandler{Cart: cart, Events: events}
}

func (h *CartHandler) Add(c echo.Context) error {
	var sc model.SelectedClass
	if err := c.Bind(&sc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	me := middleware.EmailFrom(c)
	switch {
	case sc.Email == "":
		sc.Email = me
	case sc.Email != me:
		return middleware.Forbidden(c)
	}
	sc.ID = ""
	if err := c.Validate(&sc); err != nil {
		return err
	}

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, err := h.Cart.Add(ctx, sc)
	if err != nil {
		return err
	}
	h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.CartItemAdded, me, res.InsertedID,
		map[string]string{"classId": sc.ClassID}))
	return c.JSON(http.StatusOK, res)
}

// List: GET /selectedClasses?email=X.  A request without an email gets an
// empty list; asking for someone else's cart is forbidden.
func (h *CartHandler) List(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusOK, []model.SelectedClass{})
	}
	if !middleware.IsOwner(c, email) {
		return middleware.Forbidden(c)
	}
	ctx, cancel := storeCtx(c)
	defer cancel()
	items, err := h.Cart.ListByEmail(ctx, email)
	if err != nil {
		return err
	}
	if items == nil {
		items = []model.SelectedClass{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	me := middleware.EmailFrom(c)

	ctx, cancel := storeCtx(c)
	defer cancel()
	res, err := h.Cart.DeleteOwned(ctx, id, me)
	if errors.Is(err, repository.ErrForbidden) {
		return middleware.Forbidden(c)
	}
	if err != nil {
		return err
	}
	if res.DeletedCount > 0 {
		h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.CartItemRemoved, me, id, nil))
	}
	return c.JSON(http.StatusOK, res)
}

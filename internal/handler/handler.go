// Package handler holds the HTTP handlers.  Each handler performs one store
// or processor call; authentication and role checks happen in middleware
// before a handler runs.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const storeTimeout = 5 * time.Second

// storeCtx bounds a store call by the request context.
func storeCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// bind decodes the body into dst and runs the registered validator.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return c.Validate(dst)
}

var errNotMatched = echo.NewHTTPError(http.StatusNotFound, "not found")

// Root answers GET / for uptime checks that hit the bare host.
func Root(c echo.Context) error {
	return c.String(http.StatusOK, "server is running")
}

// Health is the liveness endpoint.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

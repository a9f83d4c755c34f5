package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/course-enrollment/internal/payment"
	"github.com/iliyamo/course-enrollment/internal/repository"
)

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": true, "message": ...}.  Anything that is not an HTTP error or a
// known sentinel is logged and answered with a generic 500 so store and
// processor details never reach the client.
func ErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := classify(err)

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request().Method,
			"uri":        c.Request().RequestURI,
			"status":     code,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).WithError(err)
		if code >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": true, "message": msg})
		}
		if err != nil {
			log.WithError(err).Error("write error response")
		}
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if he.Code >= http.StatusInternalServerError {
			return he.Code, http.StatusText(he.Code)
		}
		return he.Code, fmt.Sprint(he.Message)
	case errors.Is(err, repository.ErrInvalidID):
		return http.StatusBadRequest, "invalid id"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, "forbidden access"
	case errors.Is(err, payment.ErrUnavailable):
		return http.StatusServiceUnavailable, "payment processor unavailable"
	}
	return http.StatusInternalServerError, "internal server error"
}

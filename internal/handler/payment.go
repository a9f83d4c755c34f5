package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-enrollment/internal/middleware"
	"github.com/iliyamo/course-enrollment/internal/payment"
	"github.com/iliyamo/course-enrollment/internal/queue"
	"github.com/iliyamo/course-enrollment/internal/service"
)

const (
	paymentCurrency = "usd"
	paymentTimeout  = 10 * time.Second
)

// PaymentHandler creates payment intents for a cart total.
type PaymentHandler struct {
	Processor payment.Processor
	Events    service.Publisher
}

// NewPaymentHandler panics on a nil processor; a nil publisher becomes
// service.Noop.
func NewPaymentHandler(p payment.Processor, events service.Publisher) *PaymentHandler {
	if p == nil {
		panic("nil processor passed to NewPaymentHandler")
	}
	if events == nil {
		events = service.Noop{}
	}
	return &PaymentHandler{Processor: p, Events: events}
}

type intentReq struct {
	Price float64 `json:"price" validate:"gt=0"`
}

// CreateIntent: POST /create-payment-intent.  The client confirms the card
// payment itself with the returned secret.
func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req intentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	amount := payment.ToMinorUnits(req.Price)
	if amount <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price too small")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), paymentTimeout)
	defer cancel()
	intent, err := h.Processor.CreateIntent(ctx, amount, paymentCurrency)
	if err != nil {
		return err
	}
	h.Events.Publish(c.Request().Context(), queue.NewEvent(queue.PaymentIntentCreated, middleware.EmailFrom(c), intent.ID,
		map[string]string{"amount": strconv.FormatInt(amount, 10), "currency": paymentCurrency}))
	return c.JSON(http.StatusOK, echo.Map{"clientSecret": intent.ClientSecret})
}

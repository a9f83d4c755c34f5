package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// intentCreator is the slice of the stripe payment intent client we call.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Stripe creates card-only payment intents.  Calls run through a circuit
// breaker that trips after consecutive server-side failures; client errors
// (4xx) do not count against it.
type Stripe struct {
	intents intentCreator
	cb      *gobreaker.CircuitBreaker
}

// NewStripe builds a processor authenticated with secretKey.
func NewStripe(secretKey string) *Stripe {
	return newStripe(client.New(secretKey, nil).PaymentIntents)
}

func newStripe(intents intentCreator) *Stripe {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe-payment-intents",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *stripe.Error
			return errors.As(err, &se) && se.HTTPStatusCode > 0 && se.HTTPStatusCode < 500
		},
	})
	return &Stripe{intents: intents, cb: cb}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.intents.New(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Intent{}, ErrUnavailable
		}
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	pi := out.(*stripe.PaymentIntent)
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount, Currency: string(pi.Currency)}, nil
}

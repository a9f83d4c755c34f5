// Package payment creates payment intents with the card processor.
package payment

import (
	"context"
	"errors"
	"math"
)

// ErrUnavailable is returned while the processor circuit is open.
var ErrUnavailable = errors.New("payment processor unavailable")

// Intent is the subset of a processor payment intent returned to clients.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Processor creates a payment intent for amount minor units of currency.
type Processor interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error)
}

// ToMinorUnits converts a major-unit price to cents, rounding half away
// from zero so 19.99 becomes 1999 rather than 1998.
func ToMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

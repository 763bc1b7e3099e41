package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateReader defines read operations for stored exchange rates.
// Implementations should try the inverse pair before giving up on a direct
// one; bridge-currency crossing is the responsibility of the rate service.
type RateReader interface {
	// FindRate retrieves the most recent rate for the pair effective on or
	// before asOf. Returns apperrors.ErrNotFound when no rate is stored.
	FindRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error)
}

// RateWriter defines write operations for stored exchange rates
type RateWriter interface {
	// SaveRate upserts a rate for the pair effective on the given date.
	SaveRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal, dateEffective time.Time) error
}

// RateRepositoryFacade combines all exchange-rate repository interfaces
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}

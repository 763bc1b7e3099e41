package services

import (
	"context"
	"time"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SnapshotSvcFacade assembles the monthly "limit vs. spent vs. remaining"
// view. The owner ID and currency are explicit parameters, never ambient
// state.
type SnapshotSvcFacade interface {
	// Snapshot computes the whole-budget view for one owner and month,
	// materializing the month's carryover rows first if needed.
	Snapshot(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) (*domain.Snapshot, error)
}

// CarryoverSvcFacade manages synthetic balance-transfer rows between months.
type CarryoverSvcFacade interface {
	// EnsureCarryover lazily materializes carryover rows into month from
	// month-1 when none exist yet. Safe to call on every view.
	EnsureCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error

	// RecomputeCarryover clears and regenerates the carryover rows of month
	// from the closing balances of month-1. Idempotent.
	RecomputeCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error
}

// AttributionSvcFacade re-slices a month's spend and limits by income source.
type AttributionSvcFacade interface {
	// SourceTiles builds one dashboard tile per income source for the month.
	SourceTiles(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) ([]domain.SourceTile, error)
}

// RateProviderSvc is the currency-conversion collaborator boundary. The
// engine consumes it but treats it as potentially slow or unavailable;
// exhaustion of the fallback chain yields apperrors.ErrRateUnavailable,
// never a silent identity rate.
type RateProviderSvc interface {
	// GetRate returns the from->to conversion rate effective at asOf.
	GetRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error)
}

// RateWriterSvc records exchange rates for later lookups.
type RateWriterSvc interface {
	// SaveRate upserts a rate for the pair effective on the given date.
	SaveRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal, dateEffective time.Time) error
}

// RateSvcFacade combines rate lookup and recording.
type RateSvcFacade interface {
	RateProviderSvc
	RateWriterSvc
}

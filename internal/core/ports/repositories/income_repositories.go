package repositories

import (
	"context"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IncomeSourceReader defines read operations for income source data
type IncomeSourceReader interface {
	// FindSourceByID retrieves a specific income source.
	FindSourceByID(ctx context.Context, ownerID, sourceID string) (*domain.IncomeSource, error)

	// ListIncomeSources retrieves all income sources of an owner.
	ListIncomeSources(ctx context.Context, ownerID string) ([]domain.IncomeSource, error)
}

// IncomeSourceWriter defines write operations for income source data
type IncomeSourceWriter interface {
	// SaveIncomeSource persists a new income source. Marking it as default
	// clears the default flag on the owner's other sources.
	SaveIncomeSource(ctx context.Context, source domain.IncomeSource) error
}

// IncomeReader defines read operations for income rows.
// Monetary aggregates are returned as bare decimals in the owner's base
// currency; callers wrap them into Money with an explicitly passed currency.
type IncomeReader interface {
	// SumIncomeForSource sums income received from one source during a month.
	SumIncomeForSource(ctx context.Context, ownerID, sourceID string, month domain.YearMonth) (decimal.Decimal, error)

	// SumIncomeBySource sums a month's income grouped by source ID.
	SumIncomeBySource(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error)

	// ListIncomes retrieves the income rows of a month, newest first.
	ListIncomes(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Income, error)
}

// IncomeWriter defines write operations for income rows
type IncomeWriter interface {
	// SaveIncome persists a new income row.
	SaveIncome(ctx context.Context, income domain.Income) error

	// DeleteIncome removes an income row and returns it, so callers can
	// invalidate derived state for the row's month.
	DeleteIncome(ctx context.Context, ownerID, incomeID string) (*domain.Income, error)
}

// IncomeSourceRepositoryFacade combines all income-source repository interfaces
type IncomeSourceRepositoryFacade interface {
	IncomeSourceReader
	IncomeSourceWriter
}

// IncomeRepositoryFacade combines all income repository interfaces
type IncomeRepositoryFacade interface {
	IncomeReader
	IncomeWriter
}

package repositories

import (
	"context"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseReader defines read operations for expense rows
type ExpenseReader interface {
	// SumSpentForCategory sums real spend (kind=EXPENSE only, carryover rows
	// excluded) of one category during a month.
	SumSpentForCategory(ctx context.Context, ownerID, categoryID string, month domain.YearMonth) (decimal.Decimal, error)

	// SumSpentByCategory sums a month's real spend grouped by category ID.
	SumSpentByCategory(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error)

	// ListExpenses retrieves the real spend rows of a month, newest first.
	ListExpenses(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expense rows
type ExpenseWriter interface {
	// SaveExpense persists a new real spend row.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// DeleteExpense removes a real spend row and returns it, so callers can
	// invalidate derived state for the row's month. Carryover rows are refused.
	DeleteExpense(ctx context.Context, ownerID, expenseID string) (*domain.Expense, error)
}

// CarryoverReader defines read operations for carryover pseudo-rows
type CarryoverReader interface {
	// ListCarryoverRows retrieves the carryover rows materialized into a month.
	ListCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error)
}

// CarryoverWriter defines write operations for carryover pseudo-rows.
// These rows are exclusively engine-managed.
type CarryoverWriter interface {
	// InsertCarryoverRow persists one carryover row. A unique index on
	// (owner, category, month) makes concurrent materialization surface as
	// apperrors.ErrDuplicate.
	InsertCarryoverRow(ctx context.Context, row domain.Expense) error

	// DeleteCarryoverRows removes every carryover row of a month.
	DeleteCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
// This is a facade for clients that need access to all operations
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
	CarryoverReader
	CarryoverWriter
}

package services

import (
	"context"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/dkruglov/family_budget_app/internal/dto"
)

// LedgerReaderSvc defines read operations over the user-managed ledger
type LedgerReaderSvc interface {
	// ListCategories retrieves an owner's categories with their funding links.
	ListCategories(ctx context.Context, ownerID string) ([]dto.CategoryResponse, error)

	// ListIncomeSources retrieves an owner's income sources.
	ListIncomeSources(ctx context.Context, ownerID string) ([]domain.IncomeSource, error)

	// ListIncomes retrieves an owner's income rows for a month.
	ListIncomes(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Income, error)

	// ListExpenses retrieves an owner's real spend rows for a month.
	ListExpenses(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error)
}

// LedgerWriterSvc defines the user-facing CRUD mutations. Input is validated
// before any write; nothing is partially applied.
type LedgerWriterSvc interface {
	// CreateCategory persists a new category, including multi-source funding links.
	CreateCategory(ctx context.Context, ownerID string, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)

	// UpdateCategory replaces a category's definition and funding links.
	UpdateCategory(ctx context.Context, ownerID, categoryID string, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)

	// CreateIncomeSource persists a new income source.
	CreateIncomeSource(ctx context.Context, ownerID string, req dto.CreateIncomeSourceRequest) (*domain.IncomeSource, error)

	// CreateIncome persists a new income row.
	CreateIncome(ctx context.Context, ownerID string, req dto.CreateIncomeRequest) (*domain.Income, error)

	// DeleteIncome removes an income row and invalidates the following
	// month's carryover.
	DeleteIncome(ctx context.Context, ownerID, incomeID string) error

	// CreateExpense persists a new real spend row.
	CreateExpense(ctx context.Context, ownerID string, req dto.CreateExpenseRequest) (*domain.Expense, error)

	// DeleteExpense removes a real spend row and invalidates the following
	// month's carryover.
	DeleteExpense(ctx context.Context, ownerID, expenseID string) error
}

// LedgerSvcFacade combines all ledger CRUD service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}

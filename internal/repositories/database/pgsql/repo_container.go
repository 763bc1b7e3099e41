package pgsql

import (
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgx-backed repositories for the service container.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CategoryRepo: NewPgxCategoryRepository(dbPool),
		SourceRepo:   NewPgxIncomeSourceRepository(dbPool),
		IncomeRepo:   NewPgxIncomeRepository(dbPool),
		ExpenseRepo:  NewPgxExpenseRepository(dbPool),
		RateRepo:     NewPgxRateRepository(dbPool),
	}
}

package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
)

// PgxExpenseRepository implements the expense and carryover repository ports
// using pgxpool. Real spend and carryover pseudo-rows share the expenses
// table, discriminated by the kind column.
type PgxExpenseRepository struct {
	BaseRepository
}

// NewPgxExpenseRepository creates a new PgxExpenseRepository.
func NewPgxExpenseRepository(db *pgxpool.Pool) *PgxExpenseRepository {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

const expenseColumns = `expense_id, owner_id, category_id, amount, currency_code, date, kind, carryover_from,
	created_at, created_by, last_updated_at, last_updated_by`

// SaveExpense inserts a new real spend row.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	if expense.Kind != domain.KindExpense {
		return fmt.Errorf("%w: SaveExpense only accepts real spend rows", apperrors.ErrValidation)
	}
	return r.insert(ctx, expense)
}

// InsertCarryoverRow persists one engine-managed carryover row. The partial
// unique index on (owner_id, category_id, date) for carryover rows turns a
// concurrent materialization into apperrors.ErrDuplicate.
func (r *PgxExpenseRepository) InsertCarryoverRow(ctx context.Context, row domain.Expense) error {
	if row.Kind != domain.KindCarryover {
		return fmt.Errorf("%w: InsertCarryoverRow only accepts carryover rows", apperrors.ErrValidation)
	}
	return r.insert(ctx, row)
}

func (r *PgxExpenseRepository) insert(ctx context.Context, expense domain.Expense) error {
	var carryoverFrom *string
	if expense.CarryoverFrom != nil {
		s := expense.CarryoverFrom.String()
		carryoverFrom = &s
	}
	query := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.Pool.Exec(ctx, query,
		expense.ExpenseID,
		expense.OwnerID,
		expense.CategoryID,
		expense.Amount.Amount,
		expense.Amount.CurrencyCode,
		expense.Date,
		expense.Kind,
		carryoverFrom,
		expense.CreatedAt,
		expense.CreatedBy,
		expense.LastUpdatedAt,
		expense.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense %s: %w", expense.ExpenseID, mapError(err))
	}
	return nil
}

// DeleteExpense removes a real spend row and returns it. Carryover rows are
// engine-owned and not deletable through this method.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, ownerID, expenseID string) (*domain.Expense, error) {
	query := `
		DELETE FROM expenses
		WHERE expense_id = $1 AND owner_id = $2 AND kind = $3
		RETURNING ` + expenseColumns
	var expense domain.Expense
	var amount decimal.Decimal
	var currencyCode string
	var carryoverFrom *string
	err := r.Pool.QueryRow(ctx, query, expenseID, ownerID, domain.KindExpense).Scan(
		&expense.ExpenseID,
		&expense.OwnerID,
		&expense.CategoryID,
		&amount,
		&currencyCode,
		&expense.Date,
		&expense.Kind,
		&carryoverFrom,
		&expense.CreatedAt,
		&expense.CreatedBy,
		&expense.LastUpdatedAt,
		&expense.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expense %s: %w", expenseID, mapError(err))
	}
	expense.Amount = domain.NewMoney(amount, currencyCode)
	return &expense, nil
}

// SumSpentForCategory sums one category's real spend during a month.
// Carryover rows never count as spend.
func (r *PgxExpenseRepository) SumSpentForCategory(ctx context.Context, ownerID, categoryID string, month domain.YearMonth) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE owner_id = $1 AND category_id = $2 AND kind = $3 AND date >= $4 AND date < $5`
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, ownerID, categoryID, domain.KindExpense, month.Date(), month.Next().Date()).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum spend for category %s: %w", categoryID, mapError(err))
	}
	return sum, nil
}

// SumSpentByCategory sums a month's real spend grouped by category ID.
// Categories without spend rows are absent from the result.
func (r *PgxExpenseRepository) SumSpentByCategory(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error) {
	query := `
		SELECT category_id, SUM(amount)
		FROM expenses
		WHERE owner_id = $1 AND kind = $2 AND date >= $3 AND date < $4
		GROUP BY category_id`
	rows, err := r.Pool.Query(ctx, query, ownerID, domain.KindExpense, month.Date(), month.Next().Date())
	if err != nil {
		return nil, fmt.Errorf("failed to sum spend by category: %w", mapError(err))
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var categoryID string
		var sum decimal.Decimal
		if err := rows.Scan(&categoryID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan spend sum row: %w", err)
		}
		sums[categoryID] = sum
	}
	return sums, rows.Err()
}

// ListExpenses retrieves the real spend rows of a month, newest first.
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error) {
	return r.list(ctx, ownerID, month, domain.KindExpense, `ORDER BY date DESC, created_at DESC`)
}

// ListCarryoverRows retrieves the carryover rows materialized into a month.
func (r *PgxExpenseRepository) ListCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error) {
	return r.list(ctx, ownerID, month, domain.KindCarryover, `ORDER BY category_id ASC`)
}

// DeleteCarryoverRows removes every carryover row of a month.
func (r *PgxExpenseRepository) DeleteCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) error {
	_, err := r.Pool.Exec(ctx,
		`DELETE FROM expenses WHERE owner_id = $1 AND kind = $2 AND date >= $3 AND date < $4`,
		ownerID, domain.KindCarryover, month.Date(), month.Next().Date())
	if err != nil {
		return fmt.Errorf("failed to delete carryover rows for %s: %w", month, mapError(err))
	}
	return nil
}

func (r *PgxExpenseRepository) list(ctx context.Context, ownerID string, month domain.YearMonth, kind domain.TxnKind, orderBy string) ([]domain.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE owner_id = $1 AND kind = $2 AND date >= $3 AND date < $4
		` + orderBy
	rows, err := r.Pool.Query(ctx, query, ownerID, kind, month.Date(), month.Next().Date())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rows: %w", kind, mapError(err))
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var expense domain.Expense
		var amount decimal.Decimal
		var currencyCode string
		var carryoverFrom *string
		err := rows.Scan(
			&expense.ExpenseID,
			&expense.OwnerID,
			&expense.CategoryID,
			&amount,
			&currencyCode,
			&expense.Date,
			&expense.Kind,
			&carryoverFrom,
			&expense.CreatedAt,
			&expense.CreatedBy,
			&expense.LastUpdatedAt,
			&expense.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expense.Amount = domain.NewMoney(amount, currencyCode)
		if carryoverFrom != nil {
			ym, err := domain.ParseYearMonth(*carryoverFrom)
			if err != nil {
				return nil, fmt.Errorf("invalid carryover_from on expense %s: %w", expense.ExpenseID, err)
			}
			expense.CarryoverFrom = &ym
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

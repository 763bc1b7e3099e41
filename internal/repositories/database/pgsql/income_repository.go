package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
)

// PgxIncomeSourceRepository implements the income-source repository ports using pgxpool.
type PgxIncomeSourceRepository struct {
	BaseRepository
}

// NewPgxIncomeSourceRepository creates a new PgxIncomeSourceRepository.
func NewPgxIncomeSourceRepository(db *pgxpool.Pool) *PgxIncomeSourceRepository {
	return &PgxIncomeSourceRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.IncomeSourceRepositoryFacade = (*PgxIncomeSourceRepository)(nil)

// SaveIncomeSource inserts a new income source. When the source is marked
// default, the owner's previous default is cleared in the same transaction.
func (r *PgxIncomeSourceRepository) SaveIncomeSource(ctx context.Context, source domain.IncomeSource) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	if source.IsDefault {
		_, err := tx.Exec(ctx,
			`UPDATE income_sources SET is_default = FALSE WHERE owner_id = $1 AND is_default`,
			source.OwnerID)
		if err != nil {
			_ = r.Rollback(ctx, tx)
			return fmt.Errorf("failed to clear previous default source: %w", mapError(err))
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO income_sources (source_id, owner_id, name, is_default, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		source.SourceID,
		source.OwnerID,
		source.Name,
		source.IsDefault,
		source.CreatedAt,
		source.CreatedBy,
		source.LastUpdatedAt,
		source.LastUpdatedBy,
	)
	if err != nil {
		_ = r.Rollback(ctx, tx)
		return fmt.Errorf("failed to save income source %s: %w", source.SourceID, mapError(err))
	}

	return r.Commit(ctx, tx)
}

// FindSourceByID retrieves an owner's income source by its ID.
func (r *PgxIncomeSourceRepository) FindSourceByID(ctx context.Context, ownerID, sourceID string) (*domain.IncomeSource, error) {
	query := `
		SELECT source_id, owner_id, name, is_default, created_at, created_by, last_updated_at, last_updated_by
		FROM income_sources
		WHERE source_id = $1 AND owner_id = $2`
	var source domain.IncomeSource
	err := r.Pool.QueryRow(ctx, query, sourceID, ownerID).Scan(
		&source.SourceID,
		&source.OwnerID,
		&source.Name,
		&source.IsDefault,
		&source.CreatedAt,
		&source.CreatedBy,
		&source.LastUpdatedAt,
		&source.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find income source %s: %w", sourceID, mapError(err))
	}
	return &source, nil
}

// ListIncomeSources retrieves all income sources of an owner, name ascending.
func (r *PgxIncomeSourceRepository) ListIncomeSources(ctx context.Context, ownerID string) ([]domain.IncomeSource, error) {
	query := `
		SELECT source_id, owner_id, name, is_default, created_at, created_by, last_updated_at, last_updated_by
		FROM income_sources
		WHERE owner_id = $1
		ORDER BY name ASC`
	rows, err := r.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income sources: %w", mapError(err))
	}
	defer rows.Close()

	var sources []domain.IncomeSource
	for rows.Next() {
		var source domain.IncomeSource
		err := rows.Scan(
			&source.SourceID,
			&source.OwnerID,
			&source.Name,
			&source.IsDefault,
			&source.CreatedAt,
			&source.CreatedBy,
			&source.LastUpdatedAt,
			&source.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income source row: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// PgxIncomeRepository implements the income repository ports using pgxpool.
type PgxIncomeRepository struct {
	BaseRepository
}

// NewPgxIncomeRepository creates a new PgxIncomeRepository.
func NewPgxIncomeRepository(db *pgxpool.Pool) *PgxIncomeRepository {
	return &PgxIncomeRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.IncomeRepositoryFacade = (*PgxIncomeRepository)(nil)
var _ portsrepo.TransactionManager = (*PgxIncomeRepository)(nil)

// SaveIncome inserts a new income row.
func (r *PgxIncomeRepository) SaveIncome(ctx context.Context, income domain.Income) error {
	query := `
		INSERT INTO incomes (income_id, owner_id, source_id, amount, currency_code, date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.Pool.Exec(ctx, query,
		income.IncomeID,
		income.OwnerID,
		income.SourceID,
		income.Amount.Amount,
		income.Amount.CurrencyCode,
		income.Date,
		income.CreatedAt,
		income.CreatedBy,
		income.LastUpdatedAt,
		income.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save income %s: %w", income.IncomeID, mapError(err))
	}
	return nil
}

// DeleteIncome removes an income row and returns it.
func (r *PgxIncomeRepository) DeleteIncome(ctx context.Context, ownerID, incomeID string) (*domain.Income, error) {
	query := `
		DELETE FROM incomes
		WHERE income_id = $1 AND owner_id = $2
		RETURNING income_id, owner_id, source_id, amount, currency_code, date,
			created_at, created_by, last_updated_at, last_updated_by`
	var income domain.Income
	var amount decimal.Decimal
	var currencyCode string
	err := r.Pool.QueryRow(ctx, query, incomeID, ownerID).Scan(
		&income.IncomeID,
		&income.OwnerID,
		&income.SourceID,
		&amount,
		&currencyCode,
		&income.Date,
		&income.CreatedAt,
		&income.CreatedBy,
		&income.LastUpdatedAt,
		&income.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to delete income %s: %w", incomeID, mapError(err))
	}
	income.Amount = domain.NewMoney(amount, currencyCode)
	return &income, nil
}

// SumIncomeForSource sums income received from one source during a month.
func (r *PgxIncomeRepository) SumIncomeForSource(ctx context.Context, ownerID, sourceID string, month domain.YearMonth) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM incomes
		WHERE owner_id = $1 AND source_id = $2 AND date >= $3 AND date < $4`
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, ownerID, sourceID, month.Date(), month.Next().Date()).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum income for source %s: %w", sourceID, mapError(err))
	}
	return sum, nil
}

// SumIncomeBySource sums a month's income grouped by source ID.
func (r *PgxIncomeRepository) SumIncomeBySource(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error) {
	query := `
		SELECT source_id, SUM(amount)
		FROM incomes
		WHERE owner_id = $1 AND date >= $2 AND date < $3
		GROUP BY source_id`
	rows, err := r.Pool.Query(ctx, query, ownerID, month.Date(), month.Next().Date())
	if err != nil {
		return nil, fmt.Errorf("failed to sum income by source: %w", mapError(err))
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var sourceID string
		var sum decimal.Decimal
		if err := rows.Scan(&sourceID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan income sum row: %w", err)
		}
		sums[sourceID] = sum
	}
	return sums, rows.Err()
}

// ListIncomes retrieves the income rows of a month, newest first.
func (r *PgxIncomeRepository) ListIncomes(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Income, error) {
	query := `
		SELECT income_id, owner_id, source_id, amount, currency_code, date, created_at, created_by, last_updated_at, last_updated_by
		FROM incomes
		WHERE owner_id = $1 AND date >= $2 AND date < $3
		ORDER BY date DESC, created_at DESC`
	rows, err := r.Pool.Query(ctx, query, ownerID, month.Date(), month.Next().Date())
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", mapError(err))
	}
	defer rows.Close()

	var incomes []domain.Income
	for rows.Next() {
		var income domain.Income
		var amount decimal.Decimal
		var currencyCode string
		err := rows.Scan(
			&income.IncomeID,
			&income.OwnerID,
			&income.SourceID,
			&amount,
			&currencyCode,
			&income.Date,
			&income.CreatedAt,
			&income.CreatedBy,
			&income.LastUpdatedAt,
			&income.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income row: %w", err)
		}
		income.Amount = domain.NewMoney(amount, currencyCode)
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}

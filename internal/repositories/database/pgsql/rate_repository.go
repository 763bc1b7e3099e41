package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
)

// PgxRateRepository implements the exchange-rate repository ports using pgxpool.
type PgxRateRepository struct {
	BaseRepository
}

// NewPgxRateRepository creates a new PgxRateRepository.
func NewPgxRateRepository(db *pgxpool.Pool) *PgxRateRepository {
	return &PgxRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

// SaveRate upserts a rate for the pair effective on the given date.
func (r *PgxRateRepository) SaveRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal, dateEffective time.Time) error {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if fromCode == toCode {
		return fmt.Errorf("%w: from and to currencies cannot be the same", apperrors.ErrValidation)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	query := `
		INSERT INTO exchange_rates (from_currency_code, to_currency_code, rate, date_effective)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_currency_code, to_currency_code, date_effective)
		DO UPDATE SET rate = EXCLUDED.rate`
	_, err := r.Pool.Exec(ctx, query, fromCode, toCode, rate, dateEffective)
	if err != nil {
		return fmt.Errorf("failed to save exchange rate %s/%s: %w", fromCode, toCode, mapError(err))
	}
	return nil
}

// FindRate retrieves the most recent rate for the pair effective on or before
// asOf. When no direct rate is stored, the inverse pair is tried and
// reciprocated. Returns apperrors.ErrNotFound when neither exists.
func (r *PgxRateRepository) FindRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)

	direct, err := r.findRate(ctx, fromCode, toCode, asOf)
	if err == nil {
		return direct, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, err
	}

	inverse, err := r.findRate(ctx, toCode, fromCode, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse.IsZero() {
		return decimal.Zero, fmt.Errorf("exchange rate %s/%s: %w", toCode, fromCode, apperrors.ErrNotFound)
	}
	return decimal.NewFromInt(1).Div(inverse), nil
}

func (r *PgxRateRepository) findRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT rate
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2 AND date_effective <= $3
		ORDER BY date_effective DESC
		LIMIT 1`
	var rate decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, fromCode, toCode, asOf).Scan(&rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to find exchange rate %s/%s: %w", fromCode, toCode, mapError(err))
	}
	return rate, nil
}

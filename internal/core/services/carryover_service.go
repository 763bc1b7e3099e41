package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// carryoverService materializes each category's month-end balance as a
// synthetic expense row in the following month. The rows it writes are the
// only mutation the engine performs on its own.
type carryoverService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
	incomeRepo   portsrepo.IncomeRepositoryFacade
	expenseRepo  portsrepo.ExpenseRepositoryFacade
}

// NewCarryoverService creates a new carryover service.
func NewCarryoverService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	incomeRepo portsrepo.IncomeRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
) portssvc.CarryoverSvcFacade {
	return &carryoverService{
		categoryRepo: categoryRepo,
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
	}
}

var _ portssvc.CarryoverSvcFacade = (*carryoverService)(nil)

// EnsureCarryover lazily runs the transition into month when no carryover
// rows exist there yet. Called on every snapshot view, so a month's rows are
// materialized the first time it is looked at.
func (s *carryoverService) EnsureCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error {
	rows, err := s.expenseRepo.ListCarryoverRows(ctx, ownerID, month)
	if err != nil {
		return fmt.Errorf("failed to check existing carryover rows: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	return s.RecomputeCarryover(ctx, ownerID, currencyCode, month)
}

// RecomputeCarryover clears and regenerates the carryover rows of month from
// the closing balances of month-1. Delete-then-recreate, so re-running with
// unchanged data reproduces identical state. A unique-index conflict during
// insert means another request materialized the same month concurrently; the
// whole transition is retried once before the conflict is surfaced.
func (s *carryoverService) RecomputeCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error {
	err := s.materialize(ctx, ownerID, currencyCode, month)
	if errors.Is(err, apperrors.ErrDuplicate) {
		s.LogDebug(ctx, "Concurrent carryover materialization detected, retrying",
			slog.String("owner_id", ownerID),
			slog.String("month", month.String()))
		err = s.materialize(ctx, ownerID, currencyCode, month)
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("carryover materialization conflict for %s: %w", month, err)
		}
	}
	return err
}

func (s *carryoverService) materialize(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error {
	prev := month.Prev()

	if err := s.expenseRepo.DeleteCarryoverRows(ctx, ownerID, month); err != nil {
		return fmt.Errorf("failed to clear carryover rows for %s: %w", month, err)
	}

	categories, err := s.categoryRepo.ListCategories(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	linksByCategory, err := s.categoryRepo.ListFundingLinksByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list funding links: %w", err)
	}
	incomeBySource, err := s.incomeRepo.SumIncomeBySource(ctx, ownerID, prev)
	if err != nil {
		return fmt.Errorf("failed to sum income for %s: %w", prev, err)
	}
	income := NewMonthIncome(incomeBySource, currencyCode)

	spentByCategory, err := s.expenseRepo.SumSpentByCategory(ctx, ownerID, prev)
	if err != nil {
		return fmt.Errorf("failed to sum spend for %s: %w", prev, err)
	}
	prevCarryover, err := s.carryoverByCategory(ctx, ownerID, prev)
	if err != nil {
		return err
	}

	now := time.Now()
	created := 0
	for _, category := range categories {
		spent, hadSpend := spentByCategory[category.CategoryID]
		inherited, hadCarryover := prevCarryover[category.CategoryID]
		// Never-used categories do not propagate: no spend and no inbound
		// carryover in the prior month means no row in this one.
		if !hadSpend && !hadCarryover {
			continue
		}

		limit, err := ResolveLimit(category, linksByCategory[category.CategoryID], income)
		if err != nil {
			return err
		}
		balance := limit.Amount.Add(inherited).Sub(spent)
		if balance.IsZero() {
			continue
		}

		row := domain.Expense{
			ExpenseID:     uuid.NewString(),
			OwnerID:       ownerID,
			CategoryID:    category.CategoryID,
			Amount:        domain.NewMoney(balance, currencyCode),
			Date:          month.Date(),
			Kind:          domain.KindCarryover,
			CarryoverFrom: &prev,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     ownerID,
				LastUpdatedAt: now,
				LastUpdatedBy: ownerID,
			},
		}
		if err := s.expenseRepo.InsertCarryoverRow(ctx, row); err != nil {
			return fmt.Errorf("failed to insert carryover row for category %s: %w", category.CategoryID, err)
		}
		created++
	}

	// The following month's rows were derived from this month's old balances,
	// so drop them; its next view regenerates them, and regeneration keeps
	// walking forward one month at a time.
	if err := s.expenseRepo.DeleteCarryoverRows(ctx, ownerID, month.Next()); err != nil {
		return fmt.Errorf("failed to invalidate carryover rows for %s: %w", month.Next(), err)
	}

	s.LogInfo(ctx, "Carryover rows materialized",
		slog.String("owner_id", ownerID),
		slog.String("from", prev.String()),
		slog.String("into", month.String()),
		slog.Int("rows", created))
	return nil
}

// carryoverByCategory loads a month's carryover rows keyed by category.
func (s *carryoverService) carryoverByCategory(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error) {
	rows, err := s.expenseRepo.ListCarryoverRows(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list carryover rows for %s: %w", month, err)
	}
	byCategory := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		byCategory[row.CategoryID] = row.Amount.Amount
	}
	return byCategory, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// snapshotService assembles the per-category and whole-budget view of one
// month: limit + carryover + actual spend.
type snapshotService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
	incomeRepo   portsrepo.IncomeRepositoryFacade
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	carryover    portssvc.CarryoverSvcFacade
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	incomeRepo portsrepo.IncomeRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	carryover portssvc.CarryoverSvcFacade,
) portssvc.SnapshotSvcFacade {
	return &snapshotService{
		categoryRepo: categoryRepo,
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		carryover:    carryover,
	}
}

var _ portssvc.SnapshotSvcFacade = (*snapshotService)(nil)

// Snapshot computes the whole-budget view for one owner and month. The
// month's carryover rows are materialized first if this is the first view.
func (s *snapshotService) Snapshot(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) (*domain.Snapshot, error) {
	if err := s.carryover.EnsureCarryover(ctx, ownerID, currencyCode, month); err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	linksByCategory, err := s.categoryRepo.ListFundingLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding links: %w", err)
	}
	incomeBySource, err := s.incomeRepo.SumIncomeBySource(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum income for %s: %w", month, err)
	}
	income := NewMonthIncome(incomeBySource, currencyCode)

	spentByCategory, err := s.expenseRepo.SumSpentByCategory(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spend for %s: %w", month, err)
	}
	carryoverRows, err := s.expenseRepo.ListCarryoverRows(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list carryover rows for %s: %w", month, err)
	}
	carryoverByCategory := make(map[string]decimal.Decimal, len(carryoverRows))
	for _, row := range carryoverRows {
		carryoverByCategory[row.CategoryID] = row.Amount.Amount
	}

	snapshot := &domain.Snapshot{
		YearMonth:  month,
		Categories: make([]domain.CategoryBudget, 0, len(categories)),
	}
	totalSpent := decimal.Zero
	totalLimits := decimal.Zero

	for _, category := range categories {
		limit, err := ResolveLimit(category, linksByCategory[category.CategoryID], income)
		if err != nil {
			return nil, err
		}
		carry := carryoverByCategory[category.CategoryID]
		spent := spentByCategory[category.CategoryID]

		effective := limit.Amount.Add(carry)
		remaining := effective.Sub(spent)

		percentUsed := decimal.Zero
		if !effective.IsZero() {
			percentUsed = spent.Div(effective).Mul(hundred)
		}

		snapshot.Categories = append(snapshot.Categories, domain.CategoryBudget{
			CategoryID:     category.CategoryID,
			Name:           category.Name,
			Limit:          limit,
			Carryover:      domain.NewMoney(carry, currencyCode),
			EffectiveLimit: domain.NewMoney(effective, currencyCode),
			Spent:          domain.NewMoney(spent, currencyCode),
			Remaining:      domain.NewMoney(remaining, currencyCode),
			IsOverspent:    remaining.IsNegative(),
			PercentUsed:    percentUsed,
		})

		totalSpent = totalSpent.Add(spent)
		totalLimits = totalLimits.Add(effective)
	}

	snapshot.TotalIncome = domain.NewMoney(income.Total, currencyCode)
	snapshot.TotalSpent = domain.NewMoney(totalSpent, currencyCode)
	snapshot.TotalLimits = domain.NewMoney(totalLimits, currencyCode)
	snapshot.TotalRemaining = domain.NewMoney(income.Total.Sub(totalSpent), currencyCode)

	s.LogDebug(ctx, "Snapshot assembled",
		slog.String("owner_id", ownerID),
		slog.String("month", month.String()),
		slog.Int("categories", len(snapshot.Categories)))
	return snapshot, nil
}

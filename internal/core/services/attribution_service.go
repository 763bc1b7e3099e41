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

// attributionService apportions each category's spend and inherited debt back
// across the income sources that fund it, proportionally to each source's
// share of the category limit. The ledger records no per-transaction funding
// source, so the contribution ratio is the only attribution basis available.
type attributionService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
	sourceRepo   portsrepo.IncomeSourceRepositoryFacade
	incomeRepo   portsrepo.IncomeRepositoryFacade
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	carryover    portssvc.CarryoverSvcFacade
}

// NewAttributionService creates a new source attribution service.
func NewAttributionService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	sourceRepo portsrepo.IncomeSourceRepositoryFacade,
	incomeRepo portsrepo.IncomeRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	carryover portssvc.CarryoverSvcFacade,
) portssvc.AttributionSvcFacade {
	return &attributionService{
		categoryRepo: categoryRepo,
		sourceRepo:   sourceRepo,
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		carryover:    carryover,
	}
}

var _ portssvc.AttributionSvcFacade = (*attributionService)(nil)

// tileAccumulator gathers one source's running totals during attribution.
type tileAccumulator struct {
	limits decimal.Decimal
	spent  decimal.Decimal
	debt   decimal.Decimal
}

// SourceTiles builds one dashboard tile per income source for the month.
func (s *attributionService) SourceTiles(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) ([]domain.SourceTile, error) {
	if err := s.carryover.EnsureCarryover(ctx, ownerID, currencyCode, month); err != nil {
		return nil, err
	}

	sources, err := s.sourceRepo.ListIncomeSources(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income sources: %w", err)
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

	defaultSourceID := ""
	for _, src := range sources {
		if src.IsDefault {
			defaultSourceID = src.SourceID
			break
		}
	}

	accumulators := make(map[string]*tileAccumulator, len(sources))
	for _, src := range sources {
		accumulators[src.SourceID] = &tileAccumulator{
			limits: decimal.Zero,
			spent:  decimal.Zero,
			debt:   decimal.Zero,
		}
	}

	for _, category := range categories {
		contributions, err := s.contributionsBySource(category, linksByCategory[category.CategoryID], income, defaultSourceID)
		if err != nil {
			return nil, err
		}
		if len(contributions) == 0 {
			// No funding rule and no default source: the category stays off
			// the tiles.
			continue
		}

		totalContribution := decimal.Zero
		for _, c := range contributions {
			totalContribution = totalContribution.Add(c)
		}

		spent := spentByCategory[category.CategoryID]
		debt := decimal.Zero
		if carry := carryoverByCategory[category.CategoryID]; carry.IsNegative() {
			debt = carry.Neg()
		}

		for sourceID, contribution := range contributions {
			acc, ok := accumulators[sourceID]
			if !ok {
				continue
			}
			acc.limits = acc.limits.Add(contribution)
			// A zero total contribution short-circuits to zero attribution
			// instead of dividing by zero.
			if totalContribution.IsZero() {
				continue
			}
			ratio := contribution.Div(totalContribution)
			acc.spent = acc.spent.Add(spent.Mul(ratio))
			acc.debt = acc.debt.Add(debt.Mul(ratio))
		}
	}

	tiles := make([]domain.SourceTile, 0, len(sources))
	for _, src := range sources {
		acc := accumulators[src.SourceID]
		srcIncome := income.SourceIncome(src.SourceID)
		tiles = append(tiles, domain.SourceTile{
			Source:    src,
			Income:    domain.NewMoney(srcIncome, currencyCode),
			Limits:    domain.NewMoney(acc.limits, currencyCode),
			Spent:     domain.NewMoney(acc.spent, currencyCode),
			Remaining: domain.NewMoney(acc.limits.Sub(acc.spent), currencyCode),
			Debt:      domain.NewMoney(acc.debt, currencyCode),
			Balance:   domain.NewMoney(srcIncome.Sub(acc.spent).Sub(acc.debt), currencyCode),
		})
	}

	s.LogDebug(ctx, "Source tiles assembled",
		slog.String("owner_id", ownerID),
		slog.String("month", month.String()),
		slog.Int("tiles", len(tiles)))
	return tiles, nil
}

// contributionsBySource maps each funding source of a category to its share
// of the category limit for the month. Single-source categories contribute
// their whole limit to the linked source, falling back to the owner's default
// source when no funding rule exists.
func (s *attributionService) contributionsBySource(category domain.Category, links []domain.FundingLink, income MonthIncome, defaultSourceID string) (map[string]decimal.Decimal, error) {
	if category.IsMultiSource {
		contributions := make(map[string]decimal.Decimal, len(links))
		for _, link := range links {
			contribution, err := linkContribution(link, income)
			if err != nil {
				return nil, err
			}
			contributions[link.SourceID] = contributions[link.SourceID].Add(contribution)
		}
		return contributions, nil
	}

	sourceID := defaultSourceID
	if category.SourceID != nil {
		sourceID = *category.SourceID
	}
	if sourceID == "" {
		return nil, nil
	}

	limit, err := ResolveLimit(category, links, income)
	if err != nil {
		return nil, err
	}
	return map[string]decimal.Decimal{sourceID: limit.Amount}, nil
}

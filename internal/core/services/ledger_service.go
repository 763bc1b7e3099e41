package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerService provides the user-facing CRUD over categories, income
// sources, incomes and expenses. All input is validated before any write.
// Amounts arriving in a foreign currency are converted to the base currency
// at record time through the rate provider.
type ledgerService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
	sourceRepo   portsrepo.IncomeSourceRepositoryFacade
	incomeRepo   portsrepo.IncomeRepositoryFacade
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	rates        portssvc.RateProviderSvc
	baseCurrency string
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithBaseCurrency sets the currency ledger amounts are stored in.
func WithBaseCurrency(code string) LedgerServiceOption {
	return func(s *ledgerService) {
		s.baseCurrency = strings.ToUpper(code)
	}
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	categoryRepo portsrepo.CategoryRepositoryFacade,
	sourceRepo portsrepo.IncomeSourceRepositoryFacade,
	incomeRepo portsrepo.IncomeRepositoryFacade,
	expenseRepo portsrepo.ExpenseRepositoryFacade,
	rates portssvc.RateProviderSvc,
	options ...LedgerServiceOption,
) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		categoryRepo: categoryRepo,
		sourceRepo:   sourceRepo,
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		rates:        rates,
		baseCurrency: "RUB",
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// toBaseCurrency converts an amount into the base currency using the rate
// effective on the row's date. A missing rate surfaces as ErrRateUnavailable
// rather than silently recording the figure at face value.
func (s *ledgerService) toBaseCurrency(ctx context.Context, amount domain.Money, date time.Time) (domain.Money, error) {
	if amount.CurrencyCode == s.baseCurrency {
		return amount, nil
	}
	rate, err := s.rates.GetRate(ctx, amount.CurrencyCode, s.baseCurrency, date)
	if err != nil {
		return domain.Money{}, fmt.Errorf("failed to convert %s to %s: %w", amount.CurrencyCode, s.baseCurrency, err)
	}
	return amount.Convert(rate, s.baseCurrency), nil
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateCategory handles the creation of a new category. The category and
// its funding links are persisted in one repository transaction.
func (s *ledgerService) CreateCategory(ctx context.Context, ownerID string, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	now := time.Now()
	category, links, err := s.buildCategory(ctx, ownerID, uuid.NewString(), req, now)
	if err != nil {
		return nil, err
	}
	category.CreatedAt = now
	category.CreatedBy = ownerID

	if err := s.categoryRepo.SaveCategoryWithLinks(ctx, category, links); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.LogInfo(ctx, "Category created",
		slog.String("owner_id", ownerID),
		slog.String("category_id", category.CategoryID),
		slog.Bool("multi_source", category.IsMultiSource))
	resp := dto.ToCategoryResponse(category, links)
	return &resp, nil
}

// UpdateCategory replaces a category's definition and funding links.
func (s *ledgerService) UpdateCategory(ctx context.Context, ownerID, categoryID string, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	existing, err := s.categoryRepo.FindCategoryByID(ctx, ownerID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", categoryID, err)
	}

	now := time.Now()
	category, links, err := s.buildCategory(ctx, ownerID, categoryID, dto.CreateCategoryRequest(req), now)
	if err != nil {
		return nil, err
	}
	category.CreatedAt = existing.CreatedAt
	category.CreatedBy = existing.CreatedBy

	if err := s.categoryRepo.UpdateCategoryWithLinks(ctx, category, links); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.LogInfo(ctx, "Category updated",
		slog.String("owner_id", ownerID),
		slog.String("category_id", categoryID))
	resp := dto.ToCategoryResponse(category, links)
	return &resp, nil
}

// buildCategory validates a category request and assembles the domain row
// plus its funding links.
func (s *ledgerService) buildCategory(ctx context.Context, ownerID, categoryID string, req dto.CreateCategoryRequest, now time.Time) (domain.Category, []domain.FundingLink, error) {
	limitType := domain.LimitType(req.LimitType)
	if limitType != domain.LimitFixed && limitType != domain.LimitPercent {
		return domain.Category{}, nil, fmt.Errorf("%w: unknown limit type %q", apperrors.ErrValidation, req.LimitType)
	}
	isMultiSource := len(req.Links) > 0
	if !isMultiSource && req.Value.IsNegative() {
		return domain.Category{}, nil, fmt.Errorf("%w: limit value cannot be negative", apperrors.ErrValidation)
	}
	if req.SourceID != nil {
		if _, err := s.sourceRepo.FindSourceByID(ctx, ownerID, *req.SourceID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return domain.Category{}, nil, fmt.Errorf("%w: funding source %s not found", apperrors.ErrValidation, *req.SourceID)
			}
			return domain.Category{}, nil, fmt.Errorf("failed to validate funding source: %w", err)
		}
	}

	category := domain.Category{
		CategoryID:    categoryID,
		OwnerID:       ownerID,
		Name:          req.Name,
		LimitType:     limitType,
		Value:         req.Value,
		SourceID:      req.SourceID,
		IsMultiSource: isMultiSource,
		AuditFields: domain.AuditFields{
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}

	links := make([]domain.FundingLink, 0, len(req.Links))
	for _, linkReq := range req.Links {
		link, err := s.buildFundingLink(ctx, ownerID, categoryID, linkReq, now)
		if err != nil {
			return domain.Category{}, nil, err
		}
		links = append(links, link)
	}
	return category, links, nil
}

func (s *ledgerService) buildFundingLink(ctx context.Context, ownerID, categoryID string, req dto.FundingLinkRequest, now time.Time) (domain.FundingLink, error) {
	if req.Value.IsNegative() {
		return domain.FundingLink{}, fmt.Errorf("%w: link contribution cannot be negative", apperrors.ErrValidation)
	}
	kind := domain.ContributionKind(req.Kind)
	if kind != domain.ContributionFixed && kind != domain.ContributionPercent {
		return domain.FundingLink{}, fmt.Errorf("%w: unknown contribution kind %q", apperrors.ErrValidation, req.Kind)
	}
	if _, err := s.sourceRepo.FindSourceByID(ctx, ownerID, req.SourceID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.FundingLink{}, fmt.Errorf("%w: funding source %s not found", apperrors.ErrValidation, req.SourceID)
		}
		return domain.FundingLink{}, fmt.Errorf("failed to validate funding source: %w", err)
	}
	return domain.FundingLink{
		CategoryID:   categoryID,
		SourceID:     req.SourceID,
		Contribution: domain.Contribution{Kind: kind, Value: req.Value},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}, nil
}

// CreateIncomeSource handles the creation of a new income source.
func (s *ledgerService) CreateIncomeSource(ctx context.Context, ownerID string, req dto.CreateIncomeSourceRequest) (*domain.IncomeSource, error) {
	now := time.Now()
	source := domain.IncomeSource{
		SourceID:  uuid.NewString(),
		OwnerID:   ownerID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	if err := s.sourceRepo.SaveIncomeSource(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to create income source: %w", err)
	}
	s.LogInfo(ctx, "Income source created",
		slog.String("owner_id", ownerID),
		slog.String("source_id", source.SourceID))
	return &source, nil
}

// CreateIncome handles the recording of received income.
func (s *ledgerService) CreateIncome(ctx context.Context, ownerID string, req dto.CreateIncomeRequest) (*domain.Income, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: income amount must be positive", apperrors.ErrValidation)
	}
	if _, err := s.sourceRepo.FindSourceByID(ctx, ownerID, req.SourceID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: income source %s not found", apperrors.ErrValidation, req.SourceID)
		}
		return nil, fmt.Errorf("failed to validate income source: %w", err)
	}

	amount, err := s.toBaseCurrency(ctx, domain.NewMoney(req.Amount, req.CurrencyCode), req.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	income := domain.Income{
		IncomeID: uuid.NewString(),
		OwnerID:  ownerID,
		SourceID: req.SourceID,
		Amount:   amount,
		Date:     req.Date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	if err := s.incomeRepo.SaveIncome(ctx, income); err != nil {
		return nil, fmt.Errorf("failed to create income: %w", err)
	}

	s.invalidateFollowingCarryover(ctx, ownerID, domain.YearMonthOf(req.Date))
	return &income, nil
}

// DeleteIncome removes an income row. The edit is retroactive for the row's
// month, so the following month's carryover is invalidated.
func (s *ledgerService) DeleteIncome(ctx context.Context, ownerID, incomeID string) error {
	income, err := s.incomeRepo.DeleteIncome(ctx, ownerID, incomeID)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	s.invalidateFollowingCarryover(ctx, ownerID, domain.YearMonthOf(income.Date))
	return nil
}

// CreateExpense handles the recording of real spend.
func (s *ledgerService) CreateExpense(ctx context.Context, ownerID string, req dto.CreateExpenseRequest) (*domain.Expense, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}
	if _, err := s.categoryRepo.FindCategoryByID(ctx, ownerID, req.CategoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: category %s not found", apperrors.ErrValidation, req.CategoryID)
		}
		return nil, fmt.Errorf("failed to validate category: %w", err)
	}

	amount, err := s.toBaseCurrency(ctx, domain.NewMoney(req.Amount, req.CurrencyCode), req.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:  uuid.NewString(),
		OwnerID:    ownerID,
		CategoryID: req.CategoryID,
		Amount:     amount,
		Date:       req.Date,
		Kind:       domain.KindExpense,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     ownerID,
			LastUpdatedAt: now,
			LastUpdatedBy: ownerID,
		},
	}
	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.invalidateFollowingCarryover(ctx, ownerID, domain.YearMonthOf(req.Date))
	return &expense, nil
}

// DeleteExpense removes a real spend row and invalidates the following
// month's carryover.
func (s *ledgerService) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	expense, err := s.expenseRepo.DeleteExpense(ctx, ownerID, expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	s.invalidateFollowingCarryover(ctx, ownerID, domain.YearMonthOf(expense.Date))
	return nil
}

// invalidateFollowingCarryover drops the materialized carryover rows of the
// month after an edited one, so the next view regenerates them from the new
// balances. Regeneration then walks forward month by month as later months
// are viewed.
func (s *ledgerService) invalidateFollowingCarryover(ctx context.Context, ownerID string, edited domain.YearMonth) {
	next := edited.Next()
	if err := s.expenseRepo.DeleteCarryoverRows(ctx, ownerID, next); err != nil {
		s.LogError(ctx, err, "Failed to invalidate carryover rows after ledger edit",
			slog.String("owner_id", ownerID),
			slog.String("month", next.String()))
	}
}

// ListCategories retrieves an owner's categories with their funding links.
func (s *ledgerService) ListCategories(ctx context.Context, ownerID string) ([]dto.CategoryResponse, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	linksByCategory, err := s.categoryRepo.ListFundingLinksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding links: %w", err)
	}
	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, dto.ToCategoryResponse(category, linksByCategory[category.CategoryID]))
	}
	return responses, nil
}

// ListIncomeSources retrieves an owner's income sources.
func (s *ledgerService) ListIncomeSources(ctx context.Context, ownerID string) ([]domain.IncomeSource, error) {
	sources, err := s.sourceRepo.ListIncomeSources(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list income sources: %w", err)
	}
	return sources, nil
}

// ListIncomes retrieves an owner's income rows for a month.
func (s *ledgerService) ListIncomes(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Income, error) {
	incomes, err := s.incomeRepo.ListIncomes(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	return incomes, nil
}

// ListExpenses retrieves an owner's real spend rows for a month.
func (s *ledgerService) ListExpenses(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error) {
	expenses, err := s.expenseRepo.ListExpenses(ctx, ownerID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
)

var errRepoFailure = errors.New("repository failure")

// --- Mock CategoryRepository ---

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindCategoryByID(ctx context.Context, ownerID, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, ownerID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListFundingLinks(ctx context.Context, categoryID string) ([]domain.FundingLink, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundingLink), args.Error(1)
}

func (m *MockCategoryRepository) ListFundingLinksByOwner(ctx context.Context, ownerID string) (map[string][]domain.FundingLink, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.FundingLink), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error {
	args := m.Called(ctx, category, links)
	return args.Error(0)
}

func (m *MockCategoryRepository) UpdateCategoryWithLinks(ctx context.Context, category domain.Category, links []domain.FundingLink) error {
	args := m.Called(ctx, category, links)
	return args.Error(0)
}

// --- Mock IncomeSourceRepository ---

type MockIncomeSourceRepository struct {
	mock.Mock
}

func (m *MockIncomeSourceRepository) FindSourceByID(ctx context.Context, ownerID, sourceID string) (*domain.IncomeSource, error) {
	args := m.Called(ctx, ownerID, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IncomeSource), args.Error(1)
}

func (m *MockIncomeSourceRepository) ListIncomeSources(ctx context.Context, ownerID string) ([]domain.IncomeSource, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IncomeSource), args.Error(1)
}

func (m *MockIncomeSourceRepository) SaveIncomeSource(ctx context.Context, source domain.IncomeSource) error {
	args := m.Called(ctx, source)
	return args.Error(0)
}

// --- Mock IncomeRepository ---

type MockIncomeRepository struct {
	mock.Mock
}

func (m *MockIncomeRepository) SumIncomeForSource(ctx context.Context, ownerID, sourceID string, month domain.YearMonth) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, sourceID, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockIncomeRepository) SumIncomeBySource(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockIncomeRepository) ListIncomes(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Income, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Income), args.Error(1)
}

func (m *MockIncomeRepository) SaveIncome(ctx context.Context, income domain.Income) error {
	args := m.Called(ctx, income)
	return args.Error(0)
}

func (m *MockIncomeRepository) DeleteIncome(ctx context.Context, ownerID, incomeID string) (*domain.Income, error) {
	args := m.Called(ctx, ownerID, incomeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Income), args.Error(1)
}

// --- Mock ExpenseRepository ---

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) SumSpentForCategory(ctx context.Context, ownerID, categoryID string, month domain.YearMonth) (decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, categoryID, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) SumSpentByCategory(ctx context.Context, ownerID string, month domain.YearMonth) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, ownerID, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, ownerID, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) ([]domain.Expense, error) {
	args := m.Called(ctx, ownerID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) InsertCarryoverRow(ctx context.Context, row domain.Expense) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteCarryoverRows(ctx context.Context, ownerID string, month domain.YearMonth) error {
	args := m.Called(ctx, ownerID, month)
	return args.Error(0)
}

// --- Mock RateRepository ---

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateRepository) SaveRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal, dateEffective time.Time) error {
	args := m.Called(ctx, fromCode, toCode, rate, dateEffective)
	return args.Error(0)
}

// --- Mock RateProvider ---

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) GetRate(ctx context.Context, fromCode, toCode string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCode, toCode, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock CarryoverService ---

type MockCarryoverService struct {
	mock.Mock
}

func (m *MockCarryoverService) EnsureCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error {
	args := m.Called(ctx, ownerID, currencyCode, month)
	return args.Error(0)
}

func (m *MockCarryoverService) RecomputeCarryover(ctx context.Context, ownerID, currencyCode string, month domain.YearMonth) error {
	args := m.Called(ctx, ownerID, currencyCode, month)
	return args.Error(0)
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/core/services"
)

type SnapshotServiceTestSuite struct {
	suite.Suite
	mockCategoryRepo *MockCategoryRepository
	mockIncomeRepo   *MockIncomeRepository
	mockExpenseRepo  *MockExpenseRepository
	mockCarryover    *MockCarryoverService
	service          portssvc.SnapshotSvcFacade

	ownerID string
	month   domain.YearMonth
}

func (suite *SnapshotServiceTestSuite) SetupTest() {
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockIncomeRepo = new(MockIncomeRepository)
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockCarryover = new(MockCarryoverService)
	suite.service = services.NewSnapshotService(suite.mockCategoryRepo, suite.mockIncomeRepo, suite.mockExpenseRepo, suite.mockCarryover)

	suite.ownerID = "owner-1"
	suite.month = domain.YearMonth{Year: 2025, Month: time.April}
}

func (suite *SnapshotServiceTestSuite) expectReads(
	categories []domain.Category,
	links map[string][]domain.FundingLink,
	incomeBySource map[string]decimal.Decimal,
	spentByCategory map[string]decimal.Decimal,
	carryoverRows []domain.Expense,
) {
	ctx := mock.Anything
	suite.mockCarryover.On("EnsureCarryover", ctx, suite.ownerID, "RUB", suite.month).Return(nil).Once()
	suite.mockCategoryRepo.On("ListCategories", ctx, suite.ownerID).Return(categories, nil).Once()
	suite.mockCategoryRepo.On("ListFundingLinksByOwner", ctx, suite.ownerID).Return(links, nil).Once()
	suite.mockIncomeRepo.On("SumIncomeBySource", ctx, suite.ownerID, suite.month).Return(incomeBySource, nil).Once()
	suite.mockExpenseRepo.On("SumSpentByCategory", ctx, suite.ownerID, suite.month).Return(spentByCategory, nil).Once()
	suite.mockExpenseRepo.On("ListCarryoverRows", ctx, suite.ownerID, suite.month).Return(carryoverRows, nil).Once()
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_EffectiveLimitIncludesCarryover() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", Name: "Groceries", LimitType: domain.LimitFixed, Value: dec("10000")}}
	carryoverRows := []domain.Expense{{CategoryID: "cat-1", Kind: domain.KindCarryover, Amount: domain.NewMoney(dec("1500"), "RUB")}}
	suite.expectReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{"salary": dec("100000")}, map[string]decimal.Decimal{"cat-1": dec("8000")}, carryoverRows)

	snapshot, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.Require().Len(snapshot.Categories, 1)
	row := snapshot.Categories[0]
	suite.Equal("Groceries", row.Name)
	suite.True(row.Limit.Amount.Equal(dec("10000")))
	suite.True(row.Carryover.Amount.Equal(dec("1500")))
	suite.True(row.EffectiveLimit.Amount.Equal(dec("11500")))
	suite.True(row.Spent.Amount.Equal(dec("8000")))
	suite.True(row.Remaining.Amount.Equal(dec("3500")))
	suite.False(row.IsOverspent)
	suite.mockCarryover.AssertExpectations(suite.T())
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_OverspentFlag() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", Name: "Dining", LimitType: domain.LimitFixed, Value: dec("5000")}}
	suite.expectReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("6500")}, nil)

	snapshot, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	row := snapshot.Categories[0]
	suite.True(row.Remaining.Amount.Equal(dec("-1500")))
	suite.True(row.IsOverspent)
	suite.True(row.PercentUsed.Equal(dec("130")))
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_ZeroEffectiveLimitAvoidsDivision() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", Name: "Misc", LimitType: domain.LimitFixed, Value: dec("0")}}
	suite.expectReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("300")}, nil)

	snapshot, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.True(snapshot.Categories[0].PercentUsed.IsZero())
	suite.True(snapshot.Categories[0].IsOverspent)
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_Totals() {
	ctx := context.Background()
	categories := []domain.Category{
		{CategoryID: "cat-1", Name: "Groceries", LimitType: domain.LimitFixed, Value: dec("10000")},
		{CategoryID: "cat-2", Name: "Transport", LimitType: domain.LimitFixed, Value: dec("3000")},
	}
	carryoverRows := []domain.Expense{{CategoryID: "cat-2", Kind: domain.KindCarryover, Amount: domain.NewMoney(dec("-500"), "RUB")}}
	suite.expectReads(categories, map[string][]domain.FundingLink{},
		map[string]decimal.Decimal{"salary": dec("90000"), "freelance": dec("10000")},
		map[string]decimal.Decimal{"cat-1": dec("7000"), "cat-2": dec("2000")},
		carryoverRows)

	snapshot, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.True(snapshot.TotalIncome.Amount.Equal(dec("100000")))
	suite.True(snapshot.TotalSpent.Amount.Equal(dec("9000")))
	// 10000 + (3000 - 500) effective limits
	suite.True(snapshot.TotalLimits.Amount.Equal(dec("12500")))
	// Whole-budget remaining is income-based, not limit-based.
	suite.True(snapshot.TotalRemaining.Amount.Equal(dec("91000")))
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_PercentCategoryTracksMonthIncome() {
	ctx := context.Background()
	sourceID := "salary"
	categories := []domain.Category{{
		CategoryID: "cat-1",
		Name:       "Savings",
		LimitType:  domain.LimitPercent,
		Value:      dec("20"),
		SourceID:   &sourceID,
	}}
	suite.expectReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{"salary": dec("120000")}, map[string]decimal.Decimal{}, nil)

	snapshot, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.True(snapshot.Categories[0].Limit.Amount.Equal(dec("24000")))
}

func (suite *SnapshotServiceTestSuite) TestSnapshot_CarryoverFailurePropagates() {
	ctx := context.Background()
	suite.mockCarryover.On("EnsureCarryover", mock.Anything, suite.ownerID, "RUB", suite.month).Return(errRepoFailure).Once()

	_, err := suite.service.Snapshot(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().ErrorIs(err, errRepoFailure)
	suite.mockCategoryRepo.AssertNotCalled(suite.T(), "ListCategories", mock.Anything, mock.Anything)
}

func TestSnapshotServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotServiceTestSuite))
}

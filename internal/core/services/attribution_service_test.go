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

type AttributionServiceTestSuite struct {
	suite.Suite
	mockCategoryRepo *MockCategoryRepository
	mockSourceRepo   *MockIncomeSourceRepository
	mockIncomeRepo   *MockIncomeRepository
	mockExpenseRepo  *MockExpenseRepository
	mockCarryover    *MockCarryoverService
	service          portssvc.AttributionSvcFacade

	ownerID string
	month   domain.YearMonth
}

func (suite *AttributionServiceTestSuite) SetupTest() {
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockSourceRepo = new(MockIncomeSourceRepository)
	suite.mockIncomeRepo = new(MockIncomeRepository)
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockCarryover = new(MockCarryoverService)
	suite.service = services.NewAttributionService(
		suite.mockCategoryRepo, suite.mockSourceRepo, suite.mockIncomeRepo, suite.mockExpenseRepo, suite.mockCarryover)

	suite.ownerID = "owner-1"
	suite.month = domain.YearMonth{Year: 2025, Month: time.April}
}

func (suite *AttributionServiceTestSuite) expectReads(
	sources []domain.IncomeSource,
	categories []domain.Category,
	links map[string][]domain.FundingLink,
	incomeBySource map[string]decimal.Decimal,
	spentByCategory map[string]decimal.Decimal,
	carryoverRows []domain.Expense,
) {
	ctx := mock.Anything
	suite.mockCarryover.On("EnsureCarryover", ctx, suite.ownerID, "RUB", suite.month).Return(nil).Once()
	suite.mockSourceRepo.On("ListIncomeSources", ctx, suite.ownerID).Return(sources, nil).Once()
	suite.mockCategoryRepo.On("ListCategories", ctx, suite.ownerID).Return(categories, nil).Once()
	suite.mockCategoryRepo.On("ListFundingLinksByOwner", ctx, suite.ownerID).Return(links, nil).Once()
	suite.mockIncomeRepo.On("SumIncomeBySource", ctx, suite.ownerID, suite.month).Return(incomeBySource, nil).Once()
	suite.mockExpenseRepo.On("SumSpentByCategory", ctx, suite.ownerID, suite.month).Return(spentByCategory, nil).Once()
	suite.mockExpenseRepo.On("ListCarryoverRows", ctx, suite.ownerID, suite.month).Return(carryoverRows, nil).Once()
}

func (suite *AttributionServiceTestSuite) tileBySource(tiles []domain.SourceTile, sourceID string) domain.SourceTile {
	suite.T().Helper()
	for _, tile := range tiles {
		if tile.Source.SourceID == sourceID {
			return tile
		}
	}
	suite.FailNow("tile not found", "source %s", sourceID)
	return domain.SourceTile{}
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_SplitsSpendByContributionRatio() {
	ctx := context.Background()
	sources := []domain.IncomeSource{
		{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"},
		{SourceID: "freelance", OwnerID: suite.ownerID, Name: "Freelance"},
	}
	categories := []domain.Category{{CategoryID: "cat-1", IsMultiSource: true}}
	links := map[string][]domain.FundingLink{
		"cat-1": {
			{CategoryID: "cat-1", SourceID: "salary", Contribution: domain.FixedContribution(dec("3000"))},
			{CategoryID: "cat-1", SourceID: "freelance", Contribution: domain.FixedContribution(dec("2000"))},
		},
	}
	income := map[string]decimal.Decimal{"salary": dec("100000"), "freelance": dec("40000")}
	spent := map[string]decimal.Decimal{"cat-1": dec("4000")}

	suite.expectReads(sources, categories, links, income, spent, nil)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.Require().Len(tiles, 2)

	salary := suite.tileBySource(tiles, "salary")
	freelance := suite.tileBySource(tiles, "freelance")

	// 3000:2000 contribution ratio splits the 4000 spend 2400:1600.
	suite.True(salary.Spent.Amount.Equal(dec("2400")), "got %s", salary.Spent.Amount)
	suite.True(freelance.Spent.Amount.Equal(dec("1600")), "got %s", freelance.Spent.Amount)

	// Attributed spend is conserved across tiles.
	total := salary.Spent.Amount.Add(freelance.Spent.Amount)
	suite.True(total.Equal(dec("4000")))

	suite.True(salary.Limits.Amount.Equal(dec("3000")))
	suite.True(salary.Remaining.Amount.Equal(dec("600")))
	suite.True(salary.Income.Amount.Equal(dec("100000")))
	suite.True(salary.Balance.Amount.Equal(dec("97600")))
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_ZeroContributionShortCircuits() {
	ctx := context.Background()
	sources := []domain.IncomeSource{{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"}}
	categories := []domain.Category{{CategoryID: "cat-1", IsMultiSource: true}}
	links := map[string][]domain.FundingLink{
		"cat-1": {{CategoryID: "cat-1", SourceID: "salary", Contribution: domain.PercentContribution(dec("10"))}},
	}
	// No income this month, so the link resolves to a zero contribution.
	spent := map[string]decimal.Decimal{"cat-1": dec("500")}

	suite.expectReads(sources, categories, links, map[string]decimal.Decimal{}, spent, nil)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	suite.True(salary.Spent.Amount.IsZero())
	suite.True(salary.Limits.Amount.IsZero())
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_SingleSourceCategoryWholeLimit() {
	ctx := context.Background()
	sourceID := "salary"
	sources := []domain.IncomeSource{{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"}}
	categories := []domain.Category{{CategoryID: "cat-1", LimitType: domain.LimitFixed, Value: dec("8000"), SourceID: &sourceID}}
	spent := map[string]decimal.Decimal{"cat-1": dec("3000")}

	suite.expectReads(sources, categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{"salary": dec("50000")}, spent, nil)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	suite.True(salary.Limits.Amount.Equal(dec("8000")))
	suite.True(salary.Spent.Amount.Equal(dec("3000")))
	suite.True(salary.Remaining.Amount.Equal(dec("5000")))
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_UnlinkedCategoryFallsToDefaultSource() {
	ctx := context.Background()
	sources := []domain.IncomeSource{
		{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary", IsDefault: true},
		{SourceID: "freelance", OwnerID: suite.ownerID, Name: "Freelance"},
	}
	categories := []domain.Category{{CategoryID: "cat-1", LimitType: domain.LimitFixed, Value: dec("1000")}}
	spent := map[string]decimal.Decimal{"cat-1": dec("700")}

	suite.expectReads(sources, categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, spent, nil)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	freelance := suite.tileBySource(tiles, "freelance")
	suite.True(salary.Spent.Amount.Equal(dec("700")))
	suite.True(freelance.Spent.Amount.IsZero())
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_UnlinkedCategoryWithoutDefaultExcluded() {
	ctx := context.Background()
	sources := []domain.IncomeSource{{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"}}
	categories := []domain.Category{{CategoryID: "cat-1", LimitType: domain.LimitFixed, Value: dec("1000")}}
	spent := map[string]decimal.Decimal{"cat-1": dec("700")}

	suite.expectReads(sources, categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, spent, nil)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	suite.True(salary.Spent.Amount.IsZero())
	suite.True(salary.Limits.Amount.IsZero())
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_NegativeCarryoverBecomesDebt() {
	ctx := context.Background()
	sourceID := "salary"
	sources := []domain.IncomeSource{{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"}}
	categories := []domain.Category{{CategoryID: "cat-1", LimitType: domain.LimitFixed, Value: dec("5000"), SourceID: &sourceID}}
	carryoverRows := []domain.Expense{{CategoryID: "cat-1", Kind: domain.KindCarryover, Amount: domain.NewMoney(dec("-1200"), "RUB")}}

	suite.expectReads(sources, categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{"salary": dec("60000")}, map[string]decimal.Decimal{"cat-1": dec("1000")}, carryoverRows)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	suite.True(salary.Debt.Amount.Equal(dec("1200")))
	// 60000 income - 1000 spent - 1200 inherited debt
	suite.True(salary.Balance.Amount.Equal(dec("57800")))
}

func (suite *AttributionServiceTestSuite) TestSourceTiles_PositiveCarryoverIsNotDebt() {
	ctx := context.Background()
	sourceID := "salary"
	sources := []domain.IncomeSource{{SourceID: "salary", OwnerID: suite.ownerID, Name: "Salary"}}
	categories := []domain.Category{{CategoryID: "cat-1", LimitType: domain.LimitFixed, Value: dec("5000"), SourceID: &sourceID}}
	carryoverRows := []domain.Expense{{CategoryID: "cat-1", Kind: domain.KindCarryover, Amount: domain.NewMoney(dec("900"), "RUB")}}

	suite.expectReads(sources, categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{"salary": dec("60000")}, map[string]decimal.Decimal{"cat-1": dec("1000")}, carryoverRows)

	tiles, err := suite.service.SourceTiles(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	salary := suite.tileBySource(tiles, "salary")
	suite.True(salary.Debt.Amount.IsZero())
}

func TestAttributionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AttributionServiceTestSuite))
}

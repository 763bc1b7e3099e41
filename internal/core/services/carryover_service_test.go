package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/core/services"
)

type CarryoverServiceTestSuite struct {
	suite.Suite
	mockCategoryRepo *MockCategoryRepository
	mockIncomeRepo   *MockIncomeRepository
	mockExpenseRepo  *MockExpenseRepository
	service          portssvc.CarryoverSvcFacade

	ownerID string
	month   domain.YearMonth
	prev    domain.YearMonth
}

func (suite *CarryoverServiceTestSuite) SetupTest() {
	suite.mockCategoryRepo = new(MockCategoryRepository)
	suite.mockIncomeRepo = new(MockIncomeRepository)
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.service = services.NewCarryoverService(suite.mockCategoryRepo, suite.mockIncomeRepo, suite.mockExpenseRepo)

	suite.ownerID = "owner-1"
	suite.month = domain.YearMonth{Year: 2025, Month: time.April}
	suite.prev = domain.YearMonth{Year: 2025, Month: time.March}
}

// expectMaterializeReads wires the read-side expectations of one materialize
// pass over the given prior-month data.
func (suite *CarryoverServiceTestSuite) expectMaterializeReads(
	categories []domain.Category,
	links map[string][]domain.FundingLink,
	incomeBySource map[string]decimal.Decimal,
	spentByCategory map[string]decimal.Decimal,
	prevCarryover []domain.Expense,
) {
	ctx := mock.Anything
	suite.mockExpenseRepo.On("DeleteCarryoverRows", ctx, suite.ownerID, suite.month).Return(nil).Once()
	suite.mockCategoryRepo.On("ListCategories", ctx, suite.ownerID).Return(categories, nil).Once()
	suite.mockCategoryRepo.On("ListFundingLinksByOwner", ctx, suite.ownerID).Return(links, nil).Once()
	suite.mockIncomeRepo.On("SumIncomeBySource", ctx, suite.ownerID, suite.prev).Return(incomeBySource, nil).Once()
	suite.mockExpenseRepo.On("SumSpentByCategory", ctx, suite.ownerID, suite.prev).Return(spentByCategory, nil).Once()
	suite.mockExpenseRepo.On("ListCarryoverRows", ctx, suite.ownerID, suite.prev).Return(prevCarryover, nil).Once()
}

// expectForwardInvalidate wires the post-materialize drop of the following
// month's rows, which were derived from this month's old balances.
func (suite *CarryoverServiceTestSuite) expectForwardInvalidate() {
	suite.mockExpenseRepo.On("DeleteCarryoverRows", mock.Anything, suite.ownerID, suite.month.Next()).Return(nil).Once()
}

func (suite *CarryoverServiceTestSuite) TestEnsureCarryover_SkipsWhenRowsExist() {
	ctx := context.Background()
	existing := []domain.Expense{{ExpenseID: "row-1", CategoryID: "cat-1", Kind: domain.KindCarryover}}
	suite.mockExpenseRepo.On("ListCarryoverRows", ctx, suite.ownerID, suite.month).Return(existing, nil).Once()

	err := suite.service.EnsureCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "DeleteCarryoverRows", mock.Anything, mock.Anything, mock.Anything)
	suite.mockCategoryRepo.AssertNotCalled(suite.T(), "ListCategories", mock.Anything, mock.Anything)
}

func (suite *CarryoverServiceTestSuite) TestEnsureCarryover_MaterializesOnFirstView() {
	ctx := context.Background()
	suite.mockExpenseRepo.On("ListCarryoverRows", ctx, suite.ownerID, suite.month).Return([]domain.Expense{}, nil).Once()

	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)

	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.MatchedBy(func(row domain.Expense) bool {
		return row.CategoryID == "cat-1" &&
			row.Kind == domain.KindCarryover &&
			row.Amount.Amount.Equal(dec("6000")) &&
			row.Amount.CurrencyCode == "RUB" &&
			row.Date.Equal(suite.month.Date()) &&
			row.CarryoverFrom != nil && *row.CarryoverFrom == suite.prev
	})).Return(nil).Once()

	suite.expectForwardInvalidate()
	err := suite.service.EnsureCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockCategoryRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_OverspendCarriesNegative() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("12000")}, nil)

	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.MatchedBy(func(row domain.Expense) bool {
		return row.CategoryID == "cat-1" && row.Amount.Amount.Equal(dec("-2000"))
	})).Return(nil).Once()

	suite.expectForwardInvalidate()
	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_InheritedCarryoverCompounds() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}
	prevRows := []domain.Expense{{
		ExpenseID:  "prev-row",
		CategoryID: "cat-1",
		Kind:       domain.KindCarryover,
		Amount:     domain.NewMoney(dec("-2000"), "RUB"),
	}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("500")}, prevRows)

	// 10000 - 2000 inherited debt - 500 spent
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.MatchedBy(func(row domain.Expense) bool {
		return row.Amount.Amount.Equal(dec("7500"))
	})).Return(nil).Once()

	suite.expectForwardInvalidate()
	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_NeverUsedCategorySkipped() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-idle", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("5000")}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{}, nil)

	suite.expectForwardInvalidate()
	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "InsertCarryoverRow", mock.Anything, mock.Anything)
}

func (suite *CarryoverServiceTestSuite) TestRecompute_ZeroBalanceNotMaterialized() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("1000")}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("1000")}, nil)

	suite.expectForwardInvalidate()
	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "InsertCarryoverRow", mock.Anything, mock.Anything)
}

func (suite *CarryoverServiceTestSuite) TestRecompute_PercentCategoryUsesPriorMonthIncome() {
	ctx := context.Background()
	sourceID := "salary"
	categories := []domain.Category{{
		CategoryID: "cat-1",
		OwnerID:    suite.ownerID,
		LimitType:  domain.LimitPercent,
		Value:      dec("20"),
		SourceID:   &sourceID,
	}}
	income := map[string]decimal.Decimal{"salary": dec("100000")}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, income, map[string]decimal.Decimal{"cat-1": dec("15000")}, nil)

	// 20% of 100000 = 20000 limit, minus 15000 spent
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.MatchedBy(func(row domain.Expense) bool {
		return row.Amount.Amount.Equal(dec("5000"))
	})).Return(nil).Once()

	suite.expectForwardInvalidate()
	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_RetriesOnceOnConcurrentConflict() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}

	// First pass loses the insert race, second pass succeeds.
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.Anything).Return(nil).Once()
	suite.expectForwardInvalidate()

	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_PersistentConflictSurfaces() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}

	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_DropsFollowingMonthRows() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}
	suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
	suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.Anything).Return(nil).Once()

	// May's rows were derived from April's old balances; rewriting April must
	// drop them so May's next view regenerates from the new state.
	may := domain.YearMonth{Year: 2025, Month: time.May}
	suite.mockExpenseRepo.On("DeleteCarryoverRows", mock.Anything, suite.ownerID, may).Return(nil).Once()

	err := suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertCalled(suite.T(), "DeleteCarryoverRows", mock.Anything, suite.ownerID, may)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *CarryoverServiceTestSuite) TestRecompute_RerunReproducesIdenticalRows() {
	ctx := context.Background()
	categories := []domain.Category{{CategoryID: "cat-1", OwnerID: suite.ownerID, LimitType: domain.LimitFixed, Value: dec("10000")}}

	var inserted []domain.Expense
	for i := 0; i < 2; i++ {
		suite.expectMaterializeReads(categories, map[string][]domain.FundingLink{}, map[string]decimal.Decimal{}, map[string]decimal.Decimal{"cat-1": dec("4000")}, nil)
		suite.mockExpenseRepo.On("InsertCarryoverRow", mock.Anything, mock.AnythingOfType("domain.Expense")).
			Run(func(args mock.Arguments) {
				inserted = append(inserted, args.Get(1).(domain.Expense))
			}).Return(nil).Once()
		suite.expectForwardInvalidate()
	}

	suite.Require().NoError(suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month))
	suite.Require().NoError(suite.service.RecomputeCarryover(ctx, suite.ownerID, "RUB", suite.month))

	// Delete-then-recreate keeps a single row per category, and with the
	// inputs unchanged the rerun reproduces it exactly.
	suite.Require().Len(inserted, 2)
	first, second := inserted[0], inserted[1]
	suite.Equal(first.CategoryID, second.CategoryID)
	suite.True(first.Amount.Amount.Equal(second.Amount.Amount))
	suite.Equal(first.Amount.CurrencyCode, second.Amount.CurrencyCode)
	suite.True(first.Date.Equal(second.Date))
	suite.Require().NotNil(first.CarryoverFrom)
	suite.Require().NotNil(second.CarryoverFrom)
	suite.Equal(*first.CarryoverFrom, *second.CarryoverFrom)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func TestCarryoverServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CarryoverServiceTestSuite))
}

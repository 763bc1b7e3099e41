package dto

import (
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CategoryBudgetResponse is one category's row of the snapshot view. Display
// fields carry the rounded, grouped rendering; raw fields keep full precision.
type CategoryBudgetResponse struct {
	CategoryID       string          `json:"categoryID"`
	Name             string          `json:"name"`
	Limit            decimal.Decimal `json:"limit"`
	Carryover        decimal.Decimal `json:"carryover"`
	EffectiveLimit   decimal.Decimal `json:"effectiveLimit"`
	Spent            decimal.Decimal `json:"spent"`
	Remaining        decimal.Decimal `json:"remaining"`
	RemainingDisplay string          `json:"remainingDisplay"`
	IsOverspent      bool            `json:"isOverspent"`
	PercentUsed      decimal.Decimal `json:"percentUsed"`
}

// SnapshotResponse is the whole-budget view of one month.
type SnapshotResponse struct {
	YearMonth      string                   `json:"yearMonth"`
	CurrencyCode   string                   `json:"currencyCode"`
	TotalIncome    decimal.Decimal          `json:"totalIncome"`
	TotalSpent     decimal.Decimal          `json:"totalSpent"`
	TotalLimits    decimal.Decimal          `json:"totalLimits"`
	TotalRemaining decimal.Decimal          `json:"totalRemaining"`
	Categories     []CategoryBudgetResponse `json:"categories"`
}

// ToSnapshotResponse converts a domain.Snapshot to the API shape.
func ToSnapshotResponse(s *domain.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		YearMonth:      s.YearMonth.String(),
		CurrencyCode:   s.TotalIncome.CurrencyCode,
		TotalIncome:    s.TotalIncome.Amount,
		TotalSpent:     s.TotalSpent.Amount,
		TotalLimits:    s.TotalLimits.Amount,
		TotalRemaining: s.TotalRemaining.Amount,
		Categories:     make([]CategoryBudgetResponse, 0, len(s.Categories)),
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, CategoryBudgetResponse{
			CategoryID:       c.CategoryID,
			Name:             c.Name,
			Limit:            c.Limit.Amount,
			Carryover:        c.Carryover.Amount,
			EffectiveLimit:   c.EffectiveLimit.Amount,
			Spent:            c.Spent.Amount,
			Remaining:        c.Remaining.Amount,
			RemainingDisplay: c.Remaining.Format(true),
			IsOverspent:      c.IsOverspent,
			PercentUsed:      c.PercentUsed,
		})
	}
	return resp
}

// SourceTileResponse is one income source's dashboard tile.
type SourceTileResponse struct {
	SourceID   string          `json:"sourceID"`
	SourceName string          `json:"sourceName"`
	IsDefault  bool            `json:"isDefault"`
	Income     decimal.Decimal `json:"income"`
	Limits     decimal.Decimal `json:"limits"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Debt       decimal.Decimal `json:"debt"`
	Balance    decimal.Decimal `json:"balance"`
}

// ToSourceTileResponses converts domain tiles to the API shape.
func ToSourceTileResponses(tiles []domain.SourceTile) []SourceTileResponse {
	responses := make([]SourceTileResponse, 0, len(tiles))
	for _, t := range tiles {
		responses = append(responses, SourceTileResponse{
			SourceID:   t.Source.SourceID,
			SourceName: t.Source.Name,
			IsDefault:  t.Source.IsDefault,
			Income:     t.Income.Amount,
			Limits:     t.Limits.Amount,
			Spent:      t.Spent.Amount,
			Remaining:  t.Remaining.Amount,
			Debt:       t.Debt.Amount,
			Balance:    t.Balance.Amount,
		})
	}
	return responses
}

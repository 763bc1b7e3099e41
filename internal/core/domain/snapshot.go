package domain

import (
	"github.com/shopspring/decimal"
)

// CategoryBudget is one category's row in the monthly snapshot.
type CategoryBudget struct {
	CategoryID string `json:"categoryID"`
	Name       string `json:"name"`
	// Limit is the nominal limit resolved for the month.
	Limit Money `json:"limit"`
	// Carryover is the signed balance inherited from the prior month
	// (zero Money when no carryover row exists).
	Carryover Money `json:"carryover"`
	// EffectiveLimit = Limit + Carryover.
	EffectiveLimit Money `json:"effectiveLimit"`
	Spent          Money `json:"spent"`
	// Remaining = EffectiveLimit - Spent; negative when overspent.
	Remaining   Money `json:"remaining"`
	IsOverspent bool  `json:"isOverspent"`
	// PercentUsed = Spent / EffectiveLimit * 100, zero when the effective
	// limit is zero.
	PercentUsed decimal.Decimal `json:"percentUsed"`
}

// Snapshot is the whole-budget view of one month for one owner.
type Snapshot struct {
	YearMonth      YearMonth        `json:"yearMonth"`
	TotalIncome    Money            `json:"totalIncome"`
	TotalSpent     Money            `json:"totalSpent"`
	TotalLimits    Money            `json:"totalLimits"`
	TotalRemaining Money            `json:"totalRemaining"` // TotalIncome - TotalSpent
	Categories     []CategoryBudget `json:"categories"`
}

// SourceTile re-slices one month's spend and limits by income source.
// Multi-source categories apportion spend and debt to each source in
// proportion to the source's share of the category limit; the ledger does not
// record which source's money was literally spent.
type SourceTile struct {
	Source IncomeSource `json:"source"`
	// Income received from this source during the month.
	Income Money `json:"income"`
	// Limits is the total of this source's contributions to category limits.
	Limits Money `json:"limits"`
	// Spent is the spend attributed to this source by contribution ratio.
	Spent Money `json:"spent"`
	// Remaining = Limits - Spent.
	Remaining Money `json:"remaining"`
	// Debt is inherited overspend (negative carryover) attributed to this
	// source by the same ratio.
	Debt Money `json:"debt"`
	// Balance = Income - Spent - Debt.
	Balance Money `json:"balance"`
}

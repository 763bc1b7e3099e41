package domain

import (
	"github.com/shopspring/decimal"
)

// LimitType defines how a category's nominal monthly limit is derived.
type LimitType string

const (
	// LimitFixed means Value is an absolute currency amount per month.
	LimitFixed LimitType = "FIXED"
	// LimitPercent means Value is a percentage of the funding income.
	LimitPercent LimitType = "PERCENT"
)

// Category represents a spending category within the core domain.
// This is the primary representation used by services.
type Category struct {
	CategoryID string          `json:"categoryID"` // Primary Key (e.g., UUID)
	OwnerID    string          `json:"ownerID"`    // Owning user ID
	Name       string          `json:"name"`       // User-defined name
	LimitType  LimitType       `json:"limitType"`  // FIXED or PERCENT
	Value      decimal.Decimal `json:"value"`      // Amount when FIXED, percentage when PERCENT; ignored for multi-source categories
	SourceID   *string         `json:"sourceID"`   // Nullable FK -> income_sources.source_id; funding rule for single-source percent categories
	// IsMultiSource marks categories funded by weighted FundingLink rows
	// instead of Value/SourceID.
	IsMultiSource bool `json:"isMultiSource"`
	AuditFields
}

// IncomeSource represents a stream of income (salary, freelance, ...).
// At most one source per owner may be the default.
type IncomeSource struct {
	SourceID  string `json:"sourceID"` // Primary Key (e.g., UUID)
	OwnerID   string `json:"ownerID"`  // Owning user ID
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	AuditFields
}

// ContributionKind tags how a FundingLink contributes to a category limit.
type ContributionKind string

const (
	// ContributionFixed is an absolute currency amount per month.
	ContributionFixed ContributionKind = "FIXED"
	// ContributionPercent is a percentage of the source's income for the month.
	ContributionPercent ContributionKind = "PERCENT"
)

// Contribution is a tagged variant: either a fixed currency amount or a
// percentage of a source's monthly income. The tag is explicit so the same
// decimal is never read two ways.
type Contribution struct {
	Kind  ContributionKind `json:"kind"`
	Value decimal.Decimal  `json:"value"` // currency amount for FIXED, percentage for PERCENT
}

// FixedContribution builds a FIXED contribution of the given amount.
func FixedContribution(amount decimal.Decimal) Contribution {
	return Contribution{Kind: ContributionFixed, Value: amount}
}

// PercentContribution builds a PERCENT contribution of the given percentage.
func PercentContribution(percent decimal.Decimal) Contribution {
	return Contribution{Kind: ContributionPercent, Value: percent}
}

// FundingLink ties a multi-source category to one of the income sources that
// fund it, with a weighted contribution.
type FundingLink struct {
	CategoryID   string       `json:"categoryID"` // FK -> categories.category_id
	SourceID     string       `json:"sourceID"`   // FK -> income_sources.source_id
	Contribution Contribution `json:"contribution"`
	AuditFields
}

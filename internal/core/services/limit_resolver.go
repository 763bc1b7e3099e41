package services

import (
	"fmt"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/dkruglov/family_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthIncome carries the income aggregates limit resolution needs for one
// month: per-source sums plus the whole-month total, which is the fallback
// for percent categories with no funding rule. Amounts are in the owner's
// base currency.
type MonthIncome struct {
	BySource     map[string]decimal.Decimal
	Total        decimal.Decimal
	CurrencyCode string
}

// NewMonthIncome builds MonthIncome from a per-source aggregate.
func NewMonthIncome(bySource map[string]decimal.Decimal, currencyCode string) MonthIncome {
	total := decimal.Zero
	for _, amount := range bySource {
		total = total.Add(amount)
	}
	return MonthIncome{BySource: bySource, Total: total, CurrencyCode: currencyCode}
}

// SourceIncome returns the month's income of one source, zero when none.
func (mi MonthIncome) SourceIncome(sourceID string) decimal.Decimal {
	if amount, ok := mi.BySource[sourceID]; ok {
		return amount
	}
	return decimal.Zero
}

// ResolveLimit computes a category's nominal limit for the month described by
// income. No rounding happens here; display quantization is the assembler's
// concern.
//
// Policy:
//   - single-source FIXED: the category value is the limit;
//   - single-source PERCENT: value% of the funding source's income, or of the
//     whole month's income when the category has no funding rule;
//   - multi-source: the sum of the funding links, each either a fixed amount
//     or a percentage of its own source's income.
func ResolveLimit(category domain.Category, links []domain.FundingLink, income MonthIncome) (domain.Money, error) {
	if category.IsMultiSource {
		total := decimal.Zero
		for _, link := range links {
			contribution, err := linkContribution(link, income)
			if err != nil {
				return domain.Money{}, err
			}
			total = total.Add(contribution)
		}
		return domain.NewMoney(total, income.CurrencyCode), nil
	}

	switch category.LimitType {
	case domain.LimitFixed:
		return domain.NewMoney(category.Value, income.CurrencyCode), nil
	case domain.LimitPercent:
		base := income.Total
		if category.SourceID != nil {
			base = income.SourceIncome(*category.SourceID)
		}
		return domain.NewMoney(base.Mul(category.Value).Div(hundred), income.CurrencyCode), nil
	default:
		return domain.Money{}, fmt.Errorf("%w: unknown limit type %q on category %s", apperrors.ErrValidation, category.LimitType, category.CategoryID)
	}
}

// linkContribution resolves one funding link to a currency amount.
func linkContribution(link domain.FundingLink, income MonthIncome) (decimal.Decimal, error) {
	switch link.Contribution.Kind {
	case domain.ContributionFixed:
		return link.Contribution.Value, nil
	case domain.ContributionPercent:
		return income.SourceIncome(link.SourceID).Mul(link.Contribution.Value).Div(hundred), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown contribution kind %q on link %s/%s", apperrors.ErrValidation, link.Contribution.Kind, link.CategoryID, link.SourceID)
	}
}

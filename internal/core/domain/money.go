package domain

import (
	"fmt"
	"strings"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Money is an immutable decimal amount tagged with a 3-letter currency code.
// Arithmetic between two Money values requires matching currencies; scaling by
// a unitless decimal is always legal. Internal storage keeps full precision;
// rounding happens only at display time.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney creates a Money value from a decimal amount and a currency code.
// The code is normalized to upper case.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, CurrencyCode: strings.ToUpper(currencyCode)}
}

// NewMoneyFromString parses a decimal string into a Money value.
func NewMoneyFromString(amount string, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid decimal amount %q", apperrors.ErrValidation, amount)
	}
	return NewMoney(d, currencyCode), nil
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currencyCode string) Money {
	return NewMoney(decimal.Zero, currencyCode)
}

func (m Money) checkCurrency(other Money) error {
	if m.CurrencyCode != other.CurrencyCode {
		return fmt.Errorf("%w: %s vs %s", apperrors.ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return nil
}

// Add returns m + other. Fails with ErrCurrencyMismatch on differing currencies.
func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.Amount.Add(other.Amount), m.CurrencyCode), nil
}

// Sub returns m - other. Fails with ErrCurrencyMismatch on differing currencies.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.Amount.Sub(other.Amount), m.CurrencyCode), nil
}

// Mul scales the amount by a unitless factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return NewMoney(m.Amount.Mul(factor), m.CurrencyCode)
}

// Div scales the amount down by a unitless divisor.
func (m Money) Div(divisor decimal.Decimal) Money {
	return NewMoney(m.Amount.Div(divisor), m.CurrencyCode)
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return NewMoney(m.Amount.Neg(), m.CurrencyCode)
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	return NewMoney(m.Amount.Abs(), m.CurrencyCode)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// Convert applies an exchange rate, producing an amount in toCurrency.
func (m Money) Convert(rate decimal.Decimal, toCurrencyCode string) Money {
	return NewMoney(m.Amount.Mul(rate), toCurrencyCode)
}

// Format renders the amount rounded half-up to 2 decimal places with
// thousands grouping, e.g. "12,345.68" or "12,345.68 RUB" when showCurrency
// is set. Only display rounds; the stored amount keeps full precision.
func (m Money) Format(showCurrency bool) string {
	s := groupThousands(m.Amount.Round(2).StringFixed(2))
	if showCurrency {
		return s + " " + m.CurrencyCode
	}
	return s
}

// String implements fmt.Stringer using the currency-qualified display form.
func (m Money) String() string {
	return m.Format(true)
}

// groupThousands inserts comma separators into the integer part of a fixed
// decimal string, preserving any leading minus sign.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}

package domain

import (
	"fmt"
	"iter"
	"time"

	"github.com/dkruglov/family_budget_app/internal/apperrors"
)

// YearMonth identifies a calendar month, the unit of budget recurrence.
// It is a pure value type with a total order.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// YearMonthOf returns the YearMonth containing the given instant.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "YYYY-MM" form.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: invalid year-month %q, expected YYYY-MM", apperrors.ErrValidation, s)
	}
	return YearMonthOf(t), nil
}

// String renders the "YYYY-MM" form.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Date returns the first day of the month at midnight UTC.
func (ym YearMonth) Date() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns the last day of the month at midnight UTC.
func (ym YearMonth) LastDay() time.Time {
	return ym.Date().AddDate(0, 1, -1)
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	return YearMonthOf(ym.Date().AddDate(0, 1, 0))
}

// Prev returns the preceding month.
func (ym YearMonth) Prev() YearMonth {
	return YearMonthOf(ym.Date().AddDate(0, -1, 0))
}

// Compare returns -1, 0 or +1 ordering ym against other chronologically.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year != other.Year:
		if ym.Year < other.Year {
			return -1
		}
		return 1
	case ym.Month != other.Month:
		if ym.Month < other.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Compare(other) < 0
}

// After reports whether ym is strictly later than other.
func (ym YearMonth) After(other YearMonth) bool {
	return ym.Compare(other) > 0
}

// MonthsBetween returns the signed number of whole months from ym to other.
func (ym YearMonth) MonthsBetween(other YearMonth) int {
	return (other.Year-ym.Year)*12 + int(other.Month) - int(ym.Month)
}

// RangeTo returns a finite, restartable ascending sequence of months from ym
// to 'to', inclusive of both ends. The sequence is empty when to < ym.
func (ym YearMonth) RangeTo(to YearMonth) iter.Seq[YearMonth] {
	return func(yield func(YearMonth) bool) {
		for cur := ym; !cur.After(to); cur = cur.Next() {
			if !yield(cur) {
				return
			}
		}
	}
}

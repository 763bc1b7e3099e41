package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIncomeRequest defines the structure for recording received income.
type CreateIncomeRequest struct {
	SourceID     string          `json:"sourceID" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Date         time.Time       `json:"date" binding:"required"`
}

// CreateExpenseRequest defines the structure for recording real spend.
type CreateExpenseRequest struct {
	CategoryID   string          `json:"categoryID" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Date         time.Time       `json:"date" binding:"required"`
}

package domain

import "time"

// TxnKind discriminates real spend rows from engine-managed carryover rows,
// which share the expenses table.
type TxnKind string

const (
	// KindExpense rows are real spend created by user action; the engine
	// never mutates them.
	KindExpense TxnKind = "EXPENSE"
	// KindCarryover rows are synthetic balance transfers owned by the
	// carryover engine: positive amounts extend the month's effective limit,
	// negative amounts are inherited debt shrinking it.
	KindCarryover TxnKind = "CARRYOVER"
)

// Income represents money received from an income source on a given date.
type Income struct {
	IncomeID string    `json:"incomeID"` // Primary Key (e.g., UUID)
	OwnerID  string    `json:"ownerID"`  // Owning user ID
	SourceID string    `json:"sourceID"` // FK -> income_sources.source_id (NON-NULL)
	Amount   Money     `json:"amount"`
	Date     time.Time `json:"date"`
	AuditFields
}

// Expense represents one row of the expense ledger: either real spend or a
// carryover pseudo-transaction, per Kind.
type Expense struct {
	ExpenseID  string    `json:"expenseID"`  // Primary Key (e.g., UUID)
	OwnerID    string    `json:"ownerID"`    // Owning user ID
	CategoryID string    `json:"categoryID"` // FK -> categories.category_id (NON-NULL)
	Amount     Money     `json:"amount"`     // Signed for carryover rows, positive for real spend
	Date       time.Time `json:"date"`
	Kind       TxnKind   `json:"kind"`
	// CarryoverFrom is the month whose closing balance this row transfers.
	// Set only on KindCarryover rows.
	CarryoverFrom *YearMonth `json:"carryoverFrom,omitempty"`
	AuditFields
}

// IsCarryover reports whether the row is an engine-managed balance transfer.
func (e Expense) IsCarryover() bool {
	return e.Kind == KindCarryover
}

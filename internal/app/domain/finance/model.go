// Package finance defines ledger transactions and the yearly statistics
// view. Amounts are integer minor currency units; the server does no
// currency conversion.
package finance

import "time"

// Type classifies a transaction.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// ParseType validates a raw type string; ok is false for unknown values.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeIncome, TypeExpense:
		return Type(raw), true
	}
	return "", false
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       Type      `json:"type"`
	Amount     int64     `json:"amount"`
	Category   string    `json:"category,omitempty"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// MonthStat is one calendar month's totals.
type MonthStat struct {
	Month   int   `json:"month"`
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// YearStats aggregates a year into twelve month buckets plus year totals.
type YearStats struct {
	Year    int         `json:"year"`
	Months  []MonthStat `json:"months"`
	Income  int64       `json:"income"`
	Expense int64       `json:"expense"`
	Balance int64       `json:"balance"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// CategoryIncome is the sentinel category carried by every income record.
const CategoryIncome = "Income"

// CategoryGeneral is the fallback category for expenses created without one.
const CategoryGeneral = "General"

// ExpenseCategories is the suggested category set shown by clients. It is
// advisory: free-form expense categories are accepted as well.
var ExpenseCategories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills",
	"Healthcare",
	"Education",
	"Travel",
	"General",
}

// Transaction is a single income or expense record. ID and UserID are set
// at creation and never change. Date is the canonical ISO yyyy-MM-dd day
// the record is attributed to.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionDraft carries the caller-supplied fields of a create or
// update. Everything else (id, owner, date) is assigned by the store.
type TransactionDraft struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
}

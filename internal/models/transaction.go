package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind constrains which account references a transaction carries.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"  // into ToAccount
	KindExpense  TransactionKind = "expense"  // out of FromAccount
	KindTransfer TransactionKind = "transfer" // FromAccount to ToAccount
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDeposit, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Transaction represents a persisted movement of value.
type Transaction struct {
	ID              string          `json:"id"`
	Kind            TransactionKind `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	FromAccountID   *string         `json:"from_account_id"`
	ToAccountID     *string         `json:"to_account_id"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionView is a transaction joined with its participant accounts and tags.
type TransactionView struct {
	Transaction
	FromAccount *AccountRef `json:"from_account"`
	ToAccount   *AccountRef `json:"to_account"`
	Tags        []Tag       `json:"tags"`
}

// CreateTransactionRequest represents the request to create a transaction.
type CreateTransactionRequest struct {
	Kind            TransactionKind `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	FromAccountID   *string         `json:"fromAccountId,omitempty"`
	ToAccountID     *string         `json:"toAccountId,omitempty"`
	Description     *string         `json:"description,omitempty"`
	TransactionDate time.Time       `json:"-"`
	TagIDs          []string        `json:"tagIds,omitempty"`
}

// TransactionFilter narrows a transaction listing. Empty fields match everything.
type TransactionFilter struct {
	// AccountID matches transactions where the account is either participant.
	AccountID string
	Kind      TransactionKind
}

// TransactionDateLayouts are the accepted text forms of a transaction date,
// tried in order. Layouts without a zone are read as UTC.
var TransactionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTransactionDate parses s with the first matching layout.
func ParseTransactionDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range TransactionDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q: %w", s, err)
}

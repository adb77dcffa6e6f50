package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied to accounts created without a currency.
const DefaultCurrency = "USD"

// Account is a named store of value with a currency and a caller-managed balance.
type Account struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"` // cash, bank, credit, other
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	Description *string         `json:"description,omitempty"`
	Tags        []Tag           `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AccountRef is the minimal projection of an account embedded in transaction views.
type AccountRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// CreateAccountRequest represents the request to create an account.
type CreateAccountRequest struct {
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Currency    string           `json:"currency,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Description *string          `json:"description,omitempty"`
	TagIDs      []string         `json:"tagIds,omitempty"`
}

// UpdateAccountRequest represents the request to update an account.
// Nil fields are left untouched. TagIDs distinguishes an omitted list (nil)
// from an explicitly empty one, which clears every tag.
type UpdateAccountRequest struct {
	Name        *string          `json:"name,omitempty"`
	Type        *string          `json:"type,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Description *string          `json:"description,omitempty"`
	TagIDs      *[]string        `json:"tagIds,omitempty"`
}

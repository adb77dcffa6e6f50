// Package beancount writes ledger data as Beancount plain-text files.
package beancount

import "github.com/shopspring/decimal"

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string            // YYYY-MM-DD
	Narration string            // Transaction description
	Payee     string            // Payee name (optional)
	Tags      []string          // Tags without the leading '#'
	Links     []string          // Links without the leading '^' (optional)
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string          // Account name (e.g., "Assets:Bank:Checking")
	Amount   decimal.Decimal // Positive for debit, negative for credit
	Currency string          // Currency code (e.g., "USD")
	Comment  string          // Posting comment (optional)
}

// Open represents an account open directive.
type Open struct {
	Date       string
	Account    string
	Currencies []string
}

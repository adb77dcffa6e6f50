// Package db provides SQLite storage for the ledger: connection management,
// the schema, and the atomic multi-statement primitive the ledger relies on.
package db

import "context"

// DefaultTagColor is applied to tags created without a color.
const DefaultTagColor = "#3B82F6"

// Schema defines the SQL statements to create database tables.
const Schema = `
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT NOT NULL DEFAULT '#3B82F6',
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,                -- cash, bank, credit, other (open set)
    currency TEXT NOT NULL DEFAULT 'USD',
    balance TEXT NOT NULL DEFAULT '0', -- decimal text, caller-managed
    description TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_created
    ON accounts(created_at);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL CHECK (kind IN ('deposit', 'expense', 'transfer')),
    amount TEXT NOT NULL,              -- decimal text, always > 0
    from_account_id TEXT REFERENCES accounts(id) ON DELETE RESTRICT,
    to_account_id TEXT REFERENCES accounts(id) ON DELETE RESTRICT,
    description TEXT,
    transaction_date TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_from
    ON transactions(from_account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_to
    ON transactions(to_account_id);

CREATE INDEX IF NOT EXISTS idx_transactions_date
    ON transactions(transaction_date);

CREATE TABLE IF NOT EXISTS account_tags (
    account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (account_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_account_tags_tag
    ON account_tags(tag_id);

CREATE TABLE IF NOT EXISTS transaction_tags (
    transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (transaction_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_transaction_tags_tag
    ON transaction_tags(tag_id);

-- Transactions already written to a Beancount file by the export command.
-- No foreign key: the file keeps the entry after the transaction is deleted.
CREATE TABLE IF NOT EXISTS export_history (
    transaction_id TEXT PRIMARY KEY,
    beancount_file TEXT NOT NULL,
    exported_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Key-value metadata (last seed time and similar)
CREATE TABLE IF NOT EXISTS ledger_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(ctx context.Context, q Querier) error {
	if _, err := q.ExecContext(ctx, Schema); err != nil {
		return err
	}
	return nil
}

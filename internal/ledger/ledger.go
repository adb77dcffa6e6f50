// Package ledger is the consistency engine of the ledger: it validates and
// persists tags, accounts and transactions and keeps their tag associations
// consistent with their owners. Every multi-statement write runs as one
// atomic unit through db.DB.Transaction.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// DefaultTimeout bounds a single operation when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

// Options configures the ledger components.
type Options struct {
	// Timeout bounds every operation's store round trips.
	Timeout time.Duration
	Logger  *slog.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// Ledger bundles the components sharing one store.
type Ledger struct {
	Tags         *TagRegistry
	Accounts     *AccountStore
	Transactions *TransactionEngine
	Query        *Query
}

// New wires all ledger components onto store.
func New(store db.DB, opts Options) *Ledger {
	b := newBase(store, opts)
	assoc := &associations{}
	query := &Query{base: b, assoc: assoc}

	return &Ledger{
		Tags:         &TagRegistry{base: b},
		Accounts:     &AccountStore{base: b, assoc: assoc, query: query},
		Transactions: &TransactionEngine{base: b, assoc: assoc, query: query},
		Query:        query,
	}
}

// base carries the dependencies shared by every component.
type base struct {
	db      db.DB
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func newBase(store db.DB, opts Options) base {
	b := base{
		db:      store,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if b.timeout <= 0 {
		b.timeout = DefaultTimeout
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// stamp returns the current time in UTC, truncated to microseconds so values
// survive a round trip through the store unchanged.
func (b base) stamp() time.Time {
	return b.now().UTC().Truncate(time.Microsecond)
}

func newID() string {
	return uuid.NewString()
}

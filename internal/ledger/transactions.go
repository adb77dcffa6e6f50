package ledger

import (
	"context"
	"strings"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// TransactionEngine validates and persists transactions. It does not touch
// account balances.
type TransactionEngine struct {
	base
	assoc *associations
	query *Query
}

// List returns transactions matching filter, newest transaction date first.
func (e *TransactionEngine) List(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionView, error) {
	return e.query.Transactions(ctx, filter)
}

// Get returns one transaction with accounts and tags resolved.
func (e *TransactionEngine) Get(ctx context.Context, id string) (*models.TransactionView, error) {
	return e.query.Transaction(ctx, id)
}

// Create validates req and persists the transaction and its tag associations
// as one atomic unit. Rules are checked in order and the first violation is
// returned before anything is written.
func (e *TransactionEngine) Create(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	from, to, err := participants(req)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount", "amount must be greater than zero")
	}
	if req.TransactionDate.IsZero() {
		return nil, invalid("transactionDate", "transaction date is required")
	}
	tagIDs, err := normalizeTagIDs(req.TagIDs)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:              newID(),
		Kind:            req.Kind,
		Amount:          req.Amount,
		FromAccountID:   from,
		ToAccountID:     to,
		Description:     req.Description,
		TransactionDate: req.TransactionDate.UTC(),
		CreatedAt:       e.stamp(),
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err = e.db.Transaction(ctx, func(q db.Querier) error {
		for _, ref := range []*string{from, to} {
			if ref == nil {
				continue
			}
			if err := requireAccount(ctx, q, *ref); err != nil {
				return err
			}
		}

		_, err := q.ExecContext(ctx, `
			INSERT INTO transactions (id, kind, amount, from_account_id, to_account_id, description, transaction_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, txn.ID, string(txn.Kind), txn.Amount.String(), txn.FromAccountID, txn.ToAccountID,
			txn.Description, txn.TransactionDate, txn.CreatedAt)
		if err != nil {
			return storeErr("insert transaction", err)
		}

		if len(tagIDs) == 0 {
			return nil
		}
		return e.assoc.replaceTags(ctx, q, ownerTransaction, txn.ID, tagIDs)
	})
	if err != nil {
		return nil, storeErr("create transaction", err)
	}

	e.logger.Info("transaction created", "transaction_id", txn.ID, "type", txn.Kind, "amount", txn.Amount.String())
	return txn, nil
}

// Delete removes a transaction and its tag associations.
func (e *TransactionEngine) Delete(ctx context.Context, id string) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := e.db.Transaction(ctx, func(q db.Querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ?`, id); err != nil {
			return storeErr("delete transaction tags", err)
		}

		res, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return storeErr("delete transaction", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storeErr("delete transaction", err)
		}
		if n == 0 {
			return notFound("transaction", id)
		}
		return nil
	})
	if err != nil {
		return storeErr("delete transaction", err)
	}

	e.logger.Info("transaction deleted", "transaction_id", id)
	return nil
}

// participants checks the kind and returns the account references it keeps:
// deposits keep only the destination, expenses only the source, transfers
// both, which must differ.
func participants(req models.CreateTransactionRequest) (from, to *string, err error) {
	if !req.Kind.Valid() {
		return nil, nil, invalid("type", "transaction type must be one of deposit, expense, transfer")
	}

	from = trimRef(req.FromAccountID)
	to = trimRef(req.ToAccountID)

	switch req.Kind {
	case models.KindDeposit:
		if to == nil {
			return nil, nil, invalid("toAccountId", "deposit requires toAccountId")
		}
		return nil, to, nil
	case models.KindExpense:
		if from == nil {
			return nil, nil, invalid("fromAccountId", "expense requires fromAccountId")
		}
		return from, nil, nil
	default:
		if from == nil {
			return nil, nil, invalid("fromAccountId", "transfer requires fromAccountId")
		}
		if to == nil {
			return nil, nil, invalid("toAccountId", "transfer requires toAccountId")
		}
		if *from == *to {
			return nil, nil, invalid("toAccountId", "transfer accounts must differ")
		}
		return from, to, nil
	}
}

func trimRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" {
		return nil
	}
	return &v
}

func requireAccount(ctx context.Context, q db.Querier, id string) error {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE id = ?`, id).Scan(&n); err != nil {
		return storeErr("look up account", err)
	}
	if n == 0 {
		return notFound("account", id)
	}
	return nil
}

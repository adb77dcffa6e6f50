package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// Query assembles denormalized read views. It holds no state of its own.
type Query struct {
	base
	assoc *associations
}

const accountColumns = `id, name, type, currency, balance, description, created_at, updated_at`

// Accounts returns every account, newest first, with tags resolved.
func (v *Query) Accounts(ctx context.Context) ([]models.Account, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	rows, err := v.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	ids := []string{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
		ids = append(ids, account.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate accounts", err)
	}
	rows.Close()

	tags, err := v.assoc.getTagsMany(ctx, v.db, ownerAccount, ids)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].Tags = tags[accounts[i].ID]
	}

	return accounts, nil
}

// Account returns one account with tags resolved.
func (v *Query) Account(ctx context.Context, id string) (*models.Account, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	return v.account(ctx, v.db, id)
}

func (v *Query) account(ctx context.Context, q db.Querier, id string) (*models.Account, error) {
	account, err := scanAccount(q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("account", id)
	}
	if err != nil {
		return nil, err
	}

	account.Tags, err = v.assoc.getTags(ctx, q, ownerAccount, id)
	if err != nil {
		return nil, err
	}
	return account, nil
}

const transactionViewQuery = `
	SELECT
		t.id, t.kind, t.amount, t.from_account_id, t.to_account_id,
		t.description, t.transaction_date, t.created_at,
		fa.name, fa.currency,
		ta.name, ta.currency
	FROM transactions t
	LEFT JOIN accounts fa ON fa.id = t.from_account_id
	LEFT JOIN accounts ta ON ta.id = t.to_account_id
`

// Transactions lists transactions matching filter, newest transaction date
// first, with participant accounts and tags resolved.
func (v *Query) Transactions(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionView, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, invalid("type", "unknown transaction type "+string(filter.Kind))
	}

	var where []string
	var args []any
	if filter.AccountID != "" {
		where = append(where, "(t.from_account_id = ? OR t.to_account_id = ?)")
		args = append(args, filter.AccountID, filter.AccountID)
	}
	if filter.Kind != "" {
		where = append(where, "t.kind = ?")
		args = append(args, string(filter.Kind))
	}

	query := transactionViewQuery
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC"

	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	views := []models.TransactionView{}
	ids := []string{}
	for rows.Next() {
		view, err := scanTransactionView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
		ids = append(ids, view.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate transactions", err)
	}
	rows.Close()

	tags, err := v.assoc.getTagsMany(ctx, v.db, ownerTransaction, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].Tags = tags[views[i].ID]
	}

	return views, nil
}

// Transaction returns one transaction view.
func (v *Query) Transaction(ctx context.Context, id string) (*models.TransactionView, error) {
	ctx, cancel := v.withTimeout(ctx)
	defer cancel()

	view, err := scanTransactionView(v.db.QueryRowContext(ctx, transactionViewQuery+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("transaction", id)
	}
	if err != nil {
		return nil, err
	}

	view.Tags, err = v.assoc.getTags(ctx, v.db, ownerTransaction, id)
	if err != nil {
		return nil, err
	}
	return view, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanAccount returns sql.ErrNoRows unwrapped so callers can map it.
func scanAccount(row scanner) (*models.Account, error) {
	var account models.Account
	var balance string
	var description sql.NullString

	err := row.Scan(&account.ID, &account.Name, &account.Type, &account.Currency,
		&balance, &description, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scan account", err)
	}

	account.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, storeErr("parse account balance", err)
	}
	if description.Valid {
		account.Description = &description.String
	}
	return &account, nil
}

func scanTransactionView(row scanner) (*models.TransactionView, error) {
	var view models.TransactionView
	var kind, amount string
	var fromID, toID, description sql.NullString
	var fromName, fromCurrency, toName, toCurrency sql.NullString

	err := row.Scan(&view.ID, &kind, &amount, &fromID, &toID,
		&description, &view.TransactionDate, &view.CreatedAt,
		&fromName, &fromCurrency, &toName, &toCurrency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storeErr("scan transaction", err)
	}

	view.Kind = models.TransactionKind(kind)
	view.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, storeErr("parse transaction amount", err)
	}
	if description.Valid {
		view.Description = &description.String
	}
	if fromID.Valid {
		view.FromAccountID = &fromID.String
		view.FromAccount = &models.AccountRef{ID: fromID.String, Name: fromName.String, Currency: fromCurrency.String}
	}
	if toID.Valid {
		view.ToAccountID = &toID.String
		view.ToAccount = &models.AccountRef{ID: toID.String, Name: toName.String, Currency: toCurrency.String}
	}
	return &view, nil
}

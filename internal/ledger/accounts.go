package ledger

import (
	"context"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// AccountStore manages accounts. Balances are caller-managed: nothing in the
// ledger derives them from transactions.
type AccountStore struct {
	base
	assoc *associations
	query *Query
}

// List returns all accounts, newest first, with their tags.
func (s *AccountStore) List(ctx context.Context) ([]models.Account, error) {
	return s.query.Accounts(ctx)
}

// Get returns a single account with its tags.
func (s *AccountStore) Get(ctx context.Context, id string) (*models.Account, error) {
	return s.query.Account(ctx, id)
}

// Create persists an account and attaches the given tags in one atomic unit.
func (s *AccountStore) Create(ctx context.Context, req models.CreateAccountRequest) (*models.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name", "account name is required")
	}
	accountType := strings.TrimSpace(req.Type)
	if accountType == "" {
		return nil, invalid("type", "account type is required")
	}
	currency := models.DefaultCurrency
	if strings.TrimSpace(req.Currency) != "" {
		var err error
		if currency, err = normalizeCurrency(req.Currency); err != nil {
			return nil, err
		}
	}
	tagIDs, err := normalizeTagIDs(req.TagIDs)
	if err != nil {
		return nil, err
	}

	now := s.stamp()
	account := &models.Account{
		ID:          newID(),
		Name:        name,
		Type:        accountType,
		Currency:    currency,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.db.Transaction(ctx, func(q db.Querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO accounts (id, name, type, currency, balance, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, account.ID, account.Name, account.Type, account.Currency, account.Balance.String(),
			account.Description, account.CreatedAt, account.UpdatedAt)
		if err != nil {
			return storeErr("insert account", err)
		}

		if err := s.assoc.replaceTags(ctx, q, ownerAccount, account.ID, tagIDs); err != nil {
			return err
		}

		account.Tags, err = s.assoc.getTags(ctx, q, ownerAccount, account.ID)
		return err
	})
	if err != nil {
		return nil, storeErr("create account", err)
	}

	s.logger.Info("account created", "account_id", account.ID, "tags", len(account.Tags))
	return account, nil
}

// Update changes the supplied fields of an account. A non-nil TagIDs replaces
// the whole tag set, so a pointer to an empty slice clears it.
func (s *AccountStore) Update(ctx context.Context, id string, req models.UpdateAccountRequest) (*models.Account, error) {
	sets := []string{}
	args := []any{}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "account name must not be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if req.Type != nil {
		accountType := strings.TrimSpace(*req.Type)
		if accountType == "" {
			return nil, invalid("type", "account type must not be empty")
		}
		sets = append(sets, "type = ?")
		args = append(args, accountType)
	}
	if req.Currency != nil {
		currency, err := normalizeCurrency(*req.Currency)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "currency = ?")
		args = append(args, currency)
	}
	if req.Balance != nil {
		sets = append(sets, "balance = ?")
		args = append(args, req.Balance.String())
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}

	var tagIDs []string
	if req.TagIDs != nil {
		var err error
		if tagIDs, err = normalizeTagIDs(*req.TagIDs); err != nil {
			return nil, err
		}
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, s.stamp(), id)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var account *models.Account
	err := s.db.Transaction(ctx, func(q db.Querier) error {
		res, err := q.ExecContext(ctx, `UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return storeErr("update account", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return storeErr("update account", err)
		} else if n == 0 {
			return notFound("account", id)
		}

		if req.TagIDs != nil {
			if err := s.assoc.replaceTags(ctx, q, ownerAccount, id, tagIDs); err != nil {
				return err
			}
		}

		account, err = s.query.account(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, storeErr("update account", err)
	}

	s.logger.Info("account updated", "account_id", id, "tags_replaced", req.TagIDs != nil)
	return account, nil
}

// Delete removes an account and its tag associations. An account still
// referenced by a transaction cannot be deleted.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.Transaction(ctx, func(q db.Querier) error {
		if err := requireAccount(ctx, q, id); err != nil {
			return err
		}

		var refs int
		err := q.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE from_account_id = ? OR to_account_id = ?`, id, id,
		).Scan(&refs)
		if err != nil {
			return storeErr("count account references", err)
		}
		if refs > 0 {
			return &ConflictError{Entity: "account", ID: id, Reason: "still referenced by transactions"}
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM account_tags WHERE account_id = ?`, id); err != nil {
			return storeErr("delete account tags", err)
		}
		_, err = q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
		return storeErr("delete account", err)
	})
	if err != nil {
		return storeErr("delete account", err)
	}

	s.logger.Info("account deleted", "account_id", id)
	return nil
}

// normalizeCurrency upper-cases code and checks it is a known ISO 4217 code.
func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", invalid("currency", "currency code must not be empty")
	}
	if money.GetCurrency(code) == nil {
		return "", invalid("currency", "unknown currency code "+code)
	}
	return code, nil
}

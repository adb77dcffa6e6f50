// Package seed loads YAML fixtures into the ledger. Fixtures refer to tags
// and accounts by name; every record goes through the regular ledger
// operations, so the usual validation and atomicity apply.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Tags         []TagFixture         `yaml:"tags"`
	Accounts     []AccountFixture     `yaml:"accounts"`
	Transactions []TransactionFixture `yaml:"transactions"`
}

// TagFixture describes a tag.
type TagFixture struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

// AccountFixture describes an account. Tags are tag names.
type AccountFixture struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Currency    string   `yaml:"currency"`
	Balance     string   `yaml:"balance"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// TransactionFixture describes a transaction. From and To are account names.
type TransactionFixture struct {
	Type        string   `yaml:"type"`
	Amount      string   `yaml:"amount"`
	From        string   `yaml:"from"`
	To          string   `yaml:"to"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Result counts what a load created.
type Result struct {
	Tags         int
	TagsReused   int
	Accounts     int
	Transactions int
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse parses fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &fx, nil
}

// Loader applies fixtures to a ledger.
type Loader struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(l *ledger.Ledger, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{ledger: l, logger: logger}
}

// Apply creates the fixture's tags, accounts and transactions in that order.
// Tags whose name already exists are reused. Apply stops at the first
// failing record; records created before it are kept.
func (l *Loader) Apply(ctx context.Context, fx *Fixture) (*Result, error) {
	result := &Result{}

	tagIDs, err := l.applyTags(ctx, fx.Tags, result)
	if err != nil {
		return result, err
	}

	accountIDs := make(map[string]string, len(fx.Accounts))
	for i, af := range fx.Accounts {
		req, err := accountRequest(af, tagIDs)
		if err != nil {
			return result, fmt.Errorf("account %d (%s): %w", i, af.Name, err)
		}
		account, err := l.ledger.Accounts.Create(ctx, req)
		if err != nil {
			return result, fmt.Errorf("account %d (%s): %w", i, af.Name, err)
		}
		accountIDs[account.Name] = account.ID
		result.Accounts++
	}

	for i, tf := range fx.Transactions {
		req, err := transactionRequest(tf, tagIDs, accountIDs)
		if err != nil {
			return result, fmt.Errorf("transaction %d: %w", i, err)
		}
		if _, err := l.ledger.Transactions.Create(ctx, req); err != nil {
			return result, fmt.Errorf("transaction %d: %w", i, err)
		}
		result.Transactions++
	}

	l.logger.Info("seed applied",
		"tags", result.Tags,
		"tags_reused", result.TagsReused,
		"accounts", result.Accounts,
		"transactions", result.Transactions,
	)
	return result, nil
}

// applyTags returns a name to id index covering both existing and new tags.
func (l *Loader) applyTags(ctx context.Context, fixtures []TagFixture, result *Result) (map[string]string, error) {
	existing, err := l.ledger.Tags.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(existing)+len(fixtures))
	for _, tag := range existing {
		ids[tag.Name] = tag.ID
	}

	for i, tf := range fixtures {
		name := strings.TrimSpace(tf.Name)
		if _, ok := ids[name]; ok && name != "" {
			result.TagsReused++
			continue
		}

		req := models.CreateTagRequest{Name: name}
		if tf.Color != "" {
			req.Color = &tf.Color
		}
		tag, err := l.ledger.Tags.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("tag %d (%s): %w", i, tf.Name, err)
		}
		ids[tag.Name] = tag.ID
		result.Tags++
	}
	return ids, nil
}

func accountRequest(af AccountFixture, tagIDs map[string]string) (models.CreateAccountRequest, error) {
	req := models.CreateAccountRequest{
		Name:     af.Name,
		Type:     af.Type,
		Currency: af.Currency,
	}
	if af.Balance != "" {
		balance, err := decimal.NewFromString(af.Balance)
		if err != nil {
			return req, fmt.Errorf("invalid balance %q: %w", af.Balance, err)
		}
		req.Balance = &balance
	}
	if af.Description != "" {
		req.Description = &af.Description
	}

	ids, err := resolve("tag", af.Tags, tagIDs)
	if err != nil {
		return req, err
	}
	req.TagIDs = ids
	return req, nil
}

func transactionRequest(tf TransactionFixture, tagIDs, accountIDs map[string]string) (models.CreateTransactionRequest, error) {
	req := models.CreateTransactionRequest{
		Kind: models.TransactionKind(tf.Type),
	}

	amount, err := decimal.NewFromString(tf.Amount)
	if err != nil {
		return req, fmt.Errorf("invalid amount %q: %w", tf.Amount, err)
	}
	req.Amount = amount

	if tf.Date != "" {
		if req.TransactionDate, err = models.ParseTransactionDate(tf.Date); err != nil {
			return req, err
		}
	}
	if tf.Description != "" {
		req.Description = &tf.Description
	}

	for _, ref := range []struct {
		name string
		dst  **string
	}{
		{tf.From, &req.FromAccountID},
		{tf.To, &req.ToAccountID},
	} {
		if ref.name == "" {
			continue
		}
		id, ok := accountIDs[ref.name]
		if !ok {
			return req, fmt.Errorf("unknown account %q", ref.name)
		}
		*ref.dst = &id
	}

	if req.TagIDs, err = resolve("tag", tf.Tags, tagIDs); err != nil {
		return req, err
	}
	return req, nil
}

func resolve(entity string, names []string, ids map[string]string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := ids[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown %s %q", entity, name)
		}
		out = append(out, id)
	}
	return out, nil
}

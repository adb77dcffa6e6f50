package converter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/beancount"
)

// MetadataKeyLedgerID links a Beancount entry back to its ledger transaction.
const MetadataKeyLedgerID = "ledger-id"

// ErrCurrencyMismatch is returned for a transfer between accounts held in
// different currencies, which has no single-currency posting pair.
var ErrCurrencyMismatch = errors.New("transfer accounts have different currencies")

// Converter converts ledger transactions to Beancount format.
type Converter struct {
	mapper   *Mapper
	accounts map[string]models.Account
}

// NewConverter creates a new Converter. accounts supplies the type and
// currency of every account a transaction may reference.
func NewConverter(mapper *Mapper, accounts []models.Account) *Converter {
	byID := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Converter{
		mapper:   mapper,
		accounts: byID,
	}
}

// AccountName returns the Beancount account for a ledger account: the
// mapped name if any, otherwise {Root}:{Type}:{Name}.
func (c *Converter) AccountName(account models.Account) string {
	if mapped := c.mapper.GetBeancountAccount(account.Name); mapped != "" {
		return mapped
	}
	return fmt.Sprintf("%s:%s:%s", rootFor(account.Type),
		sanitizeComponent(account.Type), sanitizeComponent(account.Name))
}

// ConvertTransaction converts a transaction view to a balanced Beancount
// transaction. The destination side is debited and the source side credited.
func (c *Converter) ConvertTransaction(view models.TransactionView) (beancount.Transaction, error) {
	tags := make([]string, 0, len(view.Tags))
	for _, tag := range view.Tags {
		tags = append(tags, tag.Name)
	}

	var to, from string
	var currency string
	switch view.Kind {
	case models.KindDeposit:
		account, err := c.account(view.ToAccountID)
		if err != nil {
			return beancount.Transaction{}, err
		}
		to, currency = c.AccountName(account), account.Currency
		from = c.mapper.GetIncomeAccount(tags)
	case models.KindExpense:
		account, err := c.account(view.FromAccountID)
		if err != nil {
			return beancount.Transaction{}, err
		}
		from, currency = c.AccountName(account), account.Currency
		to = c.mapper.GetExpenseAccount(tags)
	case models.KindTransfer:
		toAccount, err := c.account(view.ToAccountID)
		if err != nil {
			return beancount.Transaction{}, err
		}
		fromAccount, err := c.account(view.FromAccountID)
		if err != nil {
			return beancount.Transaction{}, err
		}
		if toAccount.Currency != fromAccount.Currency {
			return beancount.Transaction{}, fmt.Errorf("%w: %s %s, %s %s", ErrCurrencyMismatch,
				fromAccount.Name, fromAccount.Currency, toAccount.Name, toAccount.Currency)
		}
		to, from = c.AccountName(toAccount), c.AccountName(fromAccount)
		currency = fromAccount.Currency
	default:
		return beancount.Transaction{}, fmt.Errorf("unsupported transaction type %q", view.Kind)
	}

	beanTags := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := sanitizeTag(tag); t != "" {
			beanTags = append(beanTags, t)
		}
	}

	return beancount.Transaction{
		Date:      view.TransactionDate.UTC().Format("2006-01-02"),
		Narration: buildNarration(view),
		Tags:      beanTags,
		Metadata:  map[string]string{MetadataKeyLedgerID: view.ID},
		Postings: []beancount.Posting{
			{Account: to, Amount: view.Amount, Currency: currency},
			{Account: from, Amount: view.Amount.Neg(), Currency: currency},
		},
	}, nil
}

// OpenDirectives returns one open directive per known account, dated on the
// account's creation day, plus the income and expense accounts used by txns.
// txns must hold every entry ever exported, so no earlier posting is left
// before its account opens.
func (c *Converter) OpenDirectives(txns []beancount.Transaction) []beancount.Open {
	var opens []beancount.Open
	seen := make(map[string]bool)
	earliest := ""

	accounts := make([]models.Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })

	for _, a := range accounts {
		name := c.AccountName(a)
		if seen[name] {
			continue
		}
		seen[name] = true
		date := a.CreatedAt.UTC().Format("2006-01-02")
		if earliest == "" || date < earliest {
			earliest = date
		}
		opens = append(opens, beancount.Open{Date: date, Account: name, Currencies: []string{a.Currency}})
	}

	var counters []string
	for _, txn := range txns {
		if earliest == "" || txn.Date < earliest {
			earliest = txn.Date
		}
		for _, p := range txn.Postings {
			if !seen[p.Account] {
				seen[p.Account] = true
				counters = append(counters, p.Account)
			}
		}
	}
	sort.Strings(counters)
	for _, name := range counters {
		opens = append(opens, beancount.Open{Date: earliest, Account: name})
	}

	// Accounts created after their first transaction must open by then.
	for i := range opens {
		for _, txn := range txns {
			for _, p := range txn.Postings {
				if p.Account == opens[i].Account && txn.Date < opens[i].Date {
					opens[i].Date = txn.Date
				}
			}
		}
	}

	return opens
}

func (c *Converter) account(id *string) (models.Account, error) {
	if id == nil {
		return models.Account{}, fmt.Errorf("transaction is missing an account reference")
	}
	account, ok := c.accounts[*id]
	if !ok {
		return models.Account{}, fmt.Errorf("unknown account %s", *id)
	}
	return account, nil
}

// Helper functions

func rootFor(accountType string) string {
	if strings.EqualFold(accountType, "credit") {
		return "Liabilities"
	}
	return "Assets"
}

// sanitizeComponent turns free text into a valid Beancount account
// component: words are capitalized and joined, other runes dropped.
func sanitizeComponent(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			sb.WriteRune(r)
		case r == '-':
			sb.WriteRune(r)
		default:
			upper = true
		}
	}

	s := strings.TrimLeft(sb.String(), "-")
	if s == "" {
		return "Unnamed"
	}
	if first := []rune(s)[0]; !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		s = "X" + s
	}
	return s
}

// sanitizeTag keeps the characters Beancount allows in tags.
func sanitizeTag(tag string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(tag) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r), strings.ContainsRune("-_/.", r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune('-')
		}
	}
	return sb.String()
}

func buildNarration(view models.TransactionView) string {
	if view.Description != nil && strings.TrimSpace(*view.Description) != "" {
		return strings.TrimSpace(*view.Description)
	}

	switch view.Kind {
	case models.KindDeposit:
		return "Deposit to " + refName(view.ToAccount)
	case models.KindExpense:
		return "Expense from " + refName(view.FromAccount)
	default:
		return fmt.Sprintf("Transfer from %s to %s", refName(view.FromAccount), refName(view.ToAccount))
	}
}

func refName(ref *models.AccountRef) string {
	if ref == nil {
		return "unknown account"
	}
	return ref.Name
}

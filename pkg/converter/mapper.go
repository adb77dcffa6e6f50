// Package converter provides conversion from ledger records to Beancount format.
package converter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultIncomeAccount  = "Income:Uncategorized"
	defaultExpenseAccount = "Expenses:Uncategorized"
)

// AccountMapping maps a ledger account name to a Beancount account name.
type AccountMapping struct {
	Ledger    string `yaml:"ledger"`
	Beancount string `yaml:"beancount"`
}

// TagMapping picks the counter account of deposits and expenses carrying a tag.
type TagMapping struct {
	Tag     string `yaml:"tag"`
	Income  string `yaml:"income"`
	Expense string `yaml:"expense"`
}

// MappingConfig represents the complete mapping configuration.
type MappingConfig struct {
	Accounts       []AccountMapping `yaml:"accounts"`
	Tags           []TagMapping     `yaml:"tags"`
	IncomeAccount  string           `yaml:"income_account"`
	ExpenseAccount string           `yaml:"expense_account"`
}

// Mapper maps ledger names to Beancount account names.
type Mapper struct {
	config         MappingConfig
	accounts       map[string]string
	tagIncome      map[string]string
	tagExpense     map[string]string
	incomeAccount  string
	expenseAccount string
}

// NewMapper creates a new Mapper from a YAML configuration file.
// An empty path yields a mapper that only uses derived names and defaults.
func NewMapper(configPath string) (*Mapper, error) {
	if configPath == "" {
		return NewMapperFromConfig(MappingConfig{}), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return NewMapperFromConfig(config), nil
}

// NewMapperFromConfig creates a Mapper from an already parsed configuration.
func NewMapperFromConfig(config MappingConfig) *Mapper {
	m := &Mapper{
		config:         config,
		accounts:       make(map[string]string),
		tagIncome:      make(map[string]string),
		tagExpense:     make(map[string]string),
		incomeAccount:  defaultIncomeAccount,
		expenseAccount: defaultExpenseAccount,
	}

	m.buildMappingMaps()

	return m
}

// buildMappingMaps builds internal mapping maps from configuration.
func (m *Mapper) buildMappingMaps() {
	for _, mapping := range m.config.Accounts {
		m.accounts[mapping.Ledger] = mapping.Beancount
	}

	for _, mapping := range m.config.Tags {
		if mapping.Income != "" {
			m.tagIncome[mapping.Tag] = mapping.Income
		}
		if mapping.Expense != "" {
			m.tagExpense[mapping.Tag] = mapping.Expense
		}
	}

	if m.config.IncomeAccount != "" {
		m.incomeAccount = m.config.IncomeAccount
	}
	if m.config.ExpenseAccount != "" {
		m.expenseAccount = m.config.ExpenseAccount
	}
}

// GetBeancountAccount returns the Beancount account name for a ledger account name.
// Returns empty string if no mapping is found.
func (m *Mapper) GetBeancountAccount(ledgerName string) string {
	return m.accounts[ledgerName]
}

// GetIncomeAccount returns the income account for the first mapped tag,
// falling back to the configured default.
func (m *Mapper) GetIncomeAccount(tags []string) string {
	for _, tag := range tags {
		if account := m.tagIncome[tag]; account != "" {
			return account
		}
	}
	return m.incomeAccount
}

// GetExpenseAccount returns the expense account for the first mapped tag,
// falling back to the configured default.
func (m *Mapper) GetExpenseAccount(tags []string) string {
	for _, tag := range tags {
		if account := m.tagExpense[tag]; account != "" {
			return account
		}
	}
	return m.expenseAccount
}

// Package routing holds the paycheck distribution table: which fixed amounts
// leave the primary account, and for which accounts, under each pay type.
package routing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/payday/internal/money"
)

var ErrInvalidTable = errors.New("invalid routing table")

//go:embed rules.yaml
var defaultRules []byte

// Transfer moves a fixed amount from the primary account to Account.
type Transfer struct {
	Account   string
	AccountID int64
	Amount    decimal.Decimal
}

type Rule struct {
	Key       string
	Label     string
	Transfers []Transfer
}

// Total is the sum of the rule's transfers.
func (r *Rule) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range r.Transfers {
		total = total.Add(t.Amount)
	}

	return total
}

// Table is immutable once loaded and safe for concurrent use.
type Table struct {
	primary     string
	primaryID   int64
	defaultRule string
	accounts    map[string]int64
	rules       map[string]*Rule
	order       []string
}

type fileTable struct {
	Primary     string           `yaml:"primary"`
	DefaultRule string           `yaml:"default_rule"`
	Accounts    map[string]int64 `yaml:"accounts"`
	Rules       []fileRule       `yaml:"rules"`
}

type fileRule struct {
	Key       string         `yaml:"key"`
	Label     string         `yaml:"label"`
	Transfers []fileTransfer `yaml:"transfers"`
}

type fileTransfer struct {
	Account string `yaml:"account"`
	Amount  string `yaml:"amount"`
}

// Load reads the table at path, or the built-in table when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading routing table: %w", err)
	}

	return Parse(data)
}

// Default returns the built-in table.
func Default() (*Table, error) {
	return Parse(defaultRules)
}

func Parse(data []byte) (*Table, error) {
	var ft fileTable
	if err := yaml.Unmarshal(data, &ft); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	primaryID, ok := ft.Accounts[ft.Primary]
	if ft.Primary == "" || !ok {
		return nil, fmt.Errorf("%w: primary account %q is not listed under accounts", ErrInvalidTable, ft.Primary)
	}

	t := &Table{
		primary:     ft.Primary,
		primaryID:   primaryID,
		defaultRule: ft.DefaultRule,
		accounts:    ft.Accounts,
		rules:       make(map[string]*Rule, len(ft.Rules)),
	}

	for _, fr := range ft.Rules {
		rule, err := t.buildRule(fr)
		if err != nil {
			return nil, err
		}

		t.rules[rule.Key] = rule
		t.order = append(t.order, rule.Key)
	}

	if t.defaultRule != "" {
		if _, ok := t.rules[t.defaultRule]; !ok {
			return nil, fmt.Errorf("%w: default rule %q is not defined", ErrInvalidTable, t.defaultRule)
		}
	}

	return t, nil
}

func (t *Table) buildRule(fr fileRule) (*Rule, error) {
	key := strings.TrimSpace(fr.Key)
	if key == "" {
		return nil, fmt.Errorf("%w: rule without key", ErrInvalidTable)
	}

	if _, dup := t.rules[key]; dup {
		return nil, fmt.Errorf("%w: rule %q defined twice", ErrInvalidTable, key)
	}

	rule := &Rule{Key: key, Label: fr.Label}
	if rule.Label == "" {
		rule.Label = key
	}

	seen := make(map[string]bool, len(fr.Transfers))

	for _, ft := range fr.Transfers {
		id, ok := t.accounts[ft.Account]
		if !ok {
			return nil, fmt.Errorf("%w: rule %q: unknown account %q", ErrInvalidTable, key, ft.Account)
		}

		if ft.Account == t.primary {
			return nil, fmt.Errorf("%w: rule %q transfers to the primary account", ErrInvalidTable, key)
		}

		if seen[ft.Account] {
			return nil, fmt.Errorf("%w: rule %q lists %q twice", ErrInvalidTable, key, ft.Account)
		}

		seen[ft.Account] = true

		amount, err := money.ParseBalance(ft.Amount)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: rule %q: amount %q for %q", ErrInvalidTable, key, ft.Amount, ft.Account)
		}

		rule.Transfers = append(rule.Transfers, Transfer{Account: ft.Account, AccountID: id, Amount: amount})
	}

	return rule, nil
}

// PrimaryAccountID is the account that receives the gross and funds every transfer.
func (t *Table) PrimaryAccountID() int64 {
	return t.primaryID
}

func (t *Table) DefaultRule() string {
	return t.defaultRule
}

// Rule resolves key, with the empty key meaning the default rule.
func (t *Table) Rule(key string) (*Rule, bool) {
	if key == "" {
		key = t.defaultRule
	}

	r, ok := t.rules[key]

	return r, ok
}

// Rules lists the rules in file order.
func (t *Table) Rules() []*Rule {
	rules := make([]*Rule, 0, len(t.order))
	for _, key := range t.order {
		rules = append(rules, t.rules[key])
	}

	return rules
}

// AccountIDs returns the primary account followed by every account a rule can credit.
func (t *Table) AccountIDs() []int64 {
	ids := []int64{t.primaryID}

	seen := map[int64]bool{t.primaryID: true}

	for _, key := range t.order {
		for _, tr := range t.rules[key].Transfers {
			if !seen[tr.AccountID] {
				seen[tr.AccountID] = true
				ids = append(ids, tr.AccountID)
			}
		}
	}

	return ids
}

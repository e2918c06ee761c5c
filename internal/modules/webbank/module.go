// Package webbank implements a bank backend over a selector-driven online
// banking portal: a plain credential form, an accounts page and per-account
// transaction pages, all located by configured CSS selectors.
package webbank

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "webbank",
		Description:  "Selector-driven online banking portal",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.BankName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Portal base URL", Required: true},
			{Key: "login_path", Label: "Login form action path"},
			{Key: "username", Label: "Username"},
			{Key: "password", Label: "Password", Masked: true},
			{Key: "username_field", Label: "Login form username field", Default: "username"},
			{Key: "password_field", Label: "Login form password field", Default: "password"},
			{Key: "failure_marker", Label: "Text shown on failed login", Default: "incorrect"},
			{Key: "accounts_path", Label: "Accounts page path", Required: true},
			{Key: "account_row", Label: "CSS selector for account rows", Required: true},
			{Key: "account_label", Label: "CSS selector for the account label", Required: true},
			{Key: "account_balance", Label: "CSS selector for the balance", Required: true},
			{Key: "account_link", Label: "CSS selector for the transactions link", Default: "a"},
			{Key: "tx_row", Label: "CSS selector for transaction rows", Required: true},
			{Key: "tx_date", Label: "CSS selector for the transaction date"},
			{Key: "tx_date_layout", Label: "Go time layout for transaction dates"},
			{Key: "tx_label", Label: "CSS selector for the transaction label", Required: true},
			{Key: "tx_amount", Label: "CSS selector for the transaction amount", Required: true},
			{Key: "currency", Label: "Fallback currency code", Default: "EUR"},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg)
		},
	})
}

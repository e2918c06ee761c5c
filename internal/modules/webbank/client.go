package webbank

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
	"github.com/gleanerd/gleaner/internal/page"
)

// conf is the typed view of the module config.
type conf struct {
	loginPath     string
	username      string
	password      string
	usernameField string
	passwordField string
	failureMarker string

	accountsPath   string
	accountRow     string
	accountLabel   page.ElementLocation
	accountBalance page.ElementLocation
	accountLink    page.ElementLocation

	txRow        string
	txDate       page.ElementLocation
	txDateLayout string
	txLabel      page.ElementLocation
	txAmount     page.ElementLocation

	currency string
}

type client struct {
	backend string
	browser *browser.Browser
	cfg     *conf

	loggedIn bool
}

var (
	_ capability.CapBank = (*client)(nil)
	_ browser.Loginer    = (*client)(nil)
)

func newClient(backend string, values module.Config) (*client, error) {
	cfg := &conf{
		loginPath:      values.Get("login_path"),
		username:       values.Get("username"),
		password:       values.Get("password"),
		usernameField:  values.Get("username_field"),
		passwordField:  values.Get("password_field"),
		failureMarker:  values.Get("failure_marker"),
		accountsPath:   values.Get("accounts_path"),
		accountRow:     values.Get("account_row"),
		accountLabel:   page.ElementLocation{Selector: values.Get("account_label")},
		accountBalance: page.ElementLocation{Selector: values.Get("account_balance")},
		accountLink:    page.ElementLocation{Selector: values.Get("account_link"), Attr: "href"},
		txRow:          values.Get("tx_row"),
		txDate:         page.ElementLocation{Selector: values.Get("tx_date")},
		txDateLayout:   values.Get("tx_date_layout"),
		txLabel:        page.ElementLocation{Selector: values.Get("tx_label")},
		txAmount:       page.ElementLocation{Selector: values.Get("tx_amount")},
		currency:       values.Get("currency"),
	}

	b, err := browser.New(browser.Options{
		BaseURL: values.Get("url"),
		Timeout: 30 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}

	c := &client{backend: backend, browser: b, cfg: cfg}

	// The accounts overview matches first; every other portal URL is
	// treated as a transactions page.
	accountsURL, err := b.Absolute(cfg.accountsPath)
	if err != nil {
		return nil, err
	}
	// Anchored so history pages nested under the accounts path still
	// dispatch to the transactions rule.
	b.Route(`^`+regexp.QuoteMeta(accountsURL)+`$`, func() browser.Page {
		return &accountsPage{cfg: cfg}
	})
	b.Route(`.*`, func() browser.Page {
		return &transactionsPage{cfg: cfg}
	})

	return c, nil
}

// Login submits the credential form when the portal has one. Portals
// without a login_path are treated as already authenticated.
func (c *client) Login(ctx context.Context) error {
	if c.cfg.loginPath == "" {
		c.loggedIn = true
		return nil
	}
	if c.cfg.username == "" || c.cfg.password == "" {
		return capability.WrapErr(c.backend, "login", capability.ErrIncorrectCredentials)
	}

	form := browser.LoginForm{
		Action:        c.cfg.loginPath,
		UsernameField: c.cfg.usernameField,
		PasswordField: c.cfg.passwordField,
	}
	_, err := c.browser.SubmitLogin(ctx, form, c.cfg.username, c.cfg.password,
		[]string{c.cfg.failureMarker})
	if err != nil {
		return capability.WrapErr(c.backend, "login", err)
	}

	c.loggedIn = true
	return nil
}

func (c *client) ensureLogin(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// Accounts opens the overview page and returns the parsed accounts.
func (c *client) Accounts(ctx context.Context) ([]capability.Account, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	p, doc, err := c.browser.Open(ctx, c.cfg.accountsPath)
	if err != nil {
		if doc != nil {
			if serr := doc.Err(); serr != nil {
				err = serr
			}
		}
		return nil, capability.WrapErr(c.backend, "accounts", err)
	}

	overview, ok := p.(*accountsPage)
	if !ok {
		return nil, capability.WrapErr(c.backend, "accounts",
			fmt.Errorf("unexpected page type %T", p))
	}
	return overview.accounts, nil
}

// Transactions opens the history page linked from the account row.
func (c *client) Transactions(ctx context.Context, accountID string) ([]capability.Transaction, error) {
	if err := c.ensureLogin(ctx); err != nil {
		return nil, err
	}

	if strings.HasPrefix(accountID, "row-") {
		// Accounts without a transactions link have no history page.
		return nil, capability.WrapErr(c.backend, "transactions", capability.ErrNotSupported)
	}

	target, ok := decodeAccountID(accountID)
	if !ok {
		return nil, capability.WrapErr(c.backend, "transactions", capability.ErrNotFound)
	}

	p, doc, err := c.browser.Open(ctx, target)
	if err != nil {
		if doc != nil {
			if serr := doc.Err(); serr != nil {
				err = serr
			}
		}
		return nil, capability.WrapErr(c.backend, "transactions", err)
	}

	history, ok := p.(*transactionsPage)
	if !ok {
		return nil, capability.WrapErr(c.backend, "transactions",
			fmt.Errorf("unexpected page type %T", p))
	}
	return history.transactions, nil
}

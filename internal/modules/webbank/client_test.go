package webbank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

const accountsHTML = `<html><body>
  <div class="account">
    <span class="label">Compte Courant</span>
    <span class="balance">1 234,56 €</span>
    <a href="/history/42">history</a>
  </div>
  <div class="account">
    <span class="label">Livret A</span>
    <span class="balance">10 000,00 €</span>
  </div>
</body></html>`

const transactionsHTML = `<html><body>
  <table>
    <tr class="tx"><td class="date">15/03/2024</td><td class="label">CARD PAYMENT GROCER</td><td class="amount">-23,10 €</td></tr>
    <tr class="tx"><td class="date">14/03/2024</td><td class="label">SALARY</td><td class="amount">2 500,00 €</td></tr>
  </table>
</body></html>`

// newPortal starts a fake banking portal with a login form, an accounts
// overview and one history page.
func newPortal(t *testing.T) *httptest.Server {
	t.Helper()

	var loggedIn bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			require.NoError(t, r.ParseForm())
			if r.FormValue("user") == "alice" && r.FormValue("pass") == "s3cret" {
				loggedIn = true
				w.Write([]byte("<html>welcome</html>"))
				return
			}
			w.Write([]byte("<html>password incorrect</html>"))
		case "/accounts":
			if !loggedIn {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte(accountsHTML))
		case "/history/42":
			if !loggedIn {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte(transactionsHTML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func portalConfig(baseURL string) module.Config {
	return module.Config{
		"url":             baseURL,
		"login_path":      "/login",
		"username":        "alice",
		"password":        "s3cret",
		"username_field":  "user",
		"password_field":  "pass",
		"failure_marker":  "incorrect",
		"accounts_path":   "/accounts",
		"account_row":     "div.account",
		"account_label":   ".label",
		"account_balance": ".balance",
		"account_link":    "a",
		"tx_row":          "tr.tx",
		"tx_date":         ".date",
		"tx_date_layout":  "02/01/2006",
		"tx_label":        ".label",
		"tx_amount":       ".amount",
		"currency":        "EUR",
	}
}

func TestAccounts(t *testing.T) {
	srv := newPortal(t)

	c, err := newClient("mybank", portalConfig(srv.URL))
	require.NoError(t, err)

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "Compte Courant", accounts[0].Label)
	assert.Equal(t, capability.Amount{Minor: 123456, Currency: "EUR"}, accounts[0].Balance)
	assert.NotEmpty(t, accounts[0].ID)

	// The second account has no history link and gets a positional ID.
	assert.Equal(t, "Livret A", accounts[1].Label)
	assert.Equal(t, "row-1", accounts[1].ID)
}

func TestTransactions(t *testing.T) {
	srv := newPortal(t)

	c, err := newClient("mybank", portalConfig(srv.URL))
	require.NoError(t, err)

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)

	transactions, err := c.Transactions(context.Background(), accounts[0].ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "CARD PAYMENT GROCER", transactions[0].Label)
	assert.Equal(t, capability.Amount{Minor: -2310, Currency: "EUR"}, transactions[0].Amount)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), transactions[0].Date)
	assert.Equal(t, capability.Amount{Minor: 250000, Currency: "EUR"}, transactions[1].Amount)
}

func TestTransactions_HistoryUnderAccountsPath(t *testing.T) {
	// Some portals nest history pages under the accounts path; the accounts
	// route must not swallow them.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts":
			w.Write([]byte(`<html><body>
			  <div class="account">
			    <span class="label">Checking</span>
			    <span class="balance">50,00 €</span>
			    <a href="/accounts/42/history">history</a>
			  </div>
			</body></html>`))
		case "/accounts/42/history":
			w.Write([]byte(transactionsHTML))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := portalConfig(srv.URL)
	cfg["login_path"] = ""
	c, err := newClient("mybank", cfg)
	require.NoError(t, err)

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	transactions, err := c.Transactions(context.Background(), accounts[0].ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "CARD PAYMENT GROCER", transactions[0].Label)
}

func TestTransactions_LinklessAccount(t *testing.T) {
	srv := newPortal(t)

	c, err := newClient("mybank", portalConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Transactions(context.Background(), "row-1")
	assert.ErrorIs(t, err, capability.ErrNotSupported)
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := newPortal(t)

	cfg := portalConfig(srv.URL)
	cfg["password"] = "wrong"
	c, err := newClient("mybank", cfg)
	require.NoError(t, err)

	err = c.Login(context.Background())
	assert.ErrorIs(t, err, capability.ErrIncorrectCredentials)
}

func TestLogin_MissingCredentials(t *testing.T) {
	srv := newPortal(t)

	cfg := portalConfig(srv.URL)
	cfg["username"] = ""
	c, err := newClient("mybank", cfg)
	require.NoError(t, err)

	err = c.Login(context.Background())
	assert.ErrorIs(t, err, capability.ErrIncorrectCredentials)
}

func TestLogin_NoLoginPath(t *testing.T) {
	srv := newPortal(t)

	cfg := portalConfig(srv.URL)
	cfg["login_path"] = ""
	c, err := newClient("open", cfg)
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background()))
	assert.True(t, c.loggedIn)
}

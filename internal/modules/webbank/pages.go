package webbank

import (
	"encoding/base64"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/page"
	"github.com/gleanerd/gleaner/internal/scrape"
)

// accountsPage parses the account overview into Account records.
type accountsPage struct {
	cfg      *conf
	accounts []capability.Account
}

func (p *accountsPage) Load(doc *browser.Document) error {
	html, err := doc.HTML()
	if err != nil {
		return err
	}

	base := ""
	if doc.URL != nil {
		base = doc.URL.String()
	}

	return page.Each(html, p.cfg.accountRow, func(i int, row *goquery.Selection) error {
		acc := capability.Account{Type: capability.AccountUnknown}

		label, err := page.Text(row, p.cfg.accountLabel)
		if err != nil {
			return err
		}
		acc.Label = label

		rawBalance, err := page.Text(row, p.cfg.accountBalance)
		if err != nil {
			return err
		}
		if rawBalance != "" {
			balance, err := page.ParseAmount(rawBalance, p.cfg.currency)
			if err != nil {
				return err
			}
			acc.Balance = balance
		}

		// The transactions link doubles as the account ID; accounts
		// without one get a positional ID and no history.
		if href, err := page.Text(row, p.cfg.accountLink); err == nil && href != "" {
			acc.ID = encodeAccountID(scrape.Absolute(base, href))
		} else {
			acc.ID = fmt.Sprintf("row-%d", i)
		}

		p.accounts = append(p.accounts, acc)
		return nil
	})
}

// transactionsPage parses one account's history table.
type transactionsPage struct {
	cfg          *conf
	transactions []capability.Transaction
}

func (p *transactionsPage) Load(doc *browser.Document) error {
	html, err := doc.HTML()
	if err != nil {
		return err
	}

	return page.Each(html, p.cfg.txRow, func(i int, row *goquery.Selection) error {
		var tx capability.Transaction

		label, err := page.Text(row, p.cfg.txLabel)
		if err != nil {
			return err
		}
		tx.Label = page.CleanText(label)
		tx.RawLabel = label

		rawAmount, err := page.Text(row, p.cfg.txAmount)
		if err != nil {
			return err
		}
		amount, err := page.ParseAmount(rawAmount, p.cfg.currency)
		if err != nil {
			return err
		}
		tx.Amount = amount

		if raw, err := page.Text(row, p.cfg.txDate); err == nil && raw != "" {
			layouts := []string{}
			if p.cfg.txDateLayout != "" {
				layouts = append(layouts, p.cfg.txDateLayout)
			}
			if t, err := page.ParseDate(raw, layouts...); err == nil {
				tx.Date = t
			}
		}

		p.transactions = append(p.transactions, tx)
		return nil
	})
}

func encodeAccountID(link string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(link))
}

func decodeAccountID(id string) (string, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

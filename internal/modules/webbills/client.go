package webbills

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
	"github.com/gleanerd/gleaner/internal/page"
	"github.com/gleanerd/gleaner/internal/scrape"
)

type client struct {
	backend   string
	collector *scrape.Collector

	listURL  string
	subLabel string
	rowSel   string
	labelLoc page.ElementLocation
	dateLoc  page.ElementLocation
	dateFmt  string
	totalLoc page.ElementLocation
	linkLoc  page.ElementLocation
	currency string
}

var _ capability.CapDocument = (*client)(nil)

func newClient(backend string, cfg module.Config) *client {
	return &client{
		backend:   backend,
		collector: scrape.New(),
		listURL:   cfg.Get("url"),
		subLabel:  cfg.Get("label"),
		rowSel:    cfg.Get("row_selector"),
		labelLoc:  page.ElementLocation{Selector: cfg.Get("label_selector")},
		dateLoc:   page.ElementLocation{Selector: cfg.Get("date_selector")},
		dateFmt:   cfg.Get("date_layout"),
		totalLoc:  page.ElementLocation{Selector: cfg.Get("amount_selector")},
		linkLoc:   page.ElementLocation{Selector: cfg.Get("link_selector"), Attr: "href"},
		currency:  cfg.Get("currency"),
	}
}

// Subscriptions returns the single synthetic subscription the portal
// represents; public portals have no account concept to enumerate.
func (c *client) Subscriptions(ctx context.Context) ([]capability.Subscription, error) {
	return []capability.Subscription{{ID: c.subLabel, Label: c.subLabel}}, nil
}

// Documents scrapes the listing page and builds one document per row.
func (c *client) Documents(ctx context.Context, subscriptionID string) ([]capability.Document, error) {
	if subscriptionID != "" && subscriptionID != c.subLabel {
		return nil, capability.WrapErr(c.backend, "documents", capability.ErrNotFound)
	}

	var (
		mu   sync.Mutex
		docs []capability.Document
	)

	err := c.collector.Rows(ctx, c.listURL, c.rowSel, func(e *colly.HTMLElement) {
		doc := capability.Document{SubscriptionID: c.subLabel, Format: "pdf"}

		label, err := page.Text(e.DOM, c.labelLoc)
		if err != nil || label == "" {
			slog.Debug("webbills: row without label, skipping", "backend", c.backend, "err", err)
			return
		}
		doc.Label = label

		if raw, err := page.Text(e.DOM, c.dateLoc); err == nil && raw != "" {
			layouts := []string{}
			if c.dateFmt != "" {
				layouts = append(layouts, c.dateFmt)
			}
			if t, err := page.ParseDate(raw, layouts...); err == nil {
				doc.Date = t
			}
		}

		if raw, err := page.Text(e.DOM, c.totalLoc); err == nil && raw != "" {
			if amount, err := page.ParseAmount(raw, c.currency); err == nil {
				doc.Total = amount
			}
		}

		if href, err := page.Text(e.DOM, c.linkLoc); err == nil && href != "" {
			fileURL := scrape.Absolute(c.listURL, href)
			doc.URL = fileURL
			doc.HasFile = true
			doc.ID = base64.RawURLEncoding.EncodeToString([]byte(fileURL))
			if i := strings.LastIndexByte(fileURL, '.'); i > 0 && len(fileURL)-i <= 5 {
				doc.Format = strings.ToLower(fileURL[i+1:])
			}
		} else {
			doc.ID = base64.RawURLEncoding.EncodeToString([]byte(c.listURL + "#" + label))
		}

		mu.Lock()
		docs = append(docs, doc)
		mu.Unlock()
	})
	if err != nil {
		return nil, capability.WrapErr(c.backend, "documents", err)
	}
	return docs, nil
}

// DownloadDocument fetches the file behind a document ID (the base64url
// encoded file URL produced by Documents).
func (c *client) DownloadDocument(ctx context.Context, documentID string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(documentID)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "download", capability.ErrNotFound)
	}
	fileURL := string(raw)
	if strings.Contains(fileURL, "#") {
		// Rows without a link get synthetic IDs; there is nothing to fetch.
		return nil, capability.WrapErr(c.backend, "download", capability.ErrNotSupported)
	}

	body, err := c.collector.Fetch(ctx, fileURL)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "download", err)
	}
	return body, nil
}

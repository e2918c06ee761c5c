// Package scrape wraps a Colly collector with rate limiting and context
// cancellation for the selector-driven modules that walk public HTML pages.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// Collector issues polite listing scrapes. Each call gets a fresh Colly
// collector to avoid state leakage between pages.
type Collector struct {
	userAgent string
}

// New creates a Collector with the project user agent.
func New() *Collector {
	return &Collector{userAgent: "gleaner/1.0"}
}

// newCollector creates a fresh Colly collector with standard settings and
// rate limiting: 1 request/sec per domain, at most 2 in parallel.
func (c *Collector) newCollector() *colly.Collector {
	cc := colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.AllowURLRevisit(),
		colly.MaxDepth(1),
	)

	_ = cc.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       1 * time.Second,
		RandomDelay: 500 * time.Millisecond,
	})

	cc.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	return cc
}

// Rows visits pageURL and calls fn for every element matching rowSelector.
// fn runs on Colly's callback goroutine; the caller owns any locking.
func (c *Collector) Rows(ctx context.Context, pageURL, rowSelector string, fn func(e *colly.HTMLElement)) error {
	cc := c.newCollector()

	var (
		mu     sync.Mutex
		scrErr error
	)

	cc.OnHTML(rowSelector, fn)

	cc.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		scrErr = fmt.Errorf("scrape: fetch %s: %w", pageURL, err)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cc.Visit(pageURL); err != nil {
			mu.Lock()
			if scrErr == nil {
				scrErr = fmt.Errorf("scrape: visit %s: %w", pageURL, err)
			}
			mu.Unlock()
		}
		cc.Wait()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	if scrErr != nil {
		return scrErr
	}

	slog.Debug("scrape: rows done", "url", pageURL, "selector", rowSelector)
	return nil
}

// Fetch downloads fileURL and returns the raw body.
func (c *Collector) Fetch(ctx context.Context, fileURL string) ([]byte, error) {
	cc := c.newCollector()

	var (
		mu     sync.Mutex
		body   []byte
		scrErr error
	)

	cc.OnResponse(func(r *colly.Response) {
		mu.Lock()
		body = append([]byte(nil), r.Body...)
		mu.Unlock()
	})

	cc.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		scrErr = fmt.Errorf("scrape: fetch %s: %w", fileURL, err)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cc.Visit(fileURL); err != nil {
			mu.Lock()
			if scrErr == nil {
				scrErr = fmt.Errorf("scrape: visit %s: %w", fileURL, err)
			}
			mu.Unlock()
		}
		cc.Wait()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	if scrErr != nil {
		return nil, scrErr
	}
	return body, nil
}

// Absolute resolves href against base, tolerating already-absolute links.
func Absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

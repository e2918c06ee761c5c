// Package browser implements the stateful HTTP session used by site
// modules: a cookie-carrying client with a base URL, retry policy and
// URL-pattern routing that dispatches fetched documents to page objects.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) gleaner/1.0"

// Options configures a Browser.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retries   int
	ProxyURL  string
}

// Browser is one module's HTTP session against one website. It keeps
// cookies across requests, resolves relative URLs against the base URL and
// routes responses to registered pages.
type Browser struct {
	http  *resty.Client
	base  *url.URL
	rules []rule
}

// New creates a Browser. The base URL must be absolute.
func New(opts Options) (*Browser, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("browser: invalid base URL %q", opts.BaseURL)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(base.String()).
		SetHeader("User-Agent", ua).
		SetTimeout(timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500 * time.Millisecond)

	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}

	return &Browser{http: client, base: base}, nil
}

// Client exposes the underlying resty client for module-specific tuning
// (extra default headers, redirect policies).
func (b *Browser) Client() *resty.Client {
	return b.http
}

// Absolute resolves ref against the browser's base URL.
func (b *Browser) Absolute(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("browser: parse %q: %w", ref, err)
	}
	return b.base.ResolveReference(u).String(), nil
}

// Get fetches rawURL (absolute or relative to the base) with optional query
// parameters.
func (b *Browser) Get(ctx context.Context, rawURL string, query url.Values) (*Document, error) {
	req := b.http.R().SetContext(ctx)
	for k, vs := range query {
		for _, v := range vs {
			req.SetQueryParam(k, v)
		}
	}
	resp, err := req.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: get %s: %w", rawURL, err)
	}
	return newDocument(resp), nil
}

// PostForm submits an application/x-www-form-urlencoded POST.
func (b *Browser) PostForm(ctx context.Context, rawURL string, form url.Values) (*Document, error) {
	resp, err := b.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: post %s: %w", rawURL, err)
	}
	return newDocument(resp), nil
}

// PostJSON submits body as a JSON POST with optional extra headers.
func (b *Browser) PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string) (*Document, error) {
	req := b.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	resp, err := req.Post(rawURL)
	if err != nil {
		return nil, fmt.Errorf("browser: post %s: %w", rawURL, err)
	}
	return newDocument(resp), nil
}

func newDocument(resp *resty.Response) *Document {
	doc := &Document{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}
	// The final URL after redirects, when the transport exposes it.
	if raw := resp.RawResponse; raw != nil && raw.Request != nil {
		doc.URL = raw.Request.URL
	}
	if doc.URL == nil {
		if u, err := url.Parse(resp.Request.URL); err == nil {
			doc.URL = u
		}
	}

	slog.Debug("browser: fetched",
		"url", doc.URL,
		"status", doc.StatusCode,
		"bytes", len(doc.Body),
	)
	return doc
}

// statusText avoids importing net/http in every module just for messages.
func statusText(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}

package browser

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/gleanerd/gleaner/internal/capability"
)

// Document is one fetched response: the final URL after redirects, status,
// headers and body. Pages parse it with the HTML or JSON helpers.
type Document struct {
	URL        *url.URL
	StatusCode int
	Header     http.Header
	Body       []byte
}

// HTML parses the body as an HTML document.
func (d *Document) HTML() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(d.Body))
	if err != nil {
		return nil, fmt.Errorf("browser: parse html: %w", err)
	}
	return doc, nil
}

// JSON returns a gjson view over the body. Callers use path expressions
// ("result.items.#.name") the way the original element classes used
// JSON dicts.
func (d *Document) JSON() gjson.Result {
	return gjson.ParseBytes(d.Body)
}

// JSONPath extracts a single path from the body.
func (d *Document) JSONPath(path string) gjson.Result {
	return gjson.GetBytes(d.Body, path)
}

// Err translates the HTTP status into a capability error. 2xx returns nil.
// Modules call this before parsing so callers get uniform sentinel errors
// instead of per-site status codes.
func (d *Document) Err() error {
	switch {
	case d.StatusCode >= 200 && d.StatusCode < 300:
		return nil
	case d.StatusCode == http.StatusNotFound || d.StatusCode == http.StatusGone:
		return capability.ErrNotFound
	case d.StatusCode == http.StatusUnauthorized || d.StatusCode == http.StatusForbidden:
		return capability.ErrNotLoggedIn
	case d.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", capability.ErrSiteUnavailable, statusText(d.StatusCode))
	case d.StatusCode >= 500:
		return fmt.Errorf("%w: %s", capability.ErrSiteUnavailable, statusText(d.StatusCode))
	default:
		return fmt.Errorf("browser: unexpected status %s", statusText(d.StatusCode))
	}
}

package browser

import (
	"context"
	"fmt"
	"regexp"
)

// Page is a parsed view over one URL pattern. Load runs the page's
// extraction against the fetched document.
type Page interface {
	Load(doc *Document) error
}

type rule struct {
	re    *regexp.Regexp
	build func() Page
}

// Route registers a URL pattern and the factory for its page. The pattern
// is matched against the final URL (after redirects) as a regular
// expression. Patterns are module literals, so a bad one panics at init.
func (b *Browser) Route(pattern string, build func() Page) {
	b.rules = append(b.rules, rule{re: regexp.MustCompile(pattern), build: build})
}

// Dispatch finds the first rule matching the document URL, builds its page
// and loads it. A document matching no rule is an error: it means the site
// sent us somewhere the module does not know.
func (b *Browser) Dispatch(doc *Document) (Page, error) {
	if doc.URL == nil {
		return nil, fmt.Errorf("browser: document has no URL")
	}
	target := doc.URL.String()
	for _, r := range b.rules {
		if !r.re.MatchString(target) {
			continue
		}
		page := r.build()
		if err := page.Load(doc); err != nil {
			return nil, fmt.Errorf("browser: load page for %s: %w", target, err)
		}
		return page, nil
	}
	return nil, fmt.Errorf("browser: no page matches %s", target)
}

// Open fetches rawURL and dispatches the response to the matching page.
func (b *Browser) Open(ctx context.Context, rawURL string) (Page, *Document, error) {
	doc, err := b.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, nil, err
	}
	page, err := b.Dispatch(doc)
	if err != nil {
		return nil, doc, err
	}
	return page, doc, nil
}

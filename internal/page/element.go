// Package page provides the declarative extraction helpers site modules use
// to map CSS selectors and JSON paths onto typed fields, mirroring the
// element/field tables the per-site pages are written as.
package page

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ElementLocation points at one string inside an HTML document: a CSS
// selector, an optional node index, an optional attribute, and an optional
// regex refinement of the extracted text.
type ElementLocation struct {
	Selector   string `yaml:"selector" json:"selector"`
	Index      int    `yaml:"index" json:"index,omitempty"`
	Attr       string `yaml:"attr" json:"attr,omitempty"`
	Regex      string `yaml:"regex" json:"regex,omitempty"`
	RegexGroup int    `yaml:"regex_group" json:"regex_group,omitempty"`
	MaxLength  int    `yaml:"max_length" json:"max_length,omitempty"`
}

// Text extracts the string the location points at inside sel. Missing
// elements yield an empty string, not an error: optional fields are the
// norm in scraped pages. A regex that fails to match is an error because it
// signals a page layout change.
func Text(sel *goquery.Selection, loc ElementLocation) (string, error) {
	if loc.Selector == "" {
		return "", nil
	}

	found := sel.Find(loc.Selector)
	if loc.Index > 0 {
		found = found.Eq(loc.Index)
	} else {
		found = found.First()
	}
	if found.Length() == 0 {
		return "", nil
	}

	var raw string
	if loc.Attr != "" {
		raw, _ = found.Attr(loc.Attr)
	} else {
		raw = found.Text()
	}
	raw = strings.TrimSpace(raw)

	if loc.Regex != "" {
		re, err := regexp.Compile(loc.Regex)
		if err != nil {
			return "", fmt.Errorf("page: bad regex %q: %w", loc.Regex, err)
		}
		groups := re.FindStringSubmatch(raw)
		if groups == nil {
			return "", fmt.Errorf("page: regex %q matched nothing in %q", loc.Regex, truncate(raw, 80))
		}
		idx := loc.RegexGroup
		if idx >= len(groups) {
			return "", fmt.Errorf("page: regex %q has no group %d", loc.Regex, idx)
		}
		raw = groups[idx]
	}

	if loc.MaxLength > 0 && len(raw) > loc.MaxLength {
		raw = raw[:loc.MaxLength]
	}
	return raw, nil
}

// Each runs fn over every node matched by selector, in document order.
// It is the list-element primitive: modules point it at table rows and
// build one record per row.
func Each(doc *goquery.Document, selector string, fn func(i int, row *goquery.Selection) error) error {
	var firstErr error
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if err := fn(i, s); err != nil {
			firstErr = fmt.Errorf("page: row %d: %w", i, err)
			return false
		}
		return true
	})
	return firstErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

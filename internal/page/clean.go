package page

import (
	"regexp"
	"strings"
)

// reHTMLTag matches HTML tags.
var reHTMLTag = regexp.MustCompile(`<[^>]*>`)

// reWhitespace matches sequences of whitespace (spaces, tabs, newlines).
var reWhitespace = regexp.MustCompile(`\s+`)

// reBlankLines matches runs of three or more newlines.
var reBlankLines = regexp.MustCompile(`\n{3,}`)

// reBlockTag matches closing block-level tags and line breaks, any case.
var reBlockTag = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr|blockquote)>|<br\s*/?>`)

// CleanText strips HTML tags from the input and normalizes whitespace,
// preserving paragraph boundaries as single newlines. Job descriptions and
// recipe instructions arrive as HTML fragments; records carry plain text.
func CleanText(html string) string {
	if html == "" {
		return ""
	}

	// Replace block-level closers with newlines to keep paragraph shape.
	text := reBlockTag.ReplaceAllString(html, "\n")
	text = reHTMLTag.ReplaceAllString(text, "")

	// Decode the entities that actually show up in scraped fragments.
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&apos;", "'")
	text = strings.ReplaceAll(text, "&nbsp;", " ")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(reWhitespace.ReplaceAllString(line, " "))
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	result := strings.Join(cleaned, "\n")
	result = reBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

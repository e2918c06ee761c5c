package page

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gleanerd/gleaner/internal/capability"
)

// defaultDateLayouts covers the formats scraped sites actually emit, tried
// in order.
var defaultDateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"2 January 2006",
	"January 2, 2006",
}

// ParseDate tries layouts (or the default list when empty) until one
// matches. Scraped dates carry no zone more often than not; those parse as
// UTC.
func ParseDate(s string, layouts ...string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("page: empty date")
	}
	if len(layouts) == 0 {
		layouts = defaultDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("page: unparseable date %q", s)
}

// currencyMarks maps the symbols and codes seen in scraped amount strings
// to ISO currency codes.
var currencyMarks = map[string]string{
	"€":   "EUR",
	"$":   "USD",
	"£":   "GBP",
	"EUR": "EUR",
	"USD": "USD",
	"GBP": "GBP",
	"CHF": "CHF",
	"CAD": "CAD",
}

// ParseAmount converts a scraped money string ("1 234,56 €", "-$12.30",
// "1,234.56 USD") into minor units plus a currency code. The currency
// defaults to fallback when the string carries no mark.
func ParseAmount(s, fallback string) (capability.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return capability.Amount{}, fmt.Errorf("page: empty amount")
	}

	currency := fallback
	for mark, code := range currencyMarks {
		if strings.Contains(s, mark) {
			currency = code
			s = strings.ReplaceAll(s, mark, "")
			break
		}
	}

	// Strip grouping spaces (including non-breaking ones).
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	negative := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "−")
	s = strings.TrimLeft(s, "-−+")

	// Decide which of '.' and ',' is the decimal separator: the last one,
	// and only if it is followed by one or two digits. Everything else is
	// a grouping separator.
	lastDot := strings.LastIndexAny(s, ".,")
	intPart, fracPart := s, ""
	if lastDot >= 0 {
		tail := s[lastDot+1:]
		if len(tail) >= 1 && len(tail) <= 2 && isDigits(tail) {
			intPart, fracPart = s[:lastDot], tail
		}
	}
	intPart = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, intPart)

	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) {
		return capability.Amount{}, fmt.Errorf("page: unparseable amount %q", s)
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return capability.Amount{}, fmt.Errorf("page: amount overflow %q", s)
	}
	minor := major * 100
	switch len(fracPart) {
	case 1:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		minor += d * 10
	case 2:
		d, _ := strconv.ParseInt(fracPart, 10, 64)
		minor += d
	}
	if negative {
		minor = -minor
	}

	return capability.Amount{Minor: minor, Currency: currency}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

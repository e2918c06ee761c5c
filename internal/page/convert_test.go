package page

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/capability"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in       string
		fallback string
		want     capability.Amount
	}{
		{"12,34 €", "EUR", capability.Amount{Minor: 1234, Currency: "EUR"}},
		{"1 234,56 €", "EUR", capability.Amount{Minor: 123456, Currency: "EUR"}},
		{"-$12.30", "EUR", capability.Amount{Minor: -1230, Currency: "USD"}},
		{"1,234.56 USD", "EUR", capability.Amount{Minor: 123456, Currency: "USD"}},
		{"42", "GBP", capability.Amount{Minor: 4200, Currency: "GBP"}},
		{"0,5", "EUR", capability.Amount{Minor: 50, Currency: "EUR"}},
		{"−99,99", "EUR", capability.Amount{Minor: -9999, Currency: "EUR"}},
		{"1.234.567,89", "EUR", capability.Amount{Minor: 123456789, Currency: "EUR"}},
		{"£3.50", "EUR", capability.Amount{Minor: 350, Currency: "GBP"}},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in, c.fallback)
		require.NoError(t, err, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "n/a", "12x34"} {
		_, err := ParseAmount(in, "EUR")
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDate_DefaultLayouts(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"15 March 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseDate(c.in)
		require.NoError(t, err, "input %q", c.in)
		assert.True(t, c.want.Equal(got), "input %q: got %v", c.in, got)
	}
}

func TestParseDate_ExplicitLayout(t *testing.T) {
	got, err := ParseDate("03|15|2024", "01|02|2006")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("2024-03-15", "01|02|2006")
	assert.Error(t, err)
}

func TestParseDate_Empty(t *testing.T) {
	_, err := ParseDate("  ")
	assert.Error(t, err)
}

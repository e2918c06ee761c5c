package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "paragraphs become newlines",
			in:   "<p>First</p><p>Second</p>",
			want: "First\nSecond",
		},
		{
			name: "case preserved",
			in:   "<P>Mixed CASE Stays</P>",
			want: "Mixed CASE Stays",
		},
		{
			name: "entities decoded",
			in:   "Fish &amp; Chips &lt;hot&gt;&nbsp;&quot;daily&quot;",
			want: `Fish & Chips <hot> "daily"`,
		},
		{
			name: "inline tags stripped",
			in:   "Use <strong>two</strong> eggs",
			want: "Use two eggs",
		},
		{
			name: "br variants",
			in:   "line one<br>line two<BR/>line three<br />line four",
			want: "line one\nline two\nline three\nline four",
		},
		{
			name: "whitespace collapsed",
			in:   "<div>  spaced \t  out  </div>",
			want: "spaced out",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CleanText(c.in))
		})
	}
}

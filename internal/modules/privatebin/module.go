// Package privatebin implements a backend for PrivateBin hosts: pastes are
// encrypted client side, so the server only ever sees ciphertext and the
// decryption key travels in the URL fragment.
package privatebin

import (
	"time"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "privatebin",
		Description:  "PrivateBin encrypted pastebin",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.PasteName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Base URL of the PrivateBin host", Required: true, Default: "https://privatebin.net"},
			{Key: "password", Label: "Extra paste password", Masked: true},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg.Get("url"), cfg.Get("password"))
		},
	})
}

// expirations maps the lifetimes PrivateBin accepts, longest first so
// CanPost can pick the smallest one covering a requested max age.
var expirations = []struct {
	label string
	age   time.Duration
}{
	{"5min", 5 * time.Minute},
	{"10min", 10 * time.Minute},
	{"1hour", time.Hour},
	{"1day", 24 * time.Hour},
	{"1week", 7 * 24 * time.Hour},
	{"1month", 30 * 24 * time.Hour},
	{"1year", 365 * 24 * time.Hour},
}

const expireNever = "never"

// expireLabel returns the shortest expiration covering maxAge, or "never"
// for zero.
func expireLabel(maxAge time.Duration) string {
	if maxAge == 0 {
		return expireNever
	}
	for _, e := range expirations {
		if e.age >= maxAge {
			return e.label
		}
	}
	return expireNever
}

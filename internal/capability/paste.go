package capability

import (
	"context"
	"time"
)

// PasteRecord is a text paste hosted on a pastebin-like service. For
// encrypted services the URL carries the decryption key in its fragment, so
// the key never reaches the server.
type PasteRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Contents string `json:"contents"`
	Public   bool   `json:"public"`
	URL      string `json:"url,omitempty"`
	// DeleteToken allows deleting the paste later, when the service
	// hands one back at creation time.
	DeleteToken string `json:"delete_token,omitempty"`
}

// CapPaste is implemented by backends that host text pastes.
type CapPaste interface {
	// Paste fetches a paste by ID. The ID may include a "#key" fragment
	// for client-side encrypted services.
	Paste(ctx context.Context, id string) (*PasteRecord, error)
	// PostPaste uploads p and fills in its ID and URL. maxAge caps the
	// paste lifetime; zero means forever.
	PostPaste(ctx context.Context, p *PasteRecord, maxAge time.Duration) error
	// CanPost reports whether a paste with the given contents, visibility
	// and lifetime is accepted by this backend.
	CanPost(contents string, public bool, maxAge time.Duration) bool
}

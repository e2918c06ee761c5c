package capability

import (
	"context"
	"time"
)

// Subscription groups documents under a provider-side account or contract.
type Subscription struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Document is a downloadable bill, statement or report.
type Document struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Date           time.Time `json:"date"`
	Label          string    `json:"label"`
	Total          Amount    `json:"total,omitempty"`
	Format         string    `json:"format,omitempty"`
	URL            string    `json:"url,omitempty"`
	HasFile        bool      `json:"has_file"`
}

// CapDocument is implemented by backends that expose downloadable documents
// (bills, statements, reports).
type CapDocument interface {
	Subscriptions(ctx context.Context) ([]Subscription, error)
	Documents(ctx context.Context, subscriptionID string) ([]Document, error)
	// DownloadDocument returns the raw file bytes for a document with
	// HasFile set. Backends without files return ErrNotSupported.
	DownloadDocument(ctx context.Context, documentID string) ([]byte, error)
}

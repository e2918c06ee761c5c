package capability

import (
	"context"
	"time"
)

// JobAdvert is a job posting record.
type JobAdvert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Contract    string    `json:"contract,omitempty"`
	Category    string    `json:"category,omitempty"`
	Publication time.Time `json:"publication,omitempty"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// JobFilters narrows an advanced job search. Zero values mean "any".
type JobFilters struct {
	Pattern  string `json:"pattern,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// CapJob is implemented by backends that expose job postings.
type CapJob interface {
	SearchJobs(ctx context.Context, pattern string) ([]JobAdvert, error)
	AdvancedSearchJobs(ctx context.Context, filters JobFilters) ([]JobAdvert, error)
}

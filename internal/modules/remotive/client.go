package remotive

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/page"
)

type client struct {
	backend      string
	browser      *browser.Browser
	defaultLimit int
}

var _ capability.CapJob = (*client)(nil)

func newClient(backend, baseURL, limit string) (*client, error) {
	b, err := browser.New(browser.Options{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(limit)
	if err != nil || n <= 0 {
		n = 50
	}
	return &client{backend: backend, browser: b, defaultLimit: n}, nil
}

// SearchJobs is the simple-pattern entry point.
func (c *client) SearchJobs(ctx context.Context, pattern string) ([]capability.JobAdvert, error) {
	return c.AdvancedSearchJobs(ctx, capability.JobFilters{Pattern: pattern})
}

// AdvancedSearchJobs queries the remote-jobs endpoint with the given
// filters.
func (c *client) AdvancedSearchJobs(ctx context.Context, filters capability.JobFilters) ([]capability.JobAdvert, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = c.defaultLimit
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if filters.Pattern != "" {
		query.Set("search", filters.Pattern)
	}
	if filters.Category != "" {
		query.Set("category", filters.Category)
	}

	doc, err := c.browser.Get(ctx, "/api/remote-jobs", query)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "search jobs", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "search jobs", err)
	}

	var out []capability.JobAdvert
	doc.JSONPath("jobs").ForEach(func(_, j gjson.Result) bool {
		advert := capability.JobAdvert{
			ID:          j.Get("id").String(),
			Title:       j.Get("title").String(),
			Company:     j.Get("company_name").String(),
			Location:    j.Get("candidate_required_location").String(),
			Contract:    j.Get("job_type").String(),
			Category:    j.Get("category").String(),
			Description: page.CleanText(j.Get("description").String()),
			URL:         j.Get("url").String(),
		}
		// Publication dates come as "2006-01-02T15:04:05".
		if t, err := time.Parse("2006-01-02T15:04:05", j.Get("publication_date").String()); err == nil {
			advert.Publication = t
		}
		out = append(out, advert)
		return true
	})
	return out, nil
}

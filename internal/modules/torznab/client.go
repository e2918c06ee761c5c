package torznab

import (
	"context"
	"encoding/base64"
	"net/url"
	"time"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
)

type client struct {
	backend string
	browser *browser.Browser
	apiKey  string
}

var _ capability.CapTorrent = (*client)(nil)

func newClient(backend, baseURL, apiKey string) (*client, error) {
	b, err := browser.New(browser.Options{
		BaseURL: baseURL,
		Timeout: 45 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	return &client{backend: backend, browser: b, apiKey: apiKey}, nil
}

// SearchTorrents runs a t=search query and maps the feed items.
func (c *client) SearchTorrents(ctx context.Context, pattern string) ([]capability.TorrentResult, error) {
	query := url.Values{
		"t": {"search"},
		"q": {pattern},
	}
	if c.apiKey != "" {
		query.Set("apikey", c.apiKey)
	}

	doc, err := c.browser.Get(ctx, "/api", query)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "search torrents", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "search torrents", err)
	}

	items, err := parseFeed(doc.Body)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "search torrents", err)
	}

	out := make([]capability.TorrentResult, 0, len(items))
	for _, item := range items {
		result := capability.TorrentResult{
			// The download link doubles as the ID: GUIDs are opaque and
			// not always resolvable, the link always is.
			ID:       encodeID(item.DownloadURL()),
			Name:     item.Title,
			Size:     item.SizeBytes(),
			Seeders:  item.AttrInt("seeders"),
			InfoHash: item.Attr("infohash"),
			URL:      item.DownloadURL(),
			Magnet:   item.Attr("magneturl"),
		}
		// Torznab reports "peers" as seeders+leechers.
		if peers := item.AttrInt("peers"); peers >= result.Seeders {
			result.Leechers = peers - result.Seeders
		}
		if t, err := time.Parse(time.RFC1123Z, item.PubDate); err == nil {
			result.Date = t
		} else if t, err := time.Parse(time.RFC1123, item.PubDate); err == nil {
			result.Date = t
		}
		out = append(out, result)
	}
	return out, nil
}

// TorrentFile downloads the .torrent file behind a search result ID.
func (c *client) TorrentFile(ctx context.Context, id string) ([]byte, error) {
	target, err := decodeID(id)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "torrent file", err)
	}

	doc, err := c.browser.Get(ctx, target, nil)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "torrent file", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "torrent file", err)
	}
	return doc.Body, nil
}

// IDs are the download URL base64url-encoded so they survive being used as
// a path segment in our own API.
func encodeID(downloadURL string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(downloadURL))
}

func decodeID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", capability.ErrNotFound
	}
	return string(raw), nil
}

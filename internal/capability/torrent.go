package capability

import (
	"context"
	"time"
)

// TorrentResult is a search hit from a torrent index.
type TorrentResult struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Seeders  int       `json:"seeders"`
	Leechers int       `json:"leechers"`
	InfoHash string    `json:"info_hash,omitempty"`
	Date     time.Time `json:"date,omitempty"`
	URL      string    `json:"url,omitempty"`
	Magnet   string    `json:"magnet,omitempty"`
}

// CapTorrent is implemented by backends that index torrents.
type CapTorrent interface {
	SearchTorrents(ctx context.Context, pattern string) ([]TorrentResult, error)
	// TorrentFile downloads the .torrent file for a result.
	TorrentFile(ctx context.Context, id string) ([]byte, error)
}

package torznab

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:torznab="http://torznab.com/schemas/2015/feed">
  <channel>
    <title>Test Indexer</title>
    <item>
      <title>Ubuntu 24.04 LTS Desktop amd64</title>
      <guid>https://indexer.example.org/details/101</guid>
      <link>https://indexer.example.org/details/101</link>
      <pubDate>Fri, 15 Mar 2024 10:00:00 +0000</pubDate>
      <size>6114656256</size>
      <enclosure url="https://indexer.example.org/dl/101.torrent" length="6114656256" type="application/x-bittorrent"/>
      <torznab:attr name="seeders" value="120"/>
      <torznab:attr name="peers" value="150"/>
      <torznab:attr name="infohash" value="2aa4f5a7e209e54b32803d43670971c4c8caaa05"/>
    </item>
    <item>
      <title>No enclosure release</title>
      <guid>https://indexer.example.org/details/102</guid>
      <link>https://indexer.example.org/dl/102.torrent</link>
      <pubDate>Thu, 14 Mar 2024 09:00:00 GMT</pubDate>
      <torznab:attr name="size" value="1024"/>
      <torznab:attr name="seeders" value="3"/>
      <torznab:attr name="peers" value="3"/>
    </item>
  </channel>
</rss>`

func TestParseFeed(t *testing.T) {
	items, err := parseFeed([]byte(feedFixture))
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Ubuntu 24.04 LTS Desktop amd64", first.Title)
	assert.Equal(t, int64(6114656256), first.SizeBytes())
	assert.Equal(t, 120, first.AttrInt("seeders"))
	assert.Equal(t, "2aa4f5a7e209e54b32803d43670971c4c8caaa05", first.Attr("infohash"))
	assert.Equal(t, "https://indexer.example.org/dl/101.torrent", first.DownloadURL())

	// Without an enclosure the link is the download URL, and the size attr
	// is the fallback.
	second := items[1]
	assert.Equal(t, "https://indexer.example.org/dl/102.torrent", second.DownloadURL())
	assert.Equal(t, int64(1024), second.SizeBytes())
	assert.Empty(t, second.Attr("infohash"))
}

func TestParseFeed_Malformed(t *testing.T) {
	_, err := parseFeed([]byte("this is not xml <"))
	assert.Error(t, err)
}

func TestSearchTorrents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api", r.URL.Path)
		assert.Equal(t, "search", r.URL.Query().Get("t"))
		assert.Equal(t, "ubuntu", r.URL.Query().Get("q"))
		assert.Equal(t, "k3y", r.URL.Query().Get("apikey"))
		w.Write([]byte(feedFixture))
	}))
	defer srv.Close()

	c, err := newClient("indexer", srv.URL, "k3y")
	require.NoError(t, err)

	results, err := c.SearchTorrents(context.Background(), "ubuntu")
	require.NoError(t, err)
	require.Len(t, results, 2)

	got := results[0]
	assert.Equal(t, "Ubuntu 24.04 LTS Desktop amd64", got.Name)
	assert.Equal(t, int64(6114656256), got.Size)
	assert.Equal(t, 120, got.Seeders)
	assert.Equal(t, 30, got.Leechers)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), got.Date.UTC())
	assert.NotEmpty(t, got.ID)

	// RFC1123 (GMT) dates parse through the fallback layout.
	assert.False(t, results[1].Date.IsZero())
	assert.Equal(t, 0, results[1].Leechers)
}

func TestTorrentFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dl/101.torrent" {
			w.Write([]byte("d8:announce3:urle"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := newClient("indexer", srv.URL, "")
	require.NoError(t, err)

	id := encodeID(srv.URL + "/dl/101.torrent")
	body, err := c.TorrentFile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []byte("d8:announce3:urle"), body)
}

func TestTorrentFile_BadID(t *testing.T) {
	c, err := newClient("indexer", "https://example.org", "")
	require.NoError(t, err)

	_, err = c.TorrentFile(context.Background(), "not-base64!!!")
	assert.Error(t, err)
}

func TestEncodeDecodeID_RoundTrip(t *testing.T) {
	url := "https://indexer.example.org/dl/101.torrent?apikey=abc"
	decoded, err := decodeID(encodeID(url))
	require.NoError(t, err)
	assert.Equal(t, url, decoded)
}

package torznab

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Torznab answers with an RSS 2.0 channel whose items carry extra
// namespaced <torznab:attr name="..." value="..."/> elements.
type feedRoot struct {
	XMLName xml.Name    `xml:"rss"`
	Channel feedChannel `xml:"channel"`
}

type feedChannel struct {
	Items []feedItem `xml:"item"`
}

type feedItem struct {
	Title     string        `xml:"title"`
	GUID      string        `xml:"guid"`
	Link      string        `xml:"link"`
	PubDate   string        `xml:"pubDate"`
	Size      string        `xml:"size"`
	Enclosure feedEnclosure `xml:"enclosure"`
	Attrs     []feedAttr    `xml:"attr"`
}

type feedEnclosure struct {
	URL    string `xml:"url,attr"`
	Length string `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type feedAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Attr returns a torznab attribute value by name, or "".
func (i feedItem) Attr(name string) string {
	for _, a := range i.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// AttrInt returns a torznab attribute as an int, or 0.
func (i feedItem) AttrInt(name string) int {
	n, _ := strconv.Atoi(i.Attr(name))
	return n
}

// SizeBytes prefers the <size> element, then the size attr, then the
// enclosure length. Indexers disagree on where they report it.
func (i feedItem) SizeBytes() int64 {
	for _, raw := range []string{i.Size, i.Attr("size"), i.Enclosure.Length} {
		if raw == "" {
			continue
		}
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// DownloadURL prefers the enclosure URL over the link: some indexers point
// <link> at a details page instead of the .torrent file.
func (i feedItem) DownloadURL() string {
	if i.Enclosure.URL != "" {
		return i.Enclosure.URL
	}
	return i.Link
}

// parseFeed decodes a Torznab RSS response into its items.
func parseFeed(body []byte) ([]feedItem, error) {
	var root feedRoot
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("torznab: parse feed: %w", err)
	}
	return root.Channel.Items, nil
}

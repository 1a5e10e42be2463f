// Package wpxml reads the legacy WordPress-style export: an RSS
// document whose channel carries every post as an <item> with
// wp:-namespaced identity nodes and flat wp:postmeta key/value pairs.
//
// Items are ephemeral: the reader hands them to the mappers and nothing
// downstream holds on to them.
package wpxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/httpx"
)

// FormatError reports an export document whose overall structure is
// unusable (not an RSS document, or no channel). It is fatal: there is
// nothing item-level to salvage.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wpxml: %s: %v", e.Reason, e.Err)
	}
	return "wpxml: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

type feed struct {
	XMLName xml.Name `xml:"rss"`
	Channel *channel `xml:"channel"`
}

type channel struct {
	Title string `xml:"title"`
	Items []Item `xml:"item"`
}

// Item is one exported post, any type. Content and Excerpt arrive
// CDATA-wrapped in the export; the decoder unwraps them.
type Item struct {
	ID       string     `xml:"http://wordpress.org/export/1.2/ post_id"`
	Type     string     `xml:"http://wordpress.org/export/1.2/ post_type"`
	Slug     string     `xml:"http://wordpress.org/export/1.2/ post_name"`
	Status   string     `xml:"http://wordpress.org/export/1.2/ status"`
	Date     string     `xml:"http://wordpress.org/export/1.2/ post_date"`
	Modified string     `xml:"http://wordpress.org/export/1.2/ post_modified"`
	Title    string     `xml:"title"`
	Content  string     `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Excerpt  string     `xml:"http://wordpress.org/export/1.2/excerpt/ encoded"`
	Meta     []MetaKV   `xml:"http://wordpress.org/export/1.2/ postmeta"`
	Category []Category `xml:"category"`
}

// MetaKV is one flat metadata pair.
type MetaKV struct {
	Key   string `xml:"http://wordpress.org/export/1.2/ meta_key"`
	Value string `xml:"http://wordpress.org/export/1.2/ meta_value"`
}

// Category is a taxonomy reference on an item. Nicename is the friendly
// identifier and is preferred over the display text.
type Category struct {
	Domain   string `xml:"domain,attr"`
	Nicename string `xml:"nicename,attr"`
	Text     string `xml:",chardata"`
}

// Parse decodes an export document. A channel with a single item and a
// channel with many decode identically: the slice field absorbs the
// single-vs-list ambiguity once, here, and nothing downstream re-sniffs
// shapes.
func Parse(r io.Reader) ([]Item, error) {
	var f feed
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, &FormatError{Reason: "malformed export document", Err: err}
	}
	if f.Channel == nil {
		return nil, &FormatError{Reason: "export has no channel element"}
	}
	return f.Channel.Items, nil
}

// Load reads an export from a local path or an http(s) URL. A ".br"
// suffix marks a brotli-compressed export; it is decompressed
// transparently.
func Load(ctx context.Context, src string) ([]Item, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		body, err := httpx.Get(ctx, nil, src, httpx.DefaultRetryConfig())
		if err != nil {
			return nil, fmt.Errorf("wpxml: fetch export: %w", err)
		}
		var r io.Reader = bytes.NewReader(body)
		if strings.HasSuffix(src, ".br") {
			r = brotli.NewReader(r)
		}
		return Parse(r)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("wpxml: open export: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(src, ".br") {
		r = brotli.NewReader(r)
	}
	return Parse(r)
}

// FilterType returns the items of one post type, in document order.
func FilterType(items []Item, postType string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Type == postType {
			out = append(out, it)
		}
	}
	return out
}

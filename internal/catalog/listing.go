package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ReubenBeeler-buckshot/buckshot-frontend/internal/images"
)

// ListingEntry is one image object from a bucket listing
type ListingEntry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Listing is the decoded first page of a ListObjectsV2 response
type Listing struct {
	Entries []ListingEntry
	// Truncated is set when the bucket holds more objects than this page
	Truncated bool
}

// listingContents mirrors a <Contents> element. Size and LastModified stay
// strings so a bad value only affects its own entry.
type listingContents struct {
	Key          string `xml:"Key"`
	Size         string `xml:"Size"`
	LastModified string `xml:"LastModified"`
}

var timeNow = time.Now

// DecodeListing reads a ListObjectsV2 XML body one <Contents> element at a
// time and keeps the entries that name images. Directory markers and
// non-image keys are dropped, a repeated key keeps its first occurrence.
// A missing or unparseable size becomes 0 and a missing or unparseable
// LastModified becomes the current time.
func DecodeListing(r io.Reader) (*Listing, error) {
	dec := xml.NewDecoder(r)
	listing := &Listing{}
	seen := make(map[string]struct{})
	now := timeNow().UTC()

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode listing: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "Contents":
			var c listingContents
			if err := dec.DecodeElement(&c, &start); err != nil {
				return nil, fmt.Errorf("failed to decode listing entry: %w", err)
			}
			if !images.IsImageKey(c.Key) {
				continue
			}
			if _, dup := seen[c.Key]; dup {
				continue
			}
			seen[c.Key] = struct{}{}
			listing.Entries = append(listing.Entries, c.entry(now))
		case "IsTruncated":
			var v string
			if err := dec.DecodeElement(&v, &start); err != nil {
				return nil, fmt.Errorf("failed to decode listing truncation flag: %w", err)
			}
			listing.Truncated = strings.EqualFold(strings.TrimSpace(v), "true")
		}
	}

	return listing, nil
}

func (c listingContents) entry(now time.Time) ListingEntry {
	e := ListingEntry{Key: c.Key, LastModified: now}

	if size, err := strconv.ParseInt(strings.TrimSpace(c.Size), 10, 64); err == nil && size >= 0 {
		e.Size = size
	}
	if lm := strings.TrimSpace(c.LastModified); lm != "" {
		if t, err := time.Parse(time.RFC3339Nano, lm); err == nil {
			e.LastModified = t
		}
	}

	return e
}

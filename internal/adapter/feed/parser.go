package feed

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
)

// Parse converts one feed document into raw alert records, one per entry, in
// document order. A well-formed feed without entries yields an empty slice.
// Missing titles, summaries, or timestamps become empty strings. Titles keep
// the whitespace they were published with, since severity is read from the
// untrimmed text.
func Parse(locator string, data []byte) ([]domain.RawAlertRecord, error) {
	fp := gofeed.NewParser()
	f, err := fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Locator: locator, Err: err}
	}

	titles := entryTitles(data, len(f.Items))
	records := make([]domain.RawAlertRecord, 0, len(f.Items))
	for i, item := range f.Items {
		if item == nil {
			continue
		}
		records = append(records, domain.RawAlertRecord{
			Locator:    locator,
			ID:         item.GUID,
			Link:       item.Link,
			TitleRaw:   untrimmedTitle(item.Title, titles, i),
			SummaryRaw: item.Description,
			UpdatedRaw: item.Updated,
		})
	}
	return records, nil
}

// atomEntries captures entry titles as written. gofeed trims them.
type atomEntries struct {
	Entries []struct {
		Title string `xml:"title"`
	} `xml:"entry"`
}

// entryTitles returns the raw Atom entry titles when the document yields
// exactly n of them, otherwise nil.
func entryTitles(data []byte, n int) []string {
	var doc atomEntries
	if err := xml.Unmarshal(data, &doc); err != nil || len(doc.Entries) != n {
		return nil
	}
	titles := make([]string, n)
	for i, e := range doc.Entries {
		titles[i] = e.Title
	}
	return titles
}

// untrimmedTitle restores surrounding whitespace only when the raw title is
// the parsed one plus padding.
func untrimmedTitle(parsed string, raw []string, i int) string {
	if i < len(raw) && strings.TrimSpace(raw[i]) == parsed {
		return raw[i]
	}
	return parsed
}

package feed

import (
	"bytes"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// statusFields are probed in order for each item; the first non-empty
// value wins. The list covers the explicit status fields emitted by
// vehicle feeds, then generic state fields, then falls back to the title.
var statusFields = []string{"status", "state", "etat", "disponibilite"}

// dateFields are the custom fields probed when gofeed did not manage to
// parse a published/updated date itself.
var dateFields = []string{"pubDate", "lastBuildDate", "updated", "date"}

// Parser turns raw feed bytes into normalized items. It is one-shot and
// stateless; the zero gofeed parser handles RSS, Atom and JSON feeds.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Parse interprets data as a feed document. A malformed root structure
// yields a *ParseError; anything short of that degrades gracefully per
// item. Items are returned in feed order, not re-sorted: item 0 carries
// the vehicle's current status.
func (p *Parser) Parse(data []byte, sourceURL string) ([]Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{URL: sourceURL, Err: err}
	}

	now := time.Now().UTC()
	items := make([]Item, 0, len(parsed.Items))
	for _, raw := range parsed.Items {
		if raw == nil {
			continue
		}
		items = append(items, Item{
			Status:    extractStatus(raw),
			UpdatedAt: extractDate(raw, now),
			SourceURL: sourceURL,
			Title:     strings.TrimSpace(raw.Title),
			Snippet:   strings.TrimSpace(raw.Description),
		})
	}

	return items, nil
}

// extractStatus probes the candidate status fields in order, then the item
// title, then the description. Feeds that carry nothing usable get a
// placeholder the normalizer maps to the fallback status.
func extractStatus(item *gofeed.Item) string {
	for _, field := range statusFields {
		if v := strings.TrimSpace(item.Custom[field]); v != "" {
			return v
		}
	}

	if v := strings.TrimSpace(item.Title); v != "" {
		return v
	}
	if v := strings.TrimSpace(item.Description); v != "" {
		return v
	}

	return "Statut inconnu"
}

// extractDate probes the parsed published/updated timestamps, then the raw
// custom date fields, and falls back to the fetch time. The fallback is a
// deliberate approximation, not an error: many vehicle feeds omit dates
// entirely.
func extractDate(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	for _, field := range dateFields {
		raw := strings.TrimSpace(item.Custom[field])
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t
		}
	}

	return fallback
}

package feed

import (
	"fmt"
	"time"
)

// FetchResult holds the body of a successful feed retrieval together with
// its content fingerprint. The fingerprint, not the transport validators,
// is the authoritative deduplication key: feed servers routinely omit ETag
// and Last-Modified.
type FetchResult struct {
	Content      []byte
	Fingerprint  string
	ETag         string
	LastModified string
	StatusCode   int
	FetchedAt    time.Time
}

// Item is one normalized feed entry. Items keep feed order; the first item
// is treated as the current status of the monitored vehicle.
type Item struct {
	Status    string
	UpdatedAt time.Time
	SourceURL string
	Title     string
	Snippet   string
}

// ParseError reports a structurally broken feed body. Unlike transient
// fetch failures it is surfaced to the scheduler so a misconfigured feed
// shows up in the logs instead of being silently skipped forever.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

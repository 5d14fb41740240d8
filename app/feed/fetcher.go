package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	acceptHeader = "application/rss+xml, application/xml, text/xml, */*"
	maxRedirects = 3
	maxBodySize  = 10 << 20 // 10 MiB
)

// Fetcher performs conditional HTTP retrieval of feed documents. Transient
// failures (network errors, timeouts, non-2xx statuses) are logged and
// reported as "no update": the scheduler skips the tick and tries again on
// the next one. Nothing a feed server does can take the polling loop down.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch retrieves a feed URL. priorHash and priorSeen come from the
// vehicle's persisted state and are turned into cache-validator headers so
// a well-behaved server can answer 304. A nil result with a nil error means
// the content is unchanged or temporarily unavailable; either way the
// caller skips this tick.
func (f *Fetcher) Fetch(ctx context.Context, url string, priorHash string, priorSeen *time.Time) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)
	if priorHash != "" {
		req.Header.Set("If-None-Match", priorHash)
	}
	if priorSeen != nil {
		req.Header.Set("If-Modified-Since", priorSeen.UTC().Format(http.TimeFormat))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("Feed fetch failed", "url", url, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		slog.Debug("Feed not modified", "url", url, "status", resp.StatusCode)
		return nil, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("Feed fetch returned non-OK status", "url", url, "status", resp.StatusCode)
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		slog.Warn("Failed to read feed body", "url", url, "error", err)
		return nil, nil
	}

	if len(data) == 0 {
		slog.Warn("Feed body is empty", "url", url)
		return nil, nil
	}

	return &FetchResult{
		Content:      data,
		Fingerprint:  Fingerprint(data),
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		StatusCode:   resp.StatusCode,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// Fingerprint computes the hex SHA-256 digest of raw feed bytes.
func Fingerprint(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

package feed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseVehicleFeed(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Statut VSAV-1</title>
    <link>https://example.com/vsav-1</link>
    <description>Flux de statut</description>
    <item>
      <title>VSAV-1</title>
      <status>Disponible</status>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>VSAV-1</title>
      <status>En intervention</status>
      <pubDate>Mon, 03 Jul 2023 08:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	items, err := parser.Parse([]byte(rssData), "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	// Feed order is preserved: item 0 is the current status.
	if items[0].Status != "Disponible" {
		t.Errorf("Expected status 'Disponible', got: %s", items[0].Status)
	}
	if items[1].Status != "En intervention" {
		t.Errorf("Expected status 'En intervention', got: %s", items[1].Status)
	}
	if items[0].SourceURL != "https://example.com/feed.xml" {
		t.Errorf("Expected source URL to be carried through, got: %s", items[0].SourceURL)
	}

	expected := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	if !items[0].UpdatedAt.Equal(expected) {
		t.Errorf("Expected timestamp %v, got: %v", expected, items[0].UpdatedAt)
	}
}

func TestParseStatusFallsBackToTitle(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <link>https://example.com</link>
    <description>d</description>
    <item>
      <title>Panne</title>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

	parser := NewParser()
	items, err := parser.Parse([]byte(rssData), "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Status != "Panne" {
		t.Errorf("Expected title used as status, got: %s", items[0].Status)
	}
}

func TestParseDateDefaultsToNow(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Feed</title>
    <link>https://example.com</link>
    <description>d</description>
    <item>
      <title>Disponible</title>
    </item>
  </channel>
</rss>`

	before := time.Now().UTC()
	parser := NewParser()
	items, err := parser.Parse([]byte(rssData), "https://example.com/feed.xml")
	after := time.Now().UTC()

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].UpdatedAt.Before(before) || items[0].UpdatedAt.After(after) {
		t.Errorf("Expected fallback timestamp between %v and %v, got: %v",
			before, after, items[0].UpdatedAt)
	}
}

func TestParseAtom(t *testing.T) {
	atomData := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Vehicle Feed</title>
  <id>urn:uuid:1234</id>
  <updated>2023-07-03T12:00:00Z</updated>
  <entry>
    <title>Retour service</title>
    <id>urn:uuid:entry-1</id>
    <updated>2023-07-03T10:00:00Z</updated>
  </entry>
</feed>`

	parser := NewParser()
	items, err := parser.Parse([]byte(atomData), "https://example.com/atom.xml")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Status != "Retour service" {
		t.Errorf("Expected status 'Retour service', got: %s", items[0].Status)
	}
}

func TestParseMalformedFeed(t *testing.T) {
	parser := NewParser()
	_, err := parser.Parse([]byte("this is not a feed at all"), "https://example.com/broken")
	if err == nil {
		t.Fatal("Expected parse error for malformed feed")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected *ParseError, got: %T", err)
	}
	if parseErr.URL != "https://example.com/broken" {
		t.Errorf("Expected URL in parse error, got: %s", parseErr.URL)
	}
	if !strings.Contains(parseErr.Error(), "https://example.com/broken") {
		t.Errorf("Expected error message to mention the URL, got: %s", parseErr.Error())
	}
}

func TestParseEmptyChannel(t *testing.T) {
	rssData := `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Empty</title>
    <link>https://example.com</link>
    <description>no items</description>
  </channel>
</rss>`

	parser := NewParser()
	items, err := parser.Parse([]byte(rssData), "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("Expected no error for empty channel, got: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected 0 items, got: %d", len(items))
	}
}

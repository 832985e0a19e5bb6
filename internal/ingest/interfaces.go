package ingest

import (
	"context"
	"time"
)

// Cache is the external key-value store used for robots.txt state. Values
// are opaque strings; a miss is reported through the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// URLValidator decides whether a URL is safe to request. The browser
// manager aborts any sub-request whose target fails this check.
type URLValidator interface {
	IsSafe(rawURL string) bool
}

// ContentExtractor turns rendered HTML into the plain text the health
// checker measures. Production wires the AI extraction step here.
type ContentExtractor interface {
	ExtractText(html string) string
}

// BlobStore writes raw artifacts (screenshots, PDFs) and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes pipeline events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// HealthStore persists health-check runs.
type HealthStore interface {
	SaveReport(ctx context.Context, report HealthReport) error
	ListReports(ctx context.Context, limit int) ([]HealthReport, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// URLWrapper turns a target page URL into the URL that is actually requested.
type URLWrapper interface {
	Wrap(target string) string
}

// Sink receives emitted records in order.
type Sink interface {
	Write(ctx context.Context, record any) error
	Close(ctx context.Context) error
}

// Keyed records expose the identifier sinks index them by.
type Keyed interface {
	Key() string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

package crawler

import (
	"net/http"
	"time"
)

// Pipeline names one of the two crawl pipelines.
type Pipeline string

// Supported pipelines.
const (
	PipelineURLs    Pipeline = "urls"
	PipelinePlayers Pipeline = "players"
)

// PlayerURLRecord is one identifier harvested from a listing page.
type PlayerURLRecord struct {
	PlayerURL string `json:"player_url"`
}

// Key returns the identifier used to address the record in sinks.
func (r PlayerURLRecord) Key() string {
	return r.PlayerURL
}

// FetchRequest captures everything needed to fetch a URL.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// OK reports whether the response carries a usable page.
func (r FetchResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && len(r.Body) > 0
}

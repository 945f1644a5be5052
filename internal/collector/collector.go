// Package collector runs the two sofifa pipelines: harvesting player identifiers
// from listing pages and turning each identifier's detail page into a record.
//
// Both pipelines are strictly sequential. A page is requested only after the
// previous one has been parsed and its records emitted, and the position in the
// crawl is an explicit cursor value rather than collector state, so a single step
// can be exercised on its own.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	"github.com/JakeFAU/fifa-crawler/internal/extract"
	"github.com/JakeFAU/fifa-crawler/internal/metrics"
)

// Default sofifa page locations.
const (
	DefaultListingURL = "https://sofifa.com/players?col=oa&sort=desc&offset=%d"
	DefaultPlayerURL  = "https://sofifa.com/player/%s?units=mks"
)

// pageFetcher fetches one page through the wrapper and parses it.
type pageFetcher struct {
	pipeline crawler.Pipeline
	fetcher  crawler.Fetcher
	wrapper  crawler.URLWrapper
	logger   *zap.Logger
}

func (p pageFetcher) document(ctx context.Context, target string) (*goquery.Document, error) {
	resp, err := p.fetcher.Fetch(ctx, crawler.FetchRequest{URL: p.wrapper.Wrap(target)})
	metrics.ObservePage(string(p.pipeline), resp.StatusCode, resp.Duration)
	if err != nil {
		p.fail(metrics.FailureFetch)
		if !errors.Is(err, crawler.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", crawler.ErrFetchFailed, err)
		}
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if !resp.OK() {
		p.fail(metrics.FailureFetch)
		return nil, fmt.Errorf("fetch %s: %w: status %d with %d bytes",
			target, crawler.ErrFetchFailed, resp.StatusCode, len(resp.Body))
	}
	p.logger.Debug("page fetched",
		zap.String("url", target),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
	)
	doc, err := extract.Parse(resp.Body)
	if err != nil {
		p.fail(metrics.FailureStructure)
		return nil, fmt.Errorf("%s: %w", target, err)
	}
	return doc, nil
}

func (p pageFetcher) fail(kind string) {
	metrics.ObserveFailure(string(p.pipeline), kind)
}

// emit writes one record to sink and counts it.
func emit(ctx context.Context, pipeline crawler.Pipeline, sink crawler.Sink, record any) error {
	if err := sink.Write(ctx, record); err != nil {
		metrics.ObserveFailure(string(pipeline), metrics.FailureSink)
		return fmt.Errorf("emit record: %w", err)
	}
	metrics.ObserveRecord(string(pipeline))
	return nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

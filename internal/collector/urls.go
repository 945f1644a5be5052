package collector

import (
	"context"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	"github.com/JakeFAU/fifa-crawler/internal/extract"
	"github.com/JakeFAU/fifa-crawler/internal/metrics"
)

// Listing pagination bounds: pages start at offset 0 and step by PageSize while
// the offset is below MaxOffset, so two pages are read.
const (
	PageSize  = 60
	MaxOffset = 60
)

// ListingCursor is the position of the URL collector in the listing.
type ListingCursor struct {
	Offset int
}

// Next returns the cursor for the following page, or false once the listing
// ceiling has been reached.
func (c ListingCursor) Next() (ListingCursor, bool) {
	if c.Offset < MaxOffset {
		return ListingCursor{Offset: c.Offset + PageSize}, true
	}
	return c, false
}

// URLCollector harvests player identifiers from the paginated listing.
type URLCollector struct {
	pages      pageFetcher
	listingURL string
	logger     *zap.Logger
}

// NewURLCollector builds a URLCollector. listingURL is a format string taking the
// offset; empty selects DefaultListingURL.
func NewURLCollector(
	fetcher crawler.Fetcher,
	wrapper crawler.URLWrapper,
	listingURL string,
	logger *zap.Logger,
) *URLCollector {
	metrics.Init()
	logger = orNop(logger).With(zap.String("pipeline", string(crawler.PipelineURLs)))
	if listingURL == "" {
		listingURL = DefaultListingURL
	}
	return &URLCollector{
		pages: pageFetcher{
			pipeline: crawler.PipelineURLs,
			fetcher:  fetcher,
			wrapper:  wrapper,
			logger:   logger,
		},
		listingURL: listingURL,
		logger:     logger,
	}
}

// ListingURL returns the listing page address for cursor.
func (u *URLCollector) ListingURL(cursor ListingCursor) string {
	return fmt.Sprintf(u.listingURL, cursor.Offset)
}

// Step fetches the listing page at cursor and returns its identifiers in
// document order.
func (u *URLCollector) Step(ctx context.Context, cursor ListingCursor) ([]crawler.PlayerURLRecord, error) {
	target := u.ListingURL(cursor)
	doc, err := u.pages.document(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("listing offset %d: %w", cursor.Offset, err)
	}
	ids := extract.PlayerIdentifiers(doc)
	records := make([]crawler.PlayerURLRecord, len(ids))
	for i, id := range ids {
		records[i] = crawler.PlayerURLRecord{PlayerURL: id}
	}
	u.logger.Info("listing page parsed",
		zap.Int("offset", cursor.Offset),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Records lazily walks the listing from offset 0. Iteration stops at the first
// error, which is yielded with a zero record.
func (u *URLCollector) Records(ctx context.Context) iter.Seq2[crawler.PlayerURLRecord, error] {
	return func(yield func(crawler.PlayerURLRecord, error) bool) {
		cursor := ListingCursor{}
		for {
			records, err := u.Step(ctx, cursor)
			if err != nil {
				yield(crawler.PlayerURLRecord{}, err)
				return
			}
			for _, r := range records {
				if !yield(r, nil) {
					return
				}
			}
			next, ok := cursor.Next()
			if !ok {
				return
			}
			cursor = next
		}
	}
}

// Run emits every identifier to sink and returns how many were written.
func (u *URLCollector) Run(ctx context.Context, sink crawler.Sink) (int, error) {
	count := 0
	for record, err := range u.Records(ctx) {
		if err != nil {
			return count, err
		}
		if err := emit(ctx, crawler.PipelineURLs, sink, record); err != nil {
			return count, err
		}
		count++
	}
	u.logger.Info("url collection finished", zap.Int("records", count))
	return count, nil
}

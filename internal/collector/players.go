package collector

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	"github.com/JakeFAU/fifa-crawler/internal/extract"
	"github.com/JakeFAU/fifa-crawler/internal/metrics"
)

// DetailCursor is the position of the detail collector in the identifier list.
type DetailCursor struct {
	Index int
}

// Next returns the cursor for the following identifier, or false once the last
// identifier of a list of length total has been reached.
func (c DetailCursor) Next(total int) (DetailCursor, bool) {
	if c.Index < total-1 {
		return DetailCursor{Index: c.Index + 1}, true
	}
	return c, false
}

// DetailCollector turns each identifier's detail page into a record.
type DetailCollector struct {
	pages       pageFetcher
	playerURL   string
	identifiers []crawler.PlayerURLRecord
	logger      *zap.Logger
}

// NewDetailCollector builds a DetailCollector over identifiers. playerURL is a
// format string taking the identifier; empty selects DefaultPlayerURL.
func NewDetailCollector(
	fetcher crawler.Fetcher,
	wrapper crawler.URLWrapper,
	playerURL string,
	identifiers []crawler.PlayerURLRecord,
	logger *zap.Logger,
) *DetailCollector {
	metrics.Init()
	logger = orNop(logger).With(zap.String("pipeline", string(crawler.PipelinePlayers)))
	if playerURL == "" {
		playerURL = DefaultPlayerURL
	}
	return &DetailCollector{
		pages: pageFetcher{
			pipeline: crawler.PipelinePlayers,
			fetcher:  fetcher,
			wrapper:  wrapper,
			logger:   logger,
		},
		playerURL:   playerURL,
		identifiers: identifiers,
		logger:      logger,
	}
}

// PlayerURL returns the detail page address for id.
func (d *DetailCollector) PlayerURL(id string) string {
	return fmt.Sprintf(d.playerURL, id)
}

// Step fetches and extracts the detail record for the identifier at cursor.
func (d *DetailCollector) Step(ctx context.Context, cursor DetailCursor) (*crawler.Record, error) {
	if cursor.Index < 0 || cursor.Index >= len(d.identifiers) {
		return nil, fmt.Errorf("cursor index %d outside identifier list of %d", cursor.Index, len(d.identifiers))
	}
	id := d.identifiers[cursor.Index].PlayerURL
	doc, err := d.pages.document(ctx, d.PlayerURL(id))
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", id, err)
	}
	record, err := extract.PlayerDetail(doc, id)
	if err != nil {
		if errors.Is(err, crawler.ErrStructuralMismatch) {
			d.pages.fail(metrics.FailureStructure)
		}
		return nil, fmt.Errorf("player %s: %w", id, err)
	}
	d.logger.Info("player page parsed",
		zap.Int("index", cursor.Index),
		zap.String("player_id", id),
		zap.Int("fields", record.Len()),
	)
	return record, nil
}

// Records lazily walks the identifier list in order. Iteration stops at the
// first error, which is yielded with a nil record.
func (d *DetailCollector) Records(ctx context.Context) iter.Seq2[*crawler.Record, error] {
	return func(yield func(*crawler.Record, error) bool) {
		if len(d.identifiers) == 0 {
			return
		}
		cursor := DetailCursor{}
		for {
			record, err := d.Step(ctx, cursor)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(record, nil) {
				return
			}
			next, ok := cursor.Next(len(d.identifiers))
			if !ok {
				return
			}
			cursor = next
		}
	}
}

// Run emits one record per identifier to sink and returns how many were written.
func (d *DetailCollector) Run(ctx context.Context, sink crawler.Sink) (int, error) {
	count := 0
	for record, err := range d.Records(ctx) {
		if err != nil {
			return count, err
		}
		if err := emit(ctx, crawler.PipelinePlayers, sink, record); err != nil {
			return count, err
		}
		count++
	}
	d.logger.Info("player collection finished", zap.Int("records", count))
	return count, nil
}

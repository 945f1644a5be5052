// Package app initializes and holds the services one pipeline run needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/clock"
	"github.com/JakeFAU/fifa-crawler/internal/collector"
	"github.com/JakeFAU/fifa-crawler/internal/config"
	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	collyfetcher "github.com/JakeFAU/fifa-crawler/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/fifa-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/fifa-crawler/internal/metrics"
	"github.com/JakeFAU/fifa-crawler/internal/proxy"
	"github.com/JakeFAU/fifa-crawler/internal/runid"
	"github.com/JakeFAU/fifa-crawler/internal/server"
	"github.com/JakeFAU/fifa-crawler/internal/sink"
	"github.com/JakeFAU/fifa-crawler/internal/source"
)

// App holds the shared services of a run: the fetcher and URL wrapper the
// collectors use, the cloud clients sinks are built from, and the optional
// metrics server.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	runID   string
	clock   crawler.Clock
	fetcher crawler.Fetcher
	wrapper crawler.URLWrapper
	opener  source.Opener

	closeFetcher func()

	mu            sync.Mutex
	storageClient *storage.Client
	pubsubClient  *pubsub.Client

	metricsServer *server.Server
	stopMetrics   context.CancelFunc
	metricsDone   chan error
}

// Option customizes App construction.
type Option func(*App)

// WithFetcher replaces the configured fetcher and URL wrapper.
func WithFetcher(f crawler.Fetcher, w crawler.URLWrapper) Option {
	return func(a *App) {
		a.fetcher = f
		a.wrapper = w
	}
}

// WithClock replaces the system clock.
func WithClock(c crawler.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithOpener replaces the Cloud Storage opener used for gs:// inputs.
func WithOpener(o source.Opener) Option {
	return func(a *App) { a.opener = o }
}

// New builds an App from cfg. The run ID comes from ids.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, ids crawler.IDGenerator, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = runid.New()
	}
	id, err := ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	metrics.Init()
	a := &App{
		cfg:    cfg,
		logger: logger.With(zap.String("run_id", id)),
		runID:  id,
		clock:  clock.System{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.fetcher == nil {
		if err := a.buildFetcher(); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics.Addr != "" {
		if err := a.startMetrics(ctx); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}
	a.logger.Info("application initialized",
		zap.String("fetch_mode", cfg.Fetch.Mode),
		zap.String("sink", cfg.Output.Sink),
	)
	return a, nil
}

func (a *App) buildFetcher() error {
	switch a.cfg.Fetch.Mode {
	case config.ModeHeadless:
		f, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			UserAgent:         a.cfg.Fetch.UserAgent,
			NavigationTimeout: a.cfg.NavTimeout(),
			SettleDelay:       a.cfg.SettleDelay(),
		})
		if err != nil {
			return fmt.Errorf("init headless fetcher: %w", err)
		}
		a.fetcher = f
		a.wrapper = proxy.Direct{}
		a.closeFetcher = f.Close
	default:
		a.fetcher = collyfetcher.New(collyfetcher.Config{
			UserAgent: a.cfg.Fetch.UserAgent,
			Timeout:   a.cfg.FetchTimeout(),
		})
		a.wrapper = proxy.New(a.cfg.Proxy.Endpoint, a.cfg.Proxy.APIKey)
	}
	return nil
}

func (a *App) startMetrics(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Metrics.Addr, err)
	}
	srvCtx, cancel := context.WithCancel(ctx)
	a.metricsServer = server.New(a.logger)
	a.stopMetrics = cancel
	a.metricsDone = make(chan error, 1)
	go func() {
		a.metricsDone <- a.metricsServer.Serve(srvCtx, ln)
	}()
	a.metricsServer.SetReady(true)
	return nil
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// RunID returns the identifier of this run.
func (a *App) RunID() string {
	return a.runID
}

// URLCollector builds the listing pipeline.
func (a *App) URLCollector() *collector.URLCollector {
	return collector.NewURLCollector(a.fetcher, a.wrapper, a.cfg.Site.ListingURL, a.logger)
}

// DetailCollector builds the detail pipeline over identifiers.
func (a *App) DetailCollector(identifiers []crawler.PlayerURLRecord) *collector.DetailCollector {
	return collector.NewDetailCollector(a.fetcher, a.wrapper, a.cfg.Site.PlayerURL, identifiers, a.logger)
}

// LoadIdentifiers reads the identifier list named by input.path.
func (a *App) LoadIdentifiers(ctx context.Context) ([]crawler.PlayerURLRecord, error) {
	opener := a.opener
	if opener == nil && strings.HasPrefix(a.cfg.Input.Path, "gs://") {
		client, err := a.storage(ctx)
		if err != nil {
			return nil, err
		}
		opener = source.GCSOpener{Client: client}
	}
	records, err := source.Load(ctx, a.cfg.Input.Path, opener)
	if err != nil {
		metrics.ObserveFailure(string(crawler.PipelinePlayers), metrics.FailureInput)
		return nil, fmt.Errorf("load identifiers: %w", err)
	}
	a.logger.Info("identifiers loaded",
		zap.String("input", a.cfg.Input.Path),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Sink opens the configured destination for pipeline.
func (a *App) Sink(ctx context.Context, pipeline crawler.Pipeline) (crawler.Sink, error) {
	switch a.cfg.Output.Sink {
	case config.SinkStdout:
		return sink.NewJSONLines(os.Stdout), nil
	case config.SinkFile:
		return sink.NewFile(a.cfg.OutputPath(pipeline))
	case config.SinkGCS:
		client, err := a.storage(ctx)
		if err != nil {
			return nil, err
		}
		return sink.NewGCS(ctx, client, sink.GCSConfig{
			Bucket: a.cfg.Output.GCSBucket,
			Object: a.cfg.GCSObject(pipeline),
		})
	case config.SinkPubSub:
		topic, err := a.topic(ctx)
		if err != nil {
			return nil, err
		}
		return sink.NewPubSub(topic, a.runID, pipeline, a.clock)
	case config.SinkPostgres:
		return sink.NewPostgres(ctx, sink.PostgresConfig{
			DSN:      a.cfg.DB.DSN,
			Table:    a.cfg.DB.Table,
			MaxConns: a.cfg.DB.MaxConns,
			RunID:    a.runID,
			Pipeline: pipeline,
			Clock:    a.clock,
		})
	default:
		return nil, fmt.Errorf("unknown sink %q", a.cfg.Output.Sink)
	}
}

func (a *App) storage(ctx context.Context) (*storage.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.storageClient != nil {
		return a.storageClient, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	a.storageClient = client
	return client, nil
}

func (a *App) topic(ctx context.Context) (*pubsub.Topic, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pubsubClient == nil {
		client, err := pubsub.NewClient(ctx, a.cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("create pubsub client: %w", err)
		}
		a.pubsubClient = client
	}
	topic := a.pubsubClient.Topic(a.cfg.PubSub.TopicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", a.cfg.PubSub.TopicName, err)
	}
	if !exists {
		return nil, fmt.Errorf("topic %s does not exist", a.cfg.PubSub.TopicName)
	}
	return topic, nil
}

// Close releases every service the run opened.
func (a *App) Close(context.Context) error {
	var errs []error
	if a.stopMetrics != nil {
		a.metricsServer.SetReady(false)
		a.stopMetrics()
		if err := <-a.metricsDone; err != nil {
			errs = append(errs, err)
		}
	}
	if a.closeFetcher != nil {
		a.closeFetcher()
	}
	a.mu.Lock()
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pubsub client: %w", err))
		}
	}
	if a.storageClient != nil {
		if err := a.storageClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage client: %w", err))
		}
	}
	a.mu.Unlock()
	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

// Package cmd defines and implements the CLI commands for the fifacrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/app"
	"github.com/JakeFAU/fifa-crawler/internal/collector"
	"github.com/JakeFAU/fifa-crawler/internal/config"
	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	"github.com/JakeFAU/fifa-crawler/internal/logging"
	"github.com/JakeFAU/fifa-crawler/internal/runid"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the services commands use. Tests inject their own through newApp.
type App interface {
	Close(ctx context.Context) error
	Logger() *zap.Logger
	URLCollector() *collector.URLCollector
	DetailCollector(identifiers []crawler.PlayerURLRecord) *collector.DetailCollector
	LoadIdentifiers(ctx context.Context) ([]crawler.PlayerURLRecord, error)
	Sink(ctx context.Context, pipeline crawler.Pipeline) (crawler.Sink, error)
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger, runid.New())
}

// Flags that override configuration values, keyed by flag name.
var flagOverrides = map[string]string{
	"api-key": "proxy.api_key",
	"sink":    "output.sink",
	"output":  "output.path",
	"input":   "input.path",
}

// session is what PersistentPreRunE stores in the command context.
type session struct {
	app     App
	restore func()
}

// close releases the application and restores the previous global logger.
func (s *session) close(ctx context.Context) {
	if err := s.app.Close(ctx); err != nil {
		s.app.Logger().Warn("close application", zap.Error(err))
	}
	s.restore()
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "fifacrawler",
		Short: "Crawls sofifa player listings and player detail pages.",
		Long: `fifacrawler collects player identifiers from the sofifa rating listing
(urls) and turns each identifier's detail page into a structured record
(players). Pages are fetched through a rendering proxy or a local headless
browser, and records are written to stdout, a file, Cloud Storage, Pub/Sub
or Postgres.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, overrides(cmd.Flags())...)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			restore := logging.Install(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				restore()
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, &session{app: appInstance, restore: restore}))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().String("api-key", "", "rendering proxy API key (overrides proxy.api_key)")
	cmd.PersistentFlags().String("sink", "", "record destination: stdout, file, gcs, pubsub or postgres")
	cmd.PersistentFlags().String("output", "", "output path for the file sink")

	cmd.AddCommand(newURLsCmd())
	cmd.AddCommand(newPlayersCmd())
	return cmd
}

func overrides(flags *pflag.FlagSet) []config.Option {
	opts := make([]config.Option, 0, len(flagOverrides))
	for name, key := range flagOverrides {
		if f := flags.Lookup(name); f != nil && f.Changed {
			opts = append(opts, config.WithOverride(key, f.Value.String()))
		}
	}
	return opts
}

func resolveSession(ctx context.Context) (*session, error) {
	s, ok := ctx.Value(appKey).(*session)
	if !ok || s == nil || s.app == nil {
		return nil, errors.New("application services not initialized")
	}
	return s, nil
}

// withApp adapts fn into a RunE that closes the application however fn returns.
func withApp(fn func(ctx context.Context, appInstance App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := resolveSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close(cmd.Context())
		return fn(cmd.Context(), s.app)
	}
}

// runPipeline opens the sink for pipeline, runs fn against it and closes it.
func runPipeline(
	ctx context.Context,
	appInstance App,
	pipeline crawler.Pipeline,
	fn func(ctx context.Context, sink crawler.Sink) (int, error),
) error {
	logger := appInstance.Logger()
	sink, err := appInstance.Sink(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("open %s sink: %w", pipeline, err)
	}
	count, runErr := fn(ctx, sink)
	closeErr := sink.Close(ctx)
	if runErr != nil {
		logger.Error("pipeline failed", zap.String("pipeline", string(pipeline)), zap.Int("records", count), zap.Error(runErr))
		return fmt.Errorf("run %s pipeline: %w", pipeline, runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s sink: %w", pipeline, closeErr)
	}
	logger.Info("pipeline finished", zap.String("pipeline", string(pipeline)), zap.Int("records", count))
	return nil
}

// Execute is the main entry point.
func Execute() {
	bootstrap, err := logging.New(false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Install(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		zap.L().Fatal("Command execution failed", zap.Error(err))
	}
}

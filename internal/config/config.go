// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

// Fetch modes.
const (
	ModeProxy    = "proxy"
	ModeHeadless = "headless"
)

// Sink kinds.
const (
	SinkStdout   = "stdout"
	SinkFile     = "file"
	SinkGCS      = "gcs"
	SinkPubSub   = "pubsub"
	SinkPostgres = "postgres"
)

// Default output locations, one per pipeline.
const (
	DefaultURLsOutput    = "dataset/players_urls.json"
	DefaultPlayersOutput = "dataset/players_info.json"
)

// Config captures all crawler configuration knobs loaded via Viper.
type Config struct {
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Site    SiteConfig    `mapstructure:"site"`
	Input   InputConfig   `mapstructure:"input"`
	Output  OutputConfig  `mapstructure:"output"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	DB      DBConfig      `mapstructure:"db"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ProxyConfig names the scraping proxy every page request goes through.
type ProxyConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

// FetchConfig selects and tunes the page fetcher.
type FetchConfig struct {
	Mode              string `mapstructure:"mode"`
	UserAgent         string `mapstructure:"user_agent"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	NavTimeoutSeconds int    `mapstructure:"nav_timeout_seconds"`
	// SettleDelayMs is how long headless mode waits after the body is ready
	// before reading the DOM. Zero selects the fetcher default.
	SettleDelayMs     int    `mapstructure:"settle_delay_ms"`
}

// SiteConfig holds the page URL templates. ListingURL takes the offset (%d),
// PlayerURL the player identifier (%s).
type SiteConfig struct {
	ListingURL string `mapstructure:"listing_url"`
	PlayerURL  string `mapstructure:"player_url"`
}

// InputConfig locates the identifier list read by the detail pipeline.
type InputConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig selects where records are emitted.
type OutputConfig struct {
	Sink      string `mapstructure:"sink"`
	Path      string `mapstructure:"path"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	GCSObject string `mapstructure:"gcs_object"`
}

// PubSubConfig holds the topic records are published to.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// MetricsConfig enables the health and metrics listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Option adjusts the loader before values are resolved.
type Option func(v *viper.Viper)

// WithOverride sets key to value when value is non-empty. Overrides take
// precedence over the environment and the config file.
func WithOverride(key, value string) Option {
	return func(v *viper.Viper) {
		if value != "" {
			v.Set(key, value)
		}
	}
}

// Load builds a Config from disk/environment.
func Load(path string, opts ...Option) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FIFA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("proxy.endpoint", "https://api.zenrows.com/v1/")
	v.SetDefault("proxy.api_key", "")
	v.SetDefault("fetch.mode", ModeProxy)
	v.SetDefault("fetch.user_agent", "fifa-crawler/0.1")
	v.SetDefault("fetch.timeout_seconds", 60)
	v.SetDefault("fetch.nav_timeout_seconds", 45)
	v.SetDefault("fetch.settle_delay_ms", 500)
	v.SetDefault("site.listing_url", "https://sofifa.com/players?col=oa&sort=desc&offset=%d")
	v.SetDefault("site.player_url", "https://sofifa.com/player/%s?units=mks")
	v.SetDefault("input.path", DefaultURLsOutput)
	v.SetDefault("output.sink", SinkFile)
	v.SetDefault("output.path", "")
	v.SetDefault("output.gcs_bucket", "")
	v.SetDefault("output.gcs_object", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "crawl_records")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	switch c.Fetch.Mode {
	case ModeProxy:
		if c.Proxy.APIKey == "" {
			return fmt.Errorf("proxy.api_key must be set in proxy mode")
		}
		if c.Proxy.Endpoint == "" {
			return fmt.Errorf("proxy.endpoint must be set in proxy mode")
		}
	case ModeHeadless:
		if c.Fetch.NavTimeoutSeconds <= 0 {
			return fmt.Errorf("fetch.nav_timeout_seconds must be > 0")
		}
		if c.Fetch.SettleDelayMs < 0 {
			return fmt.Errorf("fetch.settle_delay_ms must be >= 0")
		}
	default:
		return fmt.Errorf("fetch.mode must be %q or %q, got %q", ModeProxy, ModeHeadless, c.Fetch.Mode)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if !strings.Contains(c.Site.ListingURL, "%d") {
		return fmt.Errorf("site.listing_url must contain %%d for the offset")
	}
	if !strings.Contains(c.Site.PlayerURL, "%s") {
		return fmt.Errorf("site.player_url must contain %%s for the player id")
	}
	switch c.Output.Sink {
	case SinkStdout, SinkFile:
	case SinkGCS:
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set for the gcs sink")
		}
	case SinkPubSub:
		if c.PubSub.ProjectID == "" || c.PubSub.TopicName == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set for the pubsub sink")
		}
	case SinkPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set for the postgres sink")
		}
	default:
		return fmt.Errorf("output.sink %q is not supported", c.Output.Sink)
	}
	return nil
}

// OutputPath returns the local path the file sink writes for pipeline.
func (c Config) OutputPath(pipeline crawler.Pipeline) string {
	if c.Output.Path != "" {
		return c.Output.Path
	}
	if pipeline == crawler.PipelinePlayers {
		return DefaultPlayersOutput
	}
	return DefaultURLsOutput
}

// GCSObject returns the object name the gcs sink writes for pipeline.
func (c Config) GCSObject(pipeline crawler.Pipeline) string {
	if c.Output.GCSObject != "" {
		return c.Output.GCSObject
	}
	return c.OutputPath(pipeline)
}

// FetchTimeout converts fetch.timeout_seconds to a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// NavTimeout converts fetch.nav_timeout_seconds to a duration.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSeconds) * time.Second
}

// SettleDelay converts fetch.settle_delay_ms to a duration.
func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Fetch.SettleDelayMs) * time.Millisecond
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
proxy:
  api_key: file-key
fetch:
  user_agent: real-agent
  timeout_seconds: 30
site:
  listing_url: "http://localhost/players?offset=%d"
output:
  sink: postgres
db:
  dsn: postgres://localhost/fifa
  table: players
  max_conns: 8
metrics:
  addr: ":9100"
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Proxy.APIKey != "file-key" || cfg.Proxy.Endpoint != "https://api.zenrows.com/v1/" {
		t.Fatalf("unexpected proxy config: %+v", cfg.Proxy)
	}
	if cfg.Fetch.UserAgent != "real-agent" {
		t.Fatalf("expected user agent override, got %q", cfg.Fetch.UserAgent)
	}
	if got := cfg.FetchTimeout(); got != 30*time.Second {
		t.Fatalf("expected fetch timeout 30s, got %v", got)
	}
	if cfg.Site.ListingURL != "http://localhost/players?offset=%d" {
		t.Fatalf("unexpected listing url %q", cfg.Site.ListingURL)
	}
	if cfg.Site.PlayerURL != "https://sofifa.com/player/%s?units=mks" {
		t.Fatalf("expected default player url, got %q", cfg.Site.PlayerURL)
	}
	if cfg.Output.Sink != SinkPostgres || cfg.DB.Table != "players" || cfg.DB.MaxConns != 8 {
		t.Fatalf("unexpected output/db config: %+v %+v", cfg.Output, cfg.DB)
	}
	if cfg.Metrics.Addr != ":9100" || cfg.Logging.Development {
		t.Fatalf("unexpected metrics/logging config")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", WithOverride("proxy.api_key", "flag-key"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Fetch.Mode != ModeProxy || cfg.Output.Sink != SinkFile {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Fetch, cfg.Output)
	}
	if cfg.Input.Path != DefaultURLsOutput {
		t.Fatalf("expected default input path, got %q", cfg.Input.Path)
	}
	if got := cfg.OutputPath(crawler.PipelineURLs); got != "dataset/players_urls.json" {
		t.Fatalf("unexpected urls output %q", got)
	}
	if got := cfg.OutputPath(crawler.PipelinePlayers); got != "dataset/players_info.json" {
		t.Fatalf("unexpected players output %q", got)
	}
	if got := cfg.NavTimeout(); got != 45*time.Second {
		t.Fatalf("expected nav timeout 45s, got %v", got)
	}
	if got := cfg.SettleDelay(); got != 500*time.Millisecond {
		t.Fatalf("expected settle delay 500ms, got %v", got)
	}
}

func TestLoadEnvironmentAndOverridePrecedence(t *testing.T) {
	t.Setenv("FIFA_PROXY_API_KEY", "env-key")
	t.Setenv("FIFA_OUTPUT_SINK", "stdout")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Proxy.APIKey != "env-key" || cfg.Output.Sink != SinkStdout {
		t.Fatalf("expected environment values, got %+v %+v", cfg.Proxy, cfg.Output)
	}

	cfg, err = Load("",
		WithOverride("proxy.api_key", "flag-key"),
		WithOverride("output.sink", ""),
		WithOverride("output.path", "out/urls.json"),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Proxy.APIKey != "flag-key" {
		t.Fatalf("expected flag to win, got %q", cfg.Proxy.APIKey)
	}
	if cfg.Output.Sink != SinkStdout {
		t.Fatalf("empty override must not clear a value, got %q", cfg.Output.Sink)
	}
	if got := cfg.OutputPath(crawler.PipelinePlayers); got != "out/urls.json" {
		t.Fatalf("expected explicit output path, got %q", got)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Parallel()

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "proxy.api_key") {
		t.Fatalf("expected api key error, got %v", err)
	}

	cfg, err := Load("", WithOverride("fetch.mode", ModeHeadless), WithOverride("fetch.settle_delay_ms", "1500"))
	if err != nil {
		t.Fatalf("headless mode should not require an api key: %v", err)
	}
	if got := cfg.SettleDelay(); got != 1500*time.Millisecond {
		t.Fatalf("expected settle delay 1.5s, got %v", got)
	}
}

func TestGCSObjectDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	if got := cfg.GCSObject(crawler.PipelinePlayers); got != DefaultPlayersOutput {
		t.Fatalf("unexpected default object %q", got)
	}
	cfg.Output.GCSObject = "runs/urls.json"
	if got := cfg.GCSObject(crawler.PipelineURLs); got != "runs/urls.json" {
		t.Fatalf("unexpected object %q", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Proxy: ProxyConfig{Endpoint: "https://proxy.example/", APIKey: "k"},
		Fetch: FetchConfig{Mode: ModeProxy, TimeoutSeconds: 10, NavTimeoutSeconds: 10},
		Site: SiteConfig{
			ListingURL: "https://sofifa.com/players?offset=%d",
			PlayerURL:  "https://sofifa.com/player/%s",
		},
		Output: OutputConfig{Sink: SinkFile},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing api key", func(c *Config) { c.Proxy.APIKey = "" }, "proxy.api_key"},
		{"missing endpoint", func(c *Config) { c.Proxy.Endpoint = "" }, "proxy.endpoint"},
		{"unknown mode", func(c *Config) { c.Fetch.Mode = "browser" }, "fetch.mode"},
		{"invalid timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, "fetch.timeout_seconds"},
		{"headless nav timeout", func(c *Config) {
			c.Fetch.Mode = ModeHeadless
			c.Fetch.NavTimeoutSeconds = 0
		}, "fetch.nav_timeout_seconds"},
		{"headless settle delay", func(c *Config) {
			c.Fetch.Mode = ModeHeadless
			c.Fetch.SettleDelayMs = -1
		}, "fetch.settle_delay_ms"},
		{"listing template", func(c *Config) { c.Site.ListingURL = "https://sofifa.com/players" }, "site.listing_url"},
		{"player template", func(c *Config) { c.Site.PlayerURL = "https://sofifa.com/player" }, "site.player_url"},
		{"unknown sink", func(c *Config) { c.Output.Sink = "s3" }, "output.sink"},
		{"gcs bucket", func(c *Config) { c.Output.Sink = SinkGCS }, "output.gcs_bucket"},
		{"pubsub topic", func(c *Config) { c.Output.Sink = SinkPubSub }, "pubsub.project_id"},
		{"postgres dsn", func(c *Config) { c.Output.Sink = SinkPostgres }, "db.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

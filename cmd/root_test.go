package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/fifa-crawler/internal/app"
	"github.com/JakeFAU/fifa-crawler/internal/config"
	"github.com/JakeFAU/fifa-crawler/internal/crawler"
	"github.com/JakeFAU/fifa-crawler/internal/proxy"
	"github.com/JakeFAU/fifa-crawler/internal/runid"
)

type fixtureFetcher struct{}

func (fixtureFetcher) Fetch(_ context.Context, req crawler.FetchRequest) (crawler.FetchResponse, error) {
	name := "listing.html"
	if strings.Contains(req.URL, "/player/") {
		name = "player.html"
	}
	body, err := os.ReadFile(filepath.Join("..", "internal", "extract", "testdata", name))
	if err != nil {
		return crawler.FetchResponse{}, err
	}
	return crawler.FetchResponse{URL: req.URL, StatusCode: 200, Body: body}, nil
}

// useFixtureApp swaps the application factory for one backed by local fixtures.
func useFixtureApp(t *testing.T) {
	t.Helper()
	orig := newApp
	newApp = func(ctx context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		return app.New(ctx, cfg, zap.NewNop(), runid.Static("test-run"), app.WithFetcher(fixtureFetcher{}, proxy.Direct{}))
	}
	t.Cleanup(func() { newApp = orig })
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	return root.ExecuteContext(context.Background())
}

func TestURLsThenPlayers(t *testing.T) {
	useFixtureApp(t)
	dir := t.TempDir()
	urlsPath := filepath.Join(dir, "players_urls.json")
	infoPath := filepath.Join(dir, "players_info.json")

	require.NoError(t, execute(t, "urls", "--api-key", "k", "--output", urlsPath))

	var urls []map[string]string
	data, err := os.ReadFile(urlsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &urls))
	require.Len(t, urls, 8)
	require.Equal(t, "231747", urls[0]["player_url"])

	require.NoError(t, execute(t, "players", "--api-key", "k", "--input", urlsPath, "--output", infoPath))

	var players []map[string]any
	data, err = os.ReadFile(infoPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &players))
	require.Len(t, players, 8)
	require.Equal(t, "231747", players[0]["id"])
	require.Equal(t, "231747", players[3]["id"])
}

func TestPlayersMissingInputDoesNotStart(t *testing.T) {
	useFixtureApp(t)
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "players_info.json")

	err := execute(t, "players", "--api-key", "k",
		"--input", filepath.Join(dir, "absent.json"), "--output", infoPath)
	require.ErrorIs(t, err, crawler.ErrMissingInput)
	_, statErr := os.Stat(infoPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestMissingAPIKeyFailsBeforeRun(t *testing.T) {
	useFixtureApp(t)
	t.Setenv("FIFA_PROXY_API_KEY", "")

	err := execute(t, "urls", "--output", filepath.Join(t.TempDir(), "out.json"))
	require.ErrorContains(t, err, "proxy.api_key")
}

func TestResolveSessionRequiresApp(t *testing.T) {
	_, err := resolveSession(context.Background())
	require.Error(t, err)
}

package sink

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) Close() error              { return nil }

func TestJSONArrayWritesOrderedArray(t *testing.T) {
	t.Parallel()

	buf := &bufferCloser{}
	s := NewJSONArray(buf)
	ctx := context.Background()

	rec := crawler.NewRecord()
	rec.Set("name", "Lionel Messi")
	rec.Set("id", "158023")

	require.NoError(t, s.Write(ctx, crawler.PlayerURLRecord{PlayerURL: "231747"}))
	require.NoError(t, s.Write(ctx, rec))
	require.NoError(t, s.Close(ctx))

	want := "[\n" +
		`{"player_url":"231747"}` + ",\n" +
		`{"name":"Lionel Messi","id":"158023"}` +
		"\n]\n"
	require.Equal(t, want, buf.String())
	require.True(t, buf.closed)
}

func TestJSONArrayEmpty(t *testing.T) {
	t.Parallel()

	buf := &bufferCloser{}
	s := NewJSONArray(buf)
	require.NoError(t, s.Close(context.Background()))
	require.Equal(t, "[]\n", buf.String())
}

func TestJSONArrayRejectsWritesAfterClose(t *testing.T) {
	t.Parallel()

	buf := &bufferCloser{}
	s := NewJSONArray(buf)
	ctx := context.Background()
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	require.ErrorIs(t, s.Write(ctx, crawler.PlayerURLRecord{PlayerURL: "1"}), ErrClosed)
}

func TestJSONArrayCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewJSONArray(&bufferCloser{}).Write(ctx, crawler.PlayerURLRecord{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestJSONArrayWriteError(t *testing.T) {
	t.Parallel()

	err := NewJSONArray(failingWriter{}).Write(context.Background(), crawler.PlayerURLRecord{PlayerURL: "1"})
	require.ErrorContains(t, err, "disk full")
}

func TestJSONLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewJSONLines(&buf)
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, crawler.PlayerURLRecord{PlayerURL: "1"}))
	require.NoError(t, s.Write(ctx, crawler.PlayerURLRecord{PlayerURL: "2"}))
	require.NoError(t, s.Close(ctx))
	require.Equal(t, "{\"player_url\":\"1\"}\n{\"player_url\":\"2\"}\n", buf.String())
}

func TestNewFileCreatesDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset", "players_urls.json")
	s, err := NewFile(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Write(ctx, crawler.PlayerURLRecord{PlayerURL: "158023"}))
	require.NoError(t, s.Close(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[\n{\"player_url\":\"158023\"}\n]\n", string(data))
}

func TestNewFileRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewFile("  ")
	require.Error(t, err)
}

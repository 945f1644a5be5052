// Package source loads the identifier list the detail pipeline walks.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

const gcsScheme = "gs://"

// Opener opens an object in a bucket for reading.
type Opener interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// GCSOpener reads objects from Cloud Storage.
type GCSOpener struct {
	Client *storage.Client
}

// Open returns a reader for gs://bucket/object. A missing object is reported
// as crawler.ErrMissingInput.
func (o GCSOpener) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	if o.Client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	r, err := o.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", crawler.ErrMissingInput, bucket, object)
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	return r, nil
}

// Load reads the identifier list at path, either a local file or a
// gs://bucket/object URI opened through opener. The content is a JSON array of
// {"player_url": ...} objects or one such object per line.
func Load(ctx context.Context, path string, opener Opener) ([]crawler.PlayerURLRecord, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no input path", crawler.ErrMissingInput)
	}
	rc, err := open(ctx, path, opener)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

func open(ctx context.Context, path string, opener Opener) (io.ReadCloser, error) {
	if rest, ok := strings.CutPrefix(path, gcsScheme); ok {
		bucket, object, found := strings.Cut(rest, "/")
		if !found || bucket == "" || object == "" {
			return nil, fmt.Errorf("invalid gcs uri %q", path)
		}
		if opener == nil {
			return nil, fmt.Errorf("no opener configured for %s", path)
		}
		return opener.Open(ctx, bucket, object)
	}
	// #nosec G304 -- input path comes from operator configuration.
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", crawler.ErrMissingInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Decode parses a JSON array or newline-delimited JSON objects.
func Decode(data []byte) ([]crawler.PlayerURLRecord, error) {
	trimmed := bytes.TrimSpace(data)
	records := []crawler.PlayerURLRecord{}
	if len(trimmed) == 0 {
		return records, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parse json array: %w", err)
		}
		return records, nil
	}
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec crawler.PlayerURLRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}
	return records, nil
}

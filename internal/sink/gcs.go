package sink

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

const jsonContentType = "application/json"

// GCSConfig names the object the records are streamed to.
type GCSConfig struct {
	Bucket string
	Object string
}

// NewGCS streams a JSON array into a Cloud Storage object. The object becomes
// visible once the sink is closed.
func NewGCS(ctx context.Context, client *storage.Client, cfg GCSConfig) (*JSONArray, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if strings.TrimSpace(cfg.Object) == "" {
		return nil, fmt.Errorf("object name is required")
	}
	writer := client.Bucket(cfg.Bucket).Object(cfg.Object).NewWriter(ctx)
	writer.ContentType = jsonContentType
	return NewJSONArray(writer), nil
}

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NewFile creates (or truncates) path and returns a JSONArray writing to it.
func NewFile(path string) (*JSONArray, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create output dir for %s: %w", path, err)
	}
	// #nosec G304 -- output path comes from operator configuration.
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return NewJSONArray(f), nil
}

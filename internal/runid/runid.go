// Package runid generates the identifiers that tag one pipeline run.
package runid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates UUID v7 run identifiers, which sort by creation time.
type Generator struct{}

// New creates a new Generator.
func New() Generator {
	return Generator{}
}

// NewID returns a UUID7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid7: %w", err)
	}
	return id.String(), nil
}

// Static returns the same identifier every time.
type Static string

// NewID returns s.
func (s Static) NewID() (string, error) {
	return string(s), nil
}

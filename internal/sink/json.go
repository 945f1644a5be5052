// Package sink implements the destinations pipeline records are emitted to.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned when writing to a closed sink.
var ErrClosed = errors.New("sink closed")

// JSONArray streams records as one JSON array:
//
//	[
//	{...},
//	{...}
//	]
//
// The closing bracket is written on Close, which also closes the destination.
type JSONArray struct {
	mu     sync.Mutex
	w      io.WriteCloser
	count  int
	closed bool
}

// NewJSONArray wraps w.
func NewJSONArray(w io.WriteCloser) *JSONArray {
	return &JSONArray{w: w}
}

// Write appends one record to the array.
func (a *JSONArray) Write(ctx context.Context, record any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	prefix := ",\n"
	if a.count == 0 {
		prefix = "[\n"
	}
	if _, err := io.WriteString(a.w, prefix); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}
	if _, err := a.w.Write(data); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	a.count++
	return nil
}

// Close terminates the array and closes the destination.
func (a *JSONArray) Close(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	suffix := "\n]\n"
	if a.count == 0 {
		suffix = "[]\n"
	}
	_, werr := io.WriteString(a.w, suffix)
	cerr := a.w.Close()
	if werr != nil {
		return fmt.Errorf("write array end: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close destination: %w", cerr)
	}
	return nil
}

// JSONLines writes one JSON document per line. It does not close the writer.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines wraps w.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

// Write encodes record followed by a newline.
func (l *JSONLines) Write(_ context.Context, record any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(record); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// Close implements crawler.Sink; it performs no action.
func (l *JSONLines) Close(context.Context) error {
	return nil
}

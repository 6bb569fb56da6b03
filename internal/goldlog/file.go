package goldlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileSink appends entries to a JSONL file, one JSON object per line. Safe
// for concurrent use.
type FileSink struct {
	mu   sync.Mutex
	path string
}

var _ Sink = (*FileSink)(nil)

// NewFileSink returns a sink writing to path. The file is created on first
// append.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Append serializes e and appends it as a single line.
func (s *FileSink) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("goldlog: marshal entry: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("goldlog: open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("goldlog: write entry: %w", err)
	}
	return nil
}

// ReadAll loads every entry from the file, oldest first. Mainly for tests and
// offline analysis; returns an empty slice when the file does not exist yet.
func (s *FileSink) ReadAll() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("goldlog: read %s: %w", s.path, err)
	}

	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("goldlog: decode entry %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

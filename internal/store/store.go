// Package store provides durable persistence for memory entries and
// session summaries. Each collection is a newline-delimited JSON log:
// new records are appended, while updates and deletes serialize the whole
// collection to a temp file and atomically rename it over the old log, so
// a reader never observes a partial record.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors returned by both collections.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)

// Default log file names under the data directory.
const (
	MemoryLogName  = "memories.ndjson"
	SummaryLogName = "summaries.ndjson"
)

// appendLine appends a single serialized record to the log.
func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync log: %w", err)
	}
	return f.Close()
}

// writeAtomic writes all lines to a temp file in the log's directory and
// renames it over the existing log. On any failure the temp file is
// removed and the old log is left untouched.
func writeAtomic(path string, lines [][]byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rewrite-*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	for _, line := range lines {
		if _, err := tmp.Write(append(line, '\n')); err != nil {
			return fail(fmt.Errorf("write temp log: %w", err))
		}
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp log: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp log: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("swap log: %w", err)
	}
	return nil
}

// readLog returns the raw lines of a log file. A missing file is an empty
// collection, not an error.
func readLog(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log: %w", err)
	}
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines, nil
}

// ensureDir creates the parent directory of a log path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

// Package jsonldb stores records as JSON Lines: one JSON document per line,
// appended at the end of the file.
package jsonldb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"
)

// Table is a JSONL file and its rows cached in memory. It is safe for
// concurrent use within one process.
type Table[T any] struct {
	path string
	mu   sync.RWMutex
	rows []T
}

// Open loads the table at path. A missing file is an empty table; its
// directory is created.
func Open[T any](path string) (*Table[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	t := &Table[T]{path: path}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[T]) load() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open table file %s: %w", t.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(b, &row); err != nil {
			return fmt.Errorf("failed to unmarshal row in %s:%d: %w", t.path, line, err)
		}
		t.rows = append(t.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", t.path, err)
	}
	return nil
}

// Path returns the file backing the table.
func (t *Table[T]) Path() string {
	return t.path
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// All iterates over the rows in file order. The table is read-locked while
// iterating.
func (t *Table[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		for i, r := range t.rows {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Last returns a copy of the last n rows, oldest first.
func (t *Table[T]) Last(n int) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n > len(t.rows) || n < 0 {
		n = len(t.rows)
	}
	out := make([]T, n)
	copy(out, t.rows[len(t.rows)-n:])
	return out
}

// Append adds a row at the end of the file.
func (t *Table[T]) Append(row T) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // Path chosen by the caller
	if err != nil {
		return fmt.Errorf("failed to open table file for append: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write row: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	t.rows = append(t.rows, row)
	return nil
}

// Trim keeps only the last n rows, rewriting the file when rows are dropped.
// It returns the number of rows dropped.
func (t *Table[T]) Trim(n int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 0 || len(t.rows) <= n {
		return 0, nil
	}
	dropped := len(t.rows) - n
	kept := t.rows[dropped:]
	if err := t.replace(kept); err != nil {
		return 0, err
	}
	t.rows = append([]T(nil), kept...)
	return dropped, nil
}

// replace writes rows to a temporary file renamed over the table so a failed
// write leaves the previous content.
func (t *Table[T]) replace(rows []T) error {
	tmp := t.path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // Path chosen by the caller
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err == nil {
			_, err = w.Write(append(data, '\n'))
		}
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, t.path)
}

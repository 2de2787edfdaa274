// Reads and writes tables as delimited text.

package sheet

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

const (
	// DefaultDelimiter separates fields when none is given.
	DefaultDelimiter = "\t"
	// HeaderSentinel as the first field of the first line marks a file that
	// carries no real header row; that line is dropped on read.
	HeaderSentinel = "columnName"

	maxLineSize = 16 * 1024 * 1024
)

// WriteMode selects how Save treats an existing file.
type WriteMode int

const (
	// Overwrite truncates the target.
	Overwrite WriteMode = iota
	// Append adds rows at the end of the target.
	Append
)

func (m WriteMode) String() string {
	if m == Append {
		return "append"
	}
	return "overwrite"
}

// ParseWriteMode accepts "overwrite" or "w", and "append" or "a".
func ParseWriteMode(s string) (WriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite", "w":
		return Overwrite, nil
	case "append", "a":
		return Append, nil
	default:
		return Overwrite, fmt.Errorf("unknown write mode %q", s)
	}
}

// Parse reads delimited text. Ragged rows are padded. The returned table is
// in row orientation.
//
// Empty lines before the first record are skipped. After it, an empty line is
// an empty row of a single-column table, since that is how such a row is
// written; in tables with more columns empty lines are skipped.
func Parse(r io.Reader, delim string) (*Table, error) {
	if delim == "" {
		delim = DefaultDelimiter
	}
	var rows []Vector
	first := true
	width := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			if len(rows) > 0 {
				// Placeholder resolved once the width is known.
				rows = append(rows, nil)
			}
			continue
		}
		fields := strings.Split(line, delim)
		if first {
			first = false
			if fields[0] == HeaderSentinel {
				continue
			}
		}
		v := make(Vector, len(fields))
		for i, f := range fields {
			v[i] = ParseCell(f)
		}
		width = max(width, len(v))
		rows = append(rows, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if width > 1 {
		rows = slices.DeleteFunc(rows, func(v Vector) bool { return v == nil })
	} else {
		for i, v := range rows {
			if v == nil {
				rows[i] = Vector{Cell{}}
			}
		}
	}
	t := &Table{vectors: rows}
	t.refresh()
	return t, nil
}

// Load reads the table stored at path.
func Load(path, delim string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open table file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	t, err := Parse(f, delim)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file %s: %w", path, err)
	}
	slog.Debug("Loaded table", "path", path, "rows", t.RowCount(), "columns", t.ColumnCount())
	return t, nil
}

// Write writes every row followed by a newline, fields joined by delim.
func (t *Table) Write(w io.Writer, delim string) error {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return t.preserve(func() error {
		t.toRows()
		bw := bufio.NewWriter(w)
		for _, row := range t.vectors {
			if _, err := bw.WriteString(strings.Join(row.Strings(), delim)); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("failed to write newline: %w", err)
			}
		}
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("failed to flush writer: %w", err)
		}
		return nil
	})
}

// Format returns the delimited text form of t.
func (t *Table) Format(delim string) string {
	var b strings.Builder
	// strings.Builder never fails.
	_ = t.Write(&b, delim)
	return b.String()
}

// Save writes t to path. Append mode adds the rows after the existing
// content of the file.
func (t *Table) Save(path, delim string, mode WriteMode) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644) //nolint:gosec // G304: path is provided by the caller
	if err != nil {
		return fmt.Errorf("failed to open table file %s: %w", path, err)
	}
	if err := t.Write(f, delim); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	slog.Debug("Saved table", "path", path, "mode", mode.String())
	return nil
}

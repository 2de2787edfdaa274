package sheet

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

func (t *Table) checkRow(i int) error {
	if len(t.vectors) == 0 {
		return ErrEmptyTable
	}
	if n := t.rowCount(); i < 0 || i >= n {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// Cell returns the cell at row i, header row included, and column r.
func (t *Table) Cell(i int, r ColumnRef) (Cell, error) {
	var c Cell
	err := t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		if err := t.checkRow(i); err != nil {
			return err
		}
		t.toRows()
		c = t.vectors[i][pos]
		return nil
	})
	return c, err
}

// SetCell replaces the cell at row i and column r with v.
func (t *Table) SetCell(i int, r ColumnRef, v any) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		if err := t.checkRow(i); err != nil {
			return err
		}
		t.toRows()
		t.vectors[i][pos] = NewCell(v)
		return nil
	})
}

// Row returns a copy of row i. Row 0 is the header row.
func (t *Table) Row(i int) (Vector, error) {
	var row Vector
	err := t.preserve(func() error {
		if err := t.checkRow(i); err != nil {
			return err
		}
		t.toRows()
		row = slices.Clone(t.vectors[i])
		return nil
	})
	return row, err
}

// RowIndex returns the index of the first row holding a cell equal to v, or
// -1.
func (t *Table) RowIndex(v any) int {
	idx := -1
	_ = t.preserve(func() error {
		t.toRows()
		for i, row := range t.vectors {
			if slices.ContainsFunc(row, func(c Cell) bool { return c.Equal(v) }) {
				idx = i
				return nil
			}
		}
		return nil
	})
	return idx
}

// AddRow appends a row. Shorter rows are padded; a longer row widens the
// table.
func (t *Table) AddRow(values ...any) error {
	return t.preserve(func() error {
		t.toRows()
		t.vectors = append(t.vectors, newVector(values))
		return nil
	})
}

// AddToRow writes values after the last non-empty cell of row i, widening
// the table when needed.
func (t *Table) AddToRow(i int, values ...any) error {
	return t.preserve(func() error {
		if err := t.checkRow(i); err != nil {
			return err
		}
		t.toRows()
		t.vectors[i] = append(trimEmpty(t.vectors[i]), newVector(values)...)
		return nil
	})
}

// RemoveRow deletes row i.
func (t *Table) RemoveRow(i int) error {
	return t.preserve(func() error {
		if err := t.checkRow(i); err != nil {
			return err
		}
		t.toRows()
		t.vectors = slices.Delete(t.vectors, i, i+1)
		return nil
	})
}

// Column returns a copy of column r, with its header first when withHeader
// is set.
func (t *Table) Column(r ColumnRef, withHeader bool) (Vector, error) {
	var col Vector
	err := t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		col = slices.Clone(t.vectors[pos])
		if !withHeader {
			col = col[1:]
		}
		return nil
	})
	return col, err
}

// ColumnFloats returns the numeric body of column r. Empty cells are
// skipped; other text fails.
func (t *Table) ColumnFloats(r ColumnRef) ([]float64, error) {
	col, err := t.Column(r, false)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(col))
	for i, c := range col {
		if c.IsEmpty() {
			continue
		}
		f, ok := Coerce(c, KindFloat).Float()
		if !ok {
			return nil, fmt.Errorf("column %s row %d: %q is not a number", r, i+1, c.String())
		}
		out = append(out, f)
	}
	return out, nil
}

// Headers returns the header row as text.
func (t *Table) Headers() ([]string, error) {
	var h []string
	err := t.preserve(func() error {
		if len(t.vectors) == 0 {
			return ErrEmptyTable
		}
		t.toRows()
		h = t.vectors[0].Strings()
		return nil
	})
	return h, err
}

// ColumnName returns the header of column r.
func (t *Table) ColumnName(r ColumnRef) (string, error) {
	var name string
	err := t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toRows()
		name = t.vectors[0][pos].String()
		return nil
	})
	return name, err
}

// AddColumn appends a column. values[0] is its header. Shorter columns are
// padded; a longer one lengthens the table.
func (t *Table) AddColumn(values ...any) error {
	return t.preserve(func() error {
		t.toColumns()
		t.vectors = append(t.vectors, newVector(values))
		return nil
	})
}

// NewColumn appends a column named name with every body cell set to fill.
func (t *Table) NewColumn(name string, fill any) error {
	return t.preserve(func() error {
		n := max(t.rowCount(), 1)
		t.toColumns()
		col := make(Vector, n)
		col[0] = NewCell(name)
		f := NewCell(fill)
		for i := 1; i < n; i++ {
			col[i] = f
		}
		t.vectors = append(t.vectors, col)
		return nil
	})
}

// SetColumn replaces the cells of column r. When withHeader is set values[0]
// becomes the new header, otherwise the header is kept and values fill the
// body.
func (t *Table) SetColumn(r ColumnRef, values []any, withHeader bool) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		col := newVector(values)
		if !withHeader {
			col = append(Vector{t.vectors[pos][0]}, col...)
		}
		t.vectors[pos] = col
		return nil
	})
}

// RemoveColumn deletes column r.
func (t *Table) RemoveColumn(r ColumnRef) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		t.vectors = slices.Delete(t.vectors, pos, pos+1)
		return nil
	})
}

// RenameColumn sets the header of column r.
func (t *Table) RenameColumn(r ColumnRef, name string) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		t.vectors[pos][0] = NewCell(name)
		return nil
	})
}

// NextEmptyRow returns the row following the last non-empty cell of column
// r. It equals RowCount when the last cell is filled.
func (t *Table) NextEmptyRow(r ColumnRef) (int, error) {
	var row int
	err := t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		row = len(trimEmpty(t.vectors[pos]))
		return nil
	})
	return row, err
}

// AddToColumn writes v into the first cell after the last non-empty cell of
// column r, adding a row when the column is full.
func (t *Table) AddToColumn(r ColumnRef, v any) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toColumns()
		col := trimEmpty(t.vectors[pos])
		if n := len(col); n < len(t.vectors[pos]) {
			t.vectors[pos][n] = NewCell(v)
			return nil
		}
		t.vectors[pos] = append(t.vectors[pos], NewCell(v))
		return nil
	})
}

// trimEmpty returns v without its trailing empty cells.
func trimEmpty(v Vector) Vector {
	n := len(v)
	for n > 0 && v[n-1].IsEmpty() {
		n--
	}
	return v[:n]
}

// Keep reduces the table to the given columns, in the given order. A column
// may be listed more than once.
func (t *Table) Keep(refs ...ColumnRef) error {
	return t.preserve(func() error {
		if len(refs) == 0 {
			return fmt.Errorf("%w: no columns to keep", ErrInvalidColumnReference)
		}
		positions := make([]int, len(refs))
		for i, r := range refs {
			pos, err := t.resolve(r)
			if err != nil {
				return err
			}
			positions[i] = pos
		}
		t.toColumns()
		kept := make([]Vector, len(positions))
		for i, pos := range positions {
			kept[i] = slices.Clone(t.vectors[pos])
		}
		t.vectors = kept
		return nil
	})
}

// Sort orders rows by column r, stable. With hasHeader the first row stays
// in place.
func (t *Table) Sort(r ColumnRef, reverse, hasHeader bool) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		t.toRows()
		body := t.vectors
		if hasHeader {
			body = body[1:]
		}
		slices.SortStableFunc(body, func(a, b Vector) int {
			if reverse {
				return b[pos].Compare(a[pos])
			}
			return a[pos].Compare(b[pos])
		})
		return nil
	})
}

// Placeholder describes one {n} marker of a FillColumn template. Its Pattern
// has "{0}" replaced by the current row number plus RowOffset or, when
// UseColumnLetter is set, by the letter of the filled column.
type Placeholder struct {
	Pattern         string
	RowOffset       int
	UseColumnLetter bool
}

// FillColumn sets every cell of column r to template. Marker {j} in template
// is replaced by the expansion of placeholders[j] for each row. With
// skipHeader the header row is kept.
//
// For example, filling column C with template "={0}*{1}" and placeholders
// {"$A{0}", 1, false} and {"{0}1", 0, true} writes "=$A2*C1" in the row at
// index 1, the first body row, matching spreadsheet row numbering.
func (t *Table) FillColumn(r ColumnRef, template string, skipHeader bool, placeholders ...Placeholder) error {
	return t.preserve(func() error {
		pos, err := t.resolve(r)
		if err != nil {
			return err
		}
		letter, err := ColumnLetter(pos)
		if err != nil {
			return err
		}
		t.toColumns()
		col := t.vectors[pos]
		start := 0
		if skipHeader {
			start = 1
		}
		for i := start; i < len(col); i++ {
			s := template
			for j, p := range placeholders {
				v := letter
				if !p.UseColumnLetter {
					v = strconv.Itoa(i + p.RowOffset)
				}
				ref := replaceMarker(p.Pattern, 0, v)
				s = replaceMarker(s, j, ref)
			}
			col[i] = NewCell(s)
		}
		return nil
	})
}

func replaceMarker(s string, j int, v string) string {
	return strings.ReplaceAll(s, "{"+strconv.Itoa(j)+"}", v)
}

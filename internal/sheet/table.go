package sheet

import (
	"fmt"
	"iter"
)

// Orientation tells whether the vectors of a table are rows or columns.
type Orientation int

const (
	// Rows means each vector is a row; vector 0 is the header row.
	Rows Orientation = iota
	// Columns means each vector is a column; cell 0 is its header.
	Columns
)

func (o Orientation) String() string {
	if o == Columns {
		return "columns"
	}
	return "rows"
}

// Table is an in-memory grid of cells.
type Table struct {
	vectors []Vector
	orient  Orientation
}

// New returns an empty table in row orientation.
func New() *Table {
	return &Table{}
}

// FromRows builds a table from text rows, coercing numeric fields. Ragged
// rows are padded.
func FromRows(rows [][]string) *Table {
	t := &Table{vectors: make([]Vector, len(rows))}
	for i, row := range rows {
		v := make(Vector, len(row))
		for j, s := range row {
			v[j] = ParseCell(s)
		}
		t.vectors[i] = v
	}
	t.refresh()
	return t
}

// Orientation returns the current orientation.
func (t *Table) Orientation() Orientation {
	return t.orient
}

// Len returns the number of vectors in the current orientation.
func (t *Table) Len() int {
	return len(t.vectors)
}

// Transpose swaps rows and columns and flips the orientation. Short vectors
// are padded with empty cells.
func (t *Table) Transpose() {
	t.transpose()
}

// ToRows switches to row orientation.
func (t *Table) ToRows() {
	t.toRows()
}

// ToColumns switches to column orientation.
func (t *Table) ToColumns() {
	t.toColumns()
}

// Refresh pads every vector to the longest length on both axes without
// changing the orientation.
func (t *Table) Refresh() {
	t.refresh()
}

func (t *Table) transpose() {
	maxLen := 0
	for _, v := range t.vectors {
		maxLen = max(maxLen, len(v))
	}
	out := make([]Vector, maxLen)
	for i := range maxLen {
		nv := make(Vector, len(t.vectors))
		for j, v := range t.vectors {
			if i < len(v) {
				nv[j] = v[i]
			}
		}
		out[i] = nv
	}
	t.vectors = out
	if t.orient == Rows {
		t.orient = Columns
	} else {
		t.orient = Rows
	}
}

func (t *Table) toRows() {
	if t.orient != Rows {
		t.transpose()
	}
}

func (t *Table) toColumns() {
	if t.orient != Columns {
		t.transpose()
	}
}

func (t *Table) refresh() {
	t.transpose()
	t.transpose()
}

// preserve runs fn, then normalizes t and restores the orientation it had
// on entry. The restore runs on every exit path, panics included.
func (t *Table) preserve(fn func() error) error {
	saved := t.orient
	defer func() {
		t.refresh()
		if t.orient != saved {
			t.transpose()
		}
	}()
	return fn()
}

// rowCount and columnCount assume a normalized table.
func (t *Table) rowCount() int {
	if t.orient == Rows {
		return len(t.vectors)
	}
	if len(t.vectors) == 0 {
		return 0
	}
	return len(t.vectors[0])
}

func (t *Table) columnCount() int {
	if t.orient == Columns {
		return len(t.vectors)
	}
	if len(t.vectors) == 0 {
		return 0
	}
	return len(t.vectors[0])
}

// RowCount returns the number of rows, header row included.
func (t *Table) RowCount() int {
	var n int
	_ = t.preserve(func() error {
		n = t.rowCount()
		return nil
	})
	return n
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	var n int
	_ = t.preserve(func() error {
		n = t.columnCount()
		return nil
	})
	return n
}

// ColumnIndex resolves r to a zero-based column position.
func (t *Table) ColumnIndex(r ColumnRef) (int, error) {
	var pos int
	err := t.preserve(func() error {
		var err error
		pos, err = t.resolve(r)
		return err
	})
	return pos, err
}

// Clone returns a deep copy. It is the only way to snapshot a table.
func (t *Table) Clone() *Table {
	c := &Table{vectors: make([]Vector, len(t.vectors)), orient: t.orient}
	for i, v := range t.vectors {
		c.vectors[i] = append(Vector(nil), v...)
	}
	return c
}

// SetData replaces the content of t. It accepts a *Table, which is copied,
// or rows given as [][]Cell, []Vector, [][]string or [][]any. Strings are
// stored as text without numeric coercion.
func (t *Table) SetData(data any) error {
	var rows []Vector
	switch d := data.(type) {
	case *Table:
		c := d.Clone()
		t.vectors, t.orient = c.vectors, c.orient
		return nil
	case []Vector:
		rows = make([]Vector, len(d))
		for i, v := range d {
			rows[i] = append(Vector(nil), v...)
		}
	case [][]Cell:
		rows = make([]Vector, len(d))
		for i, v := range d {
			rows[i] = append(Vector(nil), v...)
		}
	case [][]string:
		rows = make([]Vector, len(d))
		for i, v := range d {
			rows[i] = make(Vector, len(v))
			for j, s := range v {
				rows[i][j] = Cell{s: s}
			}
		}
	case [][]any:
		rows = make([]Vector, len(d))
		for i, v := range d {
			rows[i] = newVector(v)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedInputType, data)
	}
	t.vectors, t.orient = rows, Rows
	t.refresh()
	return nil
}

// Rows returns an iterator over copies of the rows, header row first. Each
// traversal snapshots the table when it starts.
func (t *Table) Rows() iter.Seq2[int, Vector] {
	return func(yield func(int, Vector) bool) {
		snap := t.Clone()
		snap.toRows()
		for i, v := range snap.vectors {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Columns returns an iterator over copies of the columns, each starting with
// its header. Each traversal snapshots the table when it starts.
func (t *Table) Columns() iter.Seq2[int, Vector] {
	return func(yield func(int, Vector) bool) {
		snap := t.Clone()
		snap.toColumns()
		for i, v := range snap.vectors {
			if !yield(i, v) {
				return
			}
		}
	}
}

// EachRow calls fn with every row in order, header row first. fn may replace
// cells of row in place; the row length is fixed. Iteration stops at the
// first error, which is returned.
func (t *Table) EachRow(fn func(i int, row Vector) error) error {
	return t.preserve(func() error {
		if len(t.vectors) == 0 {
			return ErrEmptyTable
		}
		t.toRows()
		for i, row := range t.vectors {
			if err := fn(i, row); err != nil {
				return err
			}
		}
		return nil
	})
}

package sheet

import (
	"cmp"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the recognized kind of a cell value.
type Kind int

const (
	// KindString holds text. The zero Cell is an empty string.
	KindString Kind = iota
	// KindInt holds an int64.
	KindInt
	// KindFloat holds a float64.
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Cell is a single immutable scalar with its kind.
//
// Cells are values; setting a table cell replaces it.
type Cell struct {
	s    string
	i    int64
	f    float64
	kind Kind
}

// NewCell returns a cell holding v.
//
// Strings stay text as given; they are not coerced. Integers of any width
// become KindInt, floats become KindFloat and booleans become 0 or 1. Other
// values are stored as their fmt representation.
func NewCell(v any) Cell {
	switch t := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return t
	case string:
		return Cell{s: t}
	case int:
		return Cell{i: int64(t), kind: KindInt}
	case int8:
		return Cell{i: int64(t), kind: KindInt}
	case int16:
		return Cell{i: int64(t), kind: KindInt}
	case int32:
		return Cell{i: int64(t), kind: KindInt}
	case int64:
		return Cell{i: t, kind: KindInt}
	case uint8:
		return Cell{i: int64(t), kind: KindInt}
	case uint16:
		return Cell{i: int64(t), kind: KindInt}
	case uint32:
		return Cell{i: int64(t), kind: KindInt}
	case uint:
		if uint64(t) <= math.MaxInt64 {
			return Cell{i: int64(t), kind: KindInt}
		}
		return Cell{f: float64(t), kind: KindFloat}
	case uint64:
		if t <= math.MaxInt64 {
			return Cell{i: int64(t), kind: KindInt}
		}
		return Cell{f: float64(t), kind: KindFloat}
	case float32:
		return Cell{f: float64(t), kind: KindFloat}
	case float64:
		return Cell{f: t, kind: KindFloat}
	case bool:
		if t {
			return Cell{i: 1, kind: KindInt}
		}
		return Cell{kind: KindInt}
	case fmt.Stringer:
		return Cell{s: t.String()}
	default:
		return Cell{s: fmt.Sprint(t)}
	}
}

// Kind returns the kind of the value held.
func (c Cell) Kind() Kind {
	return c.kind
}

// Value returns the held value as a string, int64 or float64.
func (c Cell) Value() any {
	switch c.kind {
	case KindInt:
		return c.i
	case KindFloat:
		return c.f
	default:
		return c.s
	}
}

// String returns the textual form written to files.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return formatFloat(c.f)
	default:
		return c.s
	}
}

// IsEmpty reports whether the cell is the empty string.
func (c Cell) IsEmpty() bool {
	return c.kind == KindString && c.s == ""
}

// IsNumber reports whether the cell holds an int or a float.
func (c Cell) IsNumber() bool {
	return c.kind == KindInt || c.kind == KindFloat
}

// Float returns the numeric value as a float64.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	default:
		return 0, false
	}
}

// Int returns the numeric value truncated to an int64.
func (c Cell) Int() (int64, bool) {
	switch c.kind {
	case KindInt:
		return c.i, true
	case KindFloat:
		return int64(c.f), true
	default:
		return 0, false
	}
}

// Len returns the rune count of text cells and the truncated value of
// numeric cells.
func (c Cell) Len() int {
	switch c.kind {
	case KindInt:
		return int(c.i)
	case KindFloat:
		return int(c.f)
	default:
		return utf8.RuneCountInString(c.s)
	}
}

// Equal reports whether the cell holds v. Numbers compare by value across
// int and float; text never equals a number.
func (c Cell) Equal(v any) bool {
	o := NewCell(v)
	if c.IsNumber() && o.IsNumber() {
		if c.kind == KindInt && o.kind == KindInt {
			return c.i == o.i
		}
		a, _ := c.Float()
		b, _ := o.Float()
		return a == b
	}
	if c.kind != o.kind {
		return false
	}
	return c.s == o.s
}

// Compare orders cells: numbers by value before text, text lexically.
func (c Cell) Compare(o Cell) int {
	cn, on := c.IsNumber(), o.IsNumber()
	switch {
	case cn && on:
		if c.kind == KindInt && o.kind == KindInt {
			return cmp.Compare(c.i, o.i)
		}
		a, _ := c.Float()
		b, _ := o.Float()
		return cmp.Compare(a, b)
	case cn:
		return -1
	case on:
		return 1
	default:
		return strings.Compare(c.s, o.s)
	}
}

// Add sums numbers or concatenates text.
func (c Cell) Add(v any) (Cell, error) {
	o := NewCell(v)
	if c.kind == KindString {
		if o.kind != KindString {
			return Cell{}, fmt.Errorf("%w: %s + %s", ErrKindMismatch, c.kind, o.kind)
		}
		return Cell{s: c.s + o.s}, nil
	}
	return c.arith(o, "+", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}

// Sub subtracts numbers. For text it removes every occurrence of v.
func (c Cell) Sub(v any) (Cell, error) {
	o := NewCell(v)
	if c.kind == KindString {
		return Cell{s: strings.ReplaceAll(c.s, o.String(), "")}, nil
	}
	return c.arith(o, "-", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
}

// Mul multiplies numbers. For text it repeats the string v times, where v
// must be a non-negative integer.
func (c Cell) Mul(v any) (Cell, error) {
	o := NewCell(v)
	if c.kind == KindString {
		if o.kind != KindInt || o.i < 0 {
			return Cell{}, fmt.Errorf("%w: cannot repeat text %s times", ErrKindMismatch, o)
		}
		return Cell{s: strings.Repeat(c.s, int(o.i))}, nil
	}
	return c.arith(o, "*", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
}

// Div divides numbers; integer division truncates. For text it removes every
// character that appears in v.
func (c Cell) Div(v any) (Cell, error) {
	o := NewCell(v)
	if c.kind == KindString {
		drop := o.String()
		return Cell{s: strings.Map(func(r rune) rune {
			if strings.ContainsRune(drop, r) {
				return -1
			}
			return r
		}, c.s)}, nil
	}
	if f, ok := o.Float(); ok && f == 0 {
		return Cell{}, ErrDivisionByZero
	}
	return c.arith(o, "/", func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })
}

func (c Cell) arith(o Cell, op string, fi func(a, b int64) int64, ff func(a, b float64) float64) (Cell, error) {
	if !o.IsNumber() {
		return Cell{}, fmt.Errorf("%w: %s %s %s", ErrKindMismatch, c.kind, op, o.kind)
	}
	if c.kind == KindInt && o.kind == KindInt {
		return Cell{i: fi(c.i, o.i), kind: KindInt}, nil
	}
	a, _ := c.Float()
	b, _ := o.Float()
	return Cell{f: ff(a, b), kind: KindFloat}, nil
}

// Vector is an ordered row or column of cells.
type Vector []Cell

// Strings returns the textual form of every cell.
func (v Vector) Strings() []string {
	out := make([]string, len(v))
	for i, c := range v {
		out[i] = c.String()
	}
	return out
}

func newVector(values []any) Vector {
	v := make(Vector, len(values))
	for i, x := range values {
		v[i] = NewCell(x)
	}
	return v
}

package sheet

import (
	"math"
	"strconv"
)

// Type coercion on read follows SQLite NUMERIC affinity, restricted so that
// the textual form never changes:
//
//	"42"   → int64 42
//	"3.5"  → float64 3.5
//	"007"  → "007"  (would print back as 7)
//	"3.50" → "3.50" (would print back as 3.5)
//	"1e3"  → "1e3"
//	"abc"  → "abc"
//
// See https://www.sqlite.org/datatype3.html for the affinity rules.

// ParseCell returns the cell for a field read from delimited text.
func ParseCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if strconv.FormatInt(i, 10) == s {
			return Cell{i: i, kind: KindInt}
		}
		return Cell{s: s}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if formatFloat(f) == s {
			return Cell{f: f, kind: KindFloat}
		}
	}
	return Cell{s: s}
}

// Coerce converts c to kind k when possible. Text that is not numeric stays
// text, like a non-numeric value in an INTEGER or REAL column.
func Coerce(c Cell, k Kind) Cell {
	switch k {
	case KindString:
		return coerceToText(c)
	case KindInt:
		return coerceToInteger(c)
	case KindFloat:
		return coerceToReal(c)
	default:
		return c
	}
}

func coerceToText(c Cell) Cell {
	if c.kind == KindString {
		return c
	}
	return Cell{s: c.String()}
}

func coerceToInteger(c Cell) Cell {
	switch c.kind {
	case KindInt:
		return c
	case KindFloat:
		return Cell{i: int64(c.f), kind: KindInt}
	default:
		if i, err := strconv.ParseInt(c.s, 10, 64); err == nil {
			return Cell{i: i, kind: KindInt}
		}
		// Parse as float and truncate.
		if f, err := strconv.ParseFloat(c.s, 64); err == nil {
			return Cell{i: int64(f), kind: KindInt}
		}
		return c
	}
}

func coerceToReal(c Cell) Cell {
	switch c.kind {
	case KindFloat:
		return c
	case KindInt:
		return Cell{f: float64(c.i), kind: KindFloat}
	default:
		if f, err := strconv.ParseFloat(c.s, 64); err == nil {
			return Cell{f: f, kind: KindFloat}
		}
		return c
	}
}

// formatFloat formats without unnecessary decimal places.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

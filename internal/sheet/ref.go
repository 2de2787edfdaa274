package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const columnAlpha = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type refKind int

const (
	refPosition refKind = iota
	refLetter
	refName
)

// ColumnRef addresses a column by position, spreadsheet letter or header
// name. The zero value is position 0.
type ColumnRef struct {
	kind refKind
	pos  int
	text string
}

// Position references the column at zero-based index i.
func Position(i int) ColumnRef {
	return ColumnRef{kind: refPosition, pos: i}
}

// Letter references a column by spreadsheet code, e.g. "A" or "AB".
func Letter(code string) ColumnRef {
	return ColumnRef{kind: refLetter, text: code}
}

// Name references a column by its exact header text.
func Name(name string) ColumnRef {
	return ColumnRef{kind: refName, text: name}
}

// ParseColumnRef interprets untyped user input:
//   - integers and floats are positions, floats truncated;
//   - a single letter, any case, is a letter code;
//   - two or more upper-case letters A-Z are a letter code;
//   - anything else is a header name.
//
// Headers that look like upper-case letter codes, such as "ID", must be
// referenced with Name.
func ParseColumnRef(s string) ColumnRef {
	t := strings.TrimSpace(s)
	if i, err := strconv.Atoi(t); err == nil {
		return Position(i)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Position(int(f))
	}
	if len(t) == 1 && strings.ContainsRune(columnAlpha, rune(strings.ToUpper(t)[0])) {
		return Letter(t)
	}
	if len(t) > 1 && strings.Trim(t, columnAlpha) == "" {
		return Letter(t)
	}
	return Name(s)
}

// RefOf converts an int, float or string into a ColumnRef. Strings go
// through ParseColumnRef.
func RefOf(v any) (ColumnRef, error) {
	switch t := v.(type) {
	case ColumnRef:
		return t, nil
	case int:
		return Position(t), nil
	case int64:
		return Position(int(t)), nil
	case float64:
		return Position(int(t)), nil
	case string:
		return ParseColumnRef(t), nil
	default:
		return ColumnRef{}, fmt.Errorf("%w: %T", ErrInvalidColumnReference, v)
	}
}

func (r ColumnRef) String() string {
	switch r.kind {
	case refLetter:
		return strings.ToUpper(r.text)
	case refName:
		return strconv.Quote(r.text)
	default:
		return strconv.Itoa(r.pos)
	}
}

// LetterIndex decodes a spreadsheet column code into a zero-based position
// using bijective base-26: A is 0, Z is 25, AA is 26.
func LetterIndex(code string) (int, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: empty column code", ErrInvalidColumnReference)
	}
	value := 0
	for _, r := range strings.ToUpper(code) {
		i := strings.IndexRune(columnAlpha, r)
		if i < 0 {
			return 0, fmt.Errorf("%w: %q is not a column code", ErrInvalidColumnReference, code)
		}
		if value > (math.MaxInt-26)/26 {
			return 0, fmt.Errorf("%w: column code %q overflows", ErrInvalidColumnReference, code)
		}
		value = value*26 + i + 1
	}
	return value - 1, nil
}

// ColumnLetter encodes a zero-based position as a spreadsheet column code.
// It is the inverse of LetterIndex.
func ColumnLetter(pos int) (string, error) {
	if pos < 0 {
		return "", fmt.Errorf("%w: column %d", ErrIndexOutOfRange, pos)
	}
	var b []byte
	for n := pos + 1; n > 0; n = (n - 1) / 26 {
		b = append(b, columnAlpha[(n-1)%26])
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b), nil
}

// resolve returns the position of r. It may leave t in row orientation; the
// caller runs inside preserve.
func (t *Table) resolve(r ColumnRef) (int, error) {
	if len(t.vectors) == 0 {
		return 0, ErrEmptyTable
	}
	var pos int
	switch r.kind {
	case refPosition:
		pos = r.pos
		if pos < 0 || pos >= t.columnCount() {
			return 0, fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, pos, t.columnCount())
		}
		return pos, nil
	case refLetter:
		var err error
		if pos, err = LetterIndex(r.text); err != nil {
			return 0, err
		}
	case refName:
		t.toRows()
		pos = -1
		for i, c := range t.vectors[0] {
			if c.String() == r.text {
				pos = i
				break
			}
		}
	}
	if pos < 0 || pos >= t.columnCount() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidColumnReference, r)
	}
	return pos, nil
}

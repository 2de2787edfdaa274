package sheet

import "errors"

var (
	// ErrInvalidColumnReference is returned when a header name or letter code
	// does not resolve to an existing column.
	ErrInvalidColumnReference = errors.New("invalid column reference")
	// ErrIndexOutOfRange is returned when a row, column or cell position is
	// outside the table bounds.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrEmptyTable is returned by reads on a table without rows.
	ErrEmptyTable = errors.New("table is empty")
	// ErrUnsupportedInputType is returned by SetData for unknown data shapes.
	ErrUnsupportedInputType = errors.New("unsupported input type")
	// ErrKindMismatch is returned by cell arithmetic on incompatible kinds.
	ErrKindMismatch = errors.New("incompatible cell kinds")
	// ErrDivisionByZero is returned when a numeric cell is divided by zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Package sheet provides an in-memory, dual-orientation table of cells loaded
// from and saved to delimited text.
//
// # Overview
//
// [Table] stores an ordered list of vectors. Depending on its [Orientation]
// each vector is either a row or a column; when the table holds columns, the
// first cell of every vector is that column's header. Operations flip the
// orientation as they need and restore the caller's orientation on return,
// including when they fail.
//
// # Normalization
//
// Vectors may become ragged while a structural edit is in progress. Every
// edit ends with [Table.Refresh], which transposes twice: each transpose pads
// short vectors with empty cells, so after two flips both axes are uniform
// and the orientation is unchanged.
//
// # Column references
//
// A [ColumnRef] addresses a column by zero-based position, by spreadsheet
// letter (A, B, ..., Z, AA, ...) or by header name. Letters use bijective
// base-26 and map to zero-based positions: A is 0, Z is 25, AA is 26.
//
// # File format
//
// One record per line, fields separated by a delimiter (tab by default). A
// first line whose first field is "columnName" is dropped. Fields that read
// back exactly as an integer or a float become numeric cells; everything else
// stays text, so loading then saving reproduces the cell text.
//
// A Table is not safe for concurrent use.
package sheet

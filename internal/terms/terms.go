// Package terms ranks the terms a rules table associates with a code and tags
// the rows of a data table where those terms occur.
//
// A rules row contributes to code C when its code cell, upper-cased, contains
// C followed by the sufficiency suffix ("-S" or "-I"), both taken as given. A data row is scanned
// for C when its code cell equals C. The term column has the same reference in
// both tables; in the data table the columns on its left and right hold the
// text searched for terms.
package terms

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabastillas/sheetsearch/internal/excerpt"
	"github.com/gabastillas/sheetsearch/internal/sheet"
)

// StopWords reports whether a word is excluded from rankings.
type StopWords interface {
	Contains(word string) bool
}

// Classification tells on which side of the term column a ranked term was
// found.
type Classification int

const (
	// NotFound means no ranked term occurs in the row.
	NotFound Classification = iota
	// FoundLeft means the term occurs in the left text only.
	FoundLeft
	// FoundRight means the term occurs in the right text only.
	FoundRight
	// FoundBoth means the term occurs on both sides.
	FoundBoth
)

// String returns the marker written to the result column.
func (c Classification) String() string {
	switch c {
	case FoundLeft:
		return "Y-L"
	case FoundRight:
		return "Y-R"
	case FoundBoth:
		return "Y-LR"
	default:
		return "N"
	}
}

func classify(inLeft, inRight bool) Classification {
	switch {
	case inLeft && inRight:
		return FoundBoth
	case inLeft:
		return FoundLeft
	case inRight:
		return FoundRight
	default:
		return NotFound
	}
}

// TermRecord is a term and the number of times the rules mention it.
type TermRecord struct {
	Term      string
	Frequency int
}

// Options configures a Matcher. Start from DefaultOptions.
type Options struct {
	// Suffix is appended to the code when matching rules rows.
	Suffix string
	// Scope is the number of runes kept on each side of a match in excerpts.
	Scope int
	// DataCodeColumn holds the code of each data row.
	DataCodeColumn sheet.ColumnRef
	// RulesCodeColumn holds the code and suffix of each rules row.
	RulesCodeColumn sheet.ColumnRef

	// Output column headers in the data table. Missing columns are appended.
	ResultColumn  string
	RankColumn    string
	TermColumn    string
	ExcerptColumn string
}

// DefaultOptions returns the options matching the usual rules layout: codes
// in column A of the data and column C of the rules.
func DefaultOptions() Options {
	return Options{
		Suffix:          "-S",
		Scope:           excerpt.DefaultScope,
		DataCodeColumn:  sheet.Position(0),
		RulesCodeColumn: sheet.Letter("C"),
		ResultColumn:    "Results",
		RankColumn:      "Rank",
		TermColumn:      "Matched",
		ExcerptColumn:   "Excerpt",
	}
}

// Match is the outcome for one scanned data row.
type Match struct {
	// Row is the data row index; row 0 is the header.
	Row   int
	Class Classification
	// Term is the first ranked term found, empty when Class is NotFound.
	Term string
	// Rank is the zero-based position of Term in the ranking, or -1.
	Rank int
	// Position is the rune offset of Term in the joined text, or -1.
	Position int
	Excerpt  string
}

// Matcher reads Rules to rank terms and writes results into Data.
type Matcher struct {
	Data    *sheet.Table
	Rules   *sheet.Table
	Stop    StopWords
	Options Options
}

// NewMatcher returns a Matcher using DefaultOptions. stop may be nil.
func NewMatcher(data, rules *sheet.Table, stop StopWords) *Matcher {
	return &Matcher{Data: data, Rules: rules, Stop: stop, Options: DefaultOptions()}
}

// PrepareTerms ranks the words of the term column over every rules row
// matching code and suffix, most frequent first. Ties keep the order in which
// the words were first seen. An empty suffix uses Options.Suffix.
func (m *Matcher) PrepareTerms(code string, termCol sheet.ColumnRef, suffix string) ([]TermRecord, error) {
	if suffix == "" {
		suffix = m.Options.Suffix
	}
	codePos, err := m.Rules.ColumnIndex(m.Options.RulesCodeColumn)
	if err != nil {
		return nil, fmt.Errorf("rules code column: %w", err)
	}
	termPos, err := m.Rules.ColumnIndex(termCol)
	if err != nil {
		return nil, fmt.Errorf("rules term column: %w", err)
	}
	// Only the cell is upper-cased; code is matched as given, like the exact
	// match on the data side.
	key := code + suffix
	var words []string
	err = m.Rules.EachRow(func(_ int, row sheet.Vector) error {
		if strings.Contains(strings.ToUpper(row[codePos].String()), key) && !row[termPos].IsEmpty() {
			words = append(words, strings.Fields(strings.ToLower(row[termPos].String()))...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(words))
	var out []TermRecord
	for _, w := range words {
		if _, seen := counts[w]; !seen && (m.Stop == nil || !m.Stop.Contains(w)) {
			out = append(out, TermRecord{Term: w})
		}
		counts[w]++
	}
	for i := range out {
		out[i].Frequency = counts[out[i].Term]
	}
	slices.SortStableFunc(out, func(a, b TermRecord) int {
		return b.Frequency - a.Frequency
	})
	slog.Debug("Prepared terms", "code", code, "suffix", suffix, "words", len(words), "terms", len(out))
	return out, nil
}

// SuperFind tags every data row whose code equals code. For each row the
// ranked terms are tried in order and the first one found in the left or
// right text wins. The classification, term, rank and excerpt are written
// to the output columns; rows without a hit get "N" and empty cells. Rows of
// other codes are left untouched.
func (m *Matcher) SuperFind(code string, termCol sheet.ColumnRef) ([]Match, error) {
	ranked, err := m.PrepareTerms(code, termCol, m.Options.Suffix)
	if err != nil {
		return nil, err
	}
	return m.Tag(code, termCol, ranked)
}

// Tag is SuperFind with a ranking computed beforehand by PrepareTerms.
func (m *Matcher) Tag(code string, termCol sheet.ColumnRef, ranked []TermRecord) ([]Match, error) {
	termPos, err := m.Data.ColumnIndex(termCol)
	if err != nil {
		return nil, fmt.Errorf("data term column: %w", err)
	}
	left, right := termPos-1, termPos+1
	if left < 0 || right >= m.Data.ColumnCount() {
		return nil, fmt.Errorf("%w: term column %s needs a column on each side", sheet.ErrIndexOutOfRange, termCol)
	}
	codePos, err := m.Data.ColumnIndex(m.Options.DataCodeColumn)
	if err != nil {
		return nil, fmt.Errorf("data code column: %w", err)
	}
	out, err := m.outputColumns()
	if err != nil {
		return nil, err
	}

	var matches []Match
	err = m.Data.EachRow(func(i int, row sheet.Vector) error {
		if i == 0 || row[codePos].String() != code {
			return nil
		}
		match := m.scan(i, row, ranked, left, right)
		row[out.result] = sheet.NewCell(match.Class.String())
		if match.Class == NotFound {
			row[out.rank] = sheet.Cell{}
			row[out.term] = sheet.Cell{}
			row[out.excerpt] = sheet.Cell{}
		} else {
			row[out.rank] = sheet.NewCell(match.Rank)
			row[out.term] = sheet.NewCell(match.Term)
			row[out.excerpt] = sheet.NewCell(match.Excerpt)
		}
		matches = append(matches, match)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("Scanned rows", "code", code, "terms", len(ranked), "rows", len(matches))
	return matches, nil
}

func (m *Matcher) scan(i int, row sheet.Vector, ranked []TermRecord, left, right int) Match {
	leftText := strings.ToLower(row[left].String())
	rightText := strings.ToLower(row[right].String())
	for rank, tr := range ranked {
		class := classify(strings.Contains(leftText, tr.Term), strings.Contains(rightText, tr.Term))
		if class == NotFound {
			continue
		}
		match := Match{Row: i, Class: class, Term: tr.Term, Rank: rank, Position: -1}
		line := joinText(row[left : right+1])
		from := 0
		if class == FoundRight {
			// Skip the left and keyword text so the hit is the one in the
			// right cell.
			from = min(len(joinText(slices.Concat(row[left:right], sheet.Vector{{}}))), len(line))
		}
		if idx := strings.Index(line[from:], tr.Term); idx >= 0 {
			idx += from
			match.Position = utf8.RuneCountInString(line[:idx])
			match.Excerpt = excerpt.ExtractMarked(line, match.Position, m.Options.Scope, utf8.RuneCountInString(tr.Term))
		}
		return match
	}
	return Match{Row: i, Class: NotFound, Rank: -1, Position: -1}
}

// joinText lower-cases the cells joined by spaces with "|" removed and
// double spaces collapsed once. The result for a prefix of cells followed by
// an empty cell is a prefix of the result for all the cells.
func joinText(cells sheet.Vector) string {
	s := strings.ToLower(strings.Join(cells.Strings(), " "))
	s = strings.ReplaceAll(s, "|", "")
	return strings.ReplaceAll(s, "  ", " ")
}

type outputPositions struct {
	result, rank, term, excerpt int
}

// outputColumns resolves the output columns by header, appending the ones
// that are missing.
func (m *Matcher) outputColumns() (outputPositions, error) {
	var p outputPositions
	for _, c := range []struct {
		name string
		pos  *int
	}{
		{m.Options.ResultColumn, &p.result},
		{m.Options.RankColumn, &p.rank},
		{m.Options.TermColumn, &p.term},
		{m.Options.ExcerptColumn, &p.excerpt},
	} {
		if c.name == "" {
			return p, fmt.Errorf("%w: empty output column name", sheet.ErrInvalidColumnReference)
		}
		pos, err := m.Data.ColumnIndex(sheet.Name(c.name))
		if errors.Is(err, sheet.ErrInvalidColumnReference) {
			if err = m.Data.NewColumn(c.name, ""); err != nil {
				return p, err
			}
			pos, err = m.Data.ColumnIndex(sheet.Name(c.name))
		}
		if err != nil {
			return p, fmt.Errorf("output column %q: %w", c.name, err)
		}
		*c.pos = pos
	}
	return p, nil
}

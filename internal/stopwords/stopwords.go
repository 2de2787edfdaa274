// Package stopwords holds the common words dropped from term rankings.
package stopwords

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

//go:embed english.txt
var english string

// Set is a set of lower-case words. The zero value is an empty set.
type Set map[string]struct{}

// New returns a set holding words, lower-cased.
func New(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s.Add(w)
	}
	return s
}

// Add inserts w, lower-cased. Blank words are ignored.
func (s Set) Add(w string) {
	if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
		s[w] = struct{}{}
	}
}

// Contains reports whether w, compared case-insensitively, is in the set.
func (s Set) Contains(w string) bool {
	_, ok := s[strings.ToLower(w)]
	return ok
}

// Words returns the sorted content of the set.
func (s Set) Words() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Parse reads whitespace-separated words.
func Parse(r io.Reader) (Set, error) {
	s := Set{}
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		s.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the word list stored at path.
func Load(path string) (Set, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open stop words %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read stop words %s: %w", path, err)
	}
	slog.Debug("Loaded stop words", "path", path, "words", len(s))
	return s, nil
}

var defaultSet = sync.OnceValue(func() Set {
	s, _ := Parse(strings.NewReader(english))
	return s
})

// Default returns a copy of the built-in English list.
func Default() Set {
	d := defaultSet()
	s := make(Set, len(d))
	for w := range d {
		s[w] = struct{}{}
	}
	return s
}

package jsonldb

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type testRow struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func ids(tbl *Table[testRow]) []int {
	var out []int
	for _, r := range tbl.All() {
		out = append(out, r.ID)
	}
	return out
}

func TestTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "test.jsonl")
	tbl, err := Open[testRow](path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	for i, name := range []string{"One", "Two", "Three"} {
		if err := tbl.Append(testRow{ID: i + 1, Name: name}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if got := ids(tbl); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("All() = %v", got)
	}

	t.Run("reload", func(t *testing.T) {
		tbl2, err := Open[testRow](path)
		if err != nil {
			t.Fatal(err)
		}
		if got := ids(tbl2); !slices.Equal(got, []int{1, 2, 3}) {
			t.Errorf("reloaded = %v", got)
		}
	})

	t.Run("last", func(t *testing.T) {
		tests := []struct {
			n    int
			want []int
		}{
			{0, []int{}},
			{2, []int{2, 3}},
			{5, []int{1, 2, 3}},
			{-1, []int{1, 2, 3}},
		}
		for _, tt := range tests {
			var got []int
			for _, r := range tbl.Last(tt.n) {
				got = append(got, r.ID)
			}
			if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
				t.Errorf("Last(%d) = %v, want %v", tt.n, got, tt.want)
			}
		}
	})

	t.Run("trim", func(t *testing.T) {
		n, err := tbl.Trim(5)
		if err != nil || n != 0 {
			t.Errorf("Trim(5) = %d, %v", n, err)
		}
		n, err = tbl.Trim(1)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("Trim(1) = %d, want 2", n)
		}
		tbl2, err := Open[testRow](path)
		if err != nil {
			t.Fatal(err)
		}
		if got := ids(tbl2); !slices.Equal(got, []int{3}) {
			t.Errorf("after trim = %v", got)
		}
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Errorf("temporary file left behind: %v", err)
		}
	})
}

func TestOpenErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{\"id\":1}\n\nnot json\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Open[testRow](path)
	if err == nil || !strings.Contains(err.Error(), "bad.jsonl:3") {
		t.Errorf("Open() error = %v, want line 3", err)
	}
}

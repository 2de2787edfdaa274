package sheet

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		delim string
		want  [][]string
	}{
		{
			name: "tab",
			in:   "Code\tTerm\nCH001\tcat\n",
			want: [][]string{{"Code", "Term"}, {"CH001", "cat"}},
		},
		{
			name: "sentinel line dropped",
			in:   "columnName\tx\nCode\tTerm\nCH001\tcat\n",
			want: [][]string{{"Code", "Term"}, {"CH001", "cat"}},
		},
		{
			name: "sentinel only on first line",
			in:   "Code\tTerm\ncolumnName\tx\n",
			want: [][]string{{"Code", "Term"}, {"columnName", "x"}},
		},
		{
			name: "ragged rows padded",
			in:   "a\tb\tc\nd\n",
			want: [][]string{{"a", "b", "c"}, {"d", "", ""}},
		},
		{
			name:  "crlf and blank lines",
			in:    "a,b\r\n\r\n\n1,2\r\n",
			delim: ",",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name: "single column keeps empty rows",
			in:   "\n\nName\n\nb\n\n",
			want: [][]string{{"Name"}, {""}, {"b"}, {""}},
		},
		{
			name:  "no trailing newline",
			in:    "a|b",
			delim: "|",
			want:  [][]string{{"a", "b"}},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Parse(strings.NewReader(tt.in), tt.delim)
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if tbl.Orientation() != Rows {
				t.Errorf("Orientation() = %v, want rows", tbl.Orientation())
			}
			if got := rowsOf(t, tbl); !equalGrid(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("numeric fields", func(t *testing.T) {
		tbl, err := Parse(strings.NewReader("n\tf\ts\n42\t2.5\t007\n"), "")
		if err != nil {
			t.Fatal(err)
		}
		row, _ := tbl.Row(1)
		kinds := []Kind{KindInt, KindFloat, KindString}
		for i, k := range kinds {
			if row[i].Kind() != k {
				t.Errorf("cell %d kind = %v, want %v", i, row[i].Kind(), k)
			}
		}
	})

	t.Run("single column round trip", func(t *testing.T) {
		rows := [][]string{{"Name"}, {""}, {"b"}}
		tbl, err := Parse(strings.NewReader(FromRows(rows).Format("")), "")
		if err != nil {
			t.Fatal(err)
		}
		if got := rowsOf(t, tbl); !equalGrid(got, rows) {
			t.Errorf("Parse(Format()) = %v, want %v", got, rows)
		}
	})

	t.Run("text round trip", func(t *testing.T) {
		in := "Code\tTerm\tScore\nCH001\tthe cat\t3.50\nCH002\t\t-1\n"
		tbl, err := Parse(strings.NewReader(in), "")
		if err != nil {
			t.Fatal(err)
		}
		if got := tbl.Format(""); got != in {
			t.Errorf("Format() = %q, want %q", got, in)
		}
	})
}

func TestLoadSave(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.txt")
		src := FromRows([][]string{{"Code", "Term"}, {"CH001", "cat"}, {"CH002", "12"}})
		src.ToColumns()
		if err := src.Save(path, "", Overwrite); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		if src.Orientation() != Columns {
			t.Errorf("Orientation() = %v after Save, want columns", src.Orientation())
		}
		got, err := Load(path, "")
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if !equalGrid(rowsOf(t, got), rowsOf(t, src)) {
			t.Errorf("Load() = %v, want %v", rowsOf(t, got), rowsOf(t, src))
		}
	})

	t.Run("overwrite truncates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		if err := os.WriteFile(path, []byte("old,content,that,is,long\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := FromRows([][]string{{"a", "b"}}).Save(path, ",", Overwrite); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != "a,b\n" {
			t.Errorf("file = %q, want %q", b, "a,b\n")
		}
	})

	t.Run("append", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		tbl := FromRows([][]string{{"a", "b"}})
		for range 2 {
			if err := tbl.Save(path, "", Append); err != nil {
				t.Fatal(err)
			}
		}
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if want := "a\tb\na\tb\n"; string(b) != want {
			t.Errorf("file = %q, want %q", b, want)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), "")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "out.txt")
		if err := FromRows([][]string{{"a"}}).Save(path, "", Overwrite); err == nil {
			t.Error("Save() into a missing directory succeeded")
		}
	})
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		in      string
		want    WriteMode
		wantErr bool
	}{
		{"", Overwrite, false},
		{"w", Overwrite, false},
		{"Overwrite", Overwrite, false},
		{"a", Append, false},
		{" append ", Append, false},
		{"x", Overwrite, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWriteMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWriteMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWriteMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

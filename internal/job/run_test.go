package job

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/gabastillas/sheetsearch/internal/sheet"
	"github.com/maruel/ksid"
)

type recorder struct {
	started  int
	codes    []CodeStats
	warnings []string
	done     *Result
}

func (r *recorder) OnStart(_ ksid.ID, codes int)  { r.started = codes }
func (r *recorder) OnCode(_ int, stats CodeStats) { r.codes = append(r.codes, stats) }
func (r *recorder) OnWarning(msg string)          { r.warnings = append(r.warnings, msg) }
func (r *recorder) OnComplete(res *Result)        { r.done = res }

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

// setup writes a job with its data and rules tables into a temporary
// directory and returns the parsed job.
func setup(t *testing.T, extra string) *Job {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "data.txt"),
		"columnName\tx",
		"Code\tB\tC\tLeft\tKeyword\tRight",
		"CH001\t\t\tsevere chest pain\tpain\tno fever",
		"CH001\t\t\tfever at night\tfever\tand fever again",
		"CH002\t\t\tcough\tcough\tnone",
		"CH001\t\t\tnothing\tx\tnothing",
	)
	writeFile(t, filepath.Join(dir, "rules.txt"),
		"Id\tName\tCode\tNote\tTerms",
		"1\tr1\tCH001-S\t\tchest pain",
		"2\tr2\tCH001-S\t\tfever",
		"3\tr3\tCH001-I\t\tignored",
		"4\tr4\tCH003-S\t\tthe",
	)
	path := filepath.Join(dir, "job.yaml")
	if err := os.WriteFile(path, []byte(minimalJob+extra), 0o600); err != nil {
		t.Fatal(err)
	}
	j, err := ParseJob(path)
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func TestRun(t *testing.T) {
	t.Run("tags and saves", func(t *testing.T) {
		j := setup(t, "")
		j.Codes = []string{"CH001", "CH002", "CH003"}
		rec := &recorder{}
		res, err := Run(t.Context(), j, rec)
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		if rec.started != 3 || rec.done != res {
			t.Errorf("progress started=%d done=%v", rec.started, rec.done)
		}
		want := []CodeStats{
			{Code: "CH001", Terms: 3, Rows: 3, Both: 1, Left: 1, None: 1},
			{Code: "CH002", Terms: 0, Rows: 1, None: 1},
			{Code: "CH003", Terms: 0, Rows: 0},
		}
		if !slices.Equal(res.Codes, want) {
			t.Errorf("Codes = %+v, want %+v", res.Codes, want)
		}
		if res.Rows() != 4 {
			t.Errorf("Rows() = %d, want 4", res.Rows())
		}
		if len(rec.warnings) != 2 {
			t.Errorf("warnings = %v, want 2", rec.warnings)
		}

		out, err := sheet.Load(j.Output.Path, "")
		if err != nil {
			t.Fatal(err)
		}
		col, err := out.Column(sheet.Name("Results"), false)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := col.Strings(), []string{"Y-L", "Y-LR", "N", "N"}; !slices.Equal(got, want) {
			t.Errorf("Results = %v, want %v", got, want)
		}
		ex, _ := out.Cell(1, sheet.Name("Excerpt"))
		if want := "severe CHEST pain pain no feve"; ex.String() != want {
			t.Errorf("Excerpt = %q, want %q", ex.String(), want)
		}
	})

	t.Run("keep and output options", func(t *testing.T) {
		extra := "columns:\n  result: Tag\n"
		j := setup(t, extra)
		j.Data.Keep = []ColumnSpec{Column(sheet.Name("Code")), Column(sheet.Name("Left")), Column(sheet.Name("Keyword")), Column(sheet.Name("Right"))}
		j.TermColumn = Column(sheet.Position(2))
		j.Rules.Keep = []ColumnSpec{Column(sheet.Letter("C")), Column(sheet.Name("Name")), Column(sheet.Letter("E"))}
		j.RulesCodeColumn = Column(sheet.Position(0))
		j.Output.Delimiter = "comma"
		if _, err := Run(t.Context(), j, nil); err != nil {
			t.Fatal(err)
		}
		out, err := sheet.Load(j.Output.Path, ",")
		if err != nil {
			t.Fatal(err)
		}
		h, _ := out.Headers()
		if want := []string{"Code", "Left", "Keyword", "Right", "Tag", "Rank", "Matched", "Excerpt"}; !slices.Equal(h, want) {
			t.Errorf("Headers() = %v, want %v", h, want)
		}
	})

	t.Run("append", func(t *testing.T) {
		j := setup(t, "")
		j.Output.Mode = "append"
		for range 2 {
			if _, err := Run(t.Context(), j, nil); err != nil {
				t.Fatal(err)
			}
		}
		out, err := sheet.Load(j.Output.Path, "")
		if err != nil {
			t.Fatal(err)
		}
		if got := out.RowCount(); got != 10 {
			t.Errorf("RowCount() = %d, want 10", got)
		}
	})

	t.Run("history", func(t *testing.T) {
		j := setup(t, "history:\n  path: runs/history.jsonl\n  keep: 2\n")
		if _, err := ReadHistory(j, -1); err != nil {
			t.Fatalf("ReadHistory() on a missing log: %v", err)
		}
		var last *Result
		for range 3 {
			res, err := Run(t.Context(), j, nil)
			if err != nil {
				t.Fatal(err)
			}
			last = res
		}
		entries, err := ReadHistory(j, -1)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 2 {
			t.Fatalf("ReadHistory() = %d entries, want 2", len(entries))
		}
		e := entries[1]
		if e.RunID != last.RunID || e.Mode != "overwrite" || e.Output != j.Output.Path || e.Rows() != 3 {
			t.Errorf("last entry = %+v", e)
		}
		if got, _ := ReadHistory(j, 1); len(got) != 1 || got[0].RunID != last.RunID {
			t.Errorf("ReadHistory(1) = %+v", got)
		}
		j.History.Path = ""
		if _, err := ReadHistory(j, 1); !errors.Is(err, ErrNoHistory) {
			t.Errorf("ReadHistory() error = %v, want ErrNoHistory", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		j := setup(t, "")
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if _, err := Run(ctx, j, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
		if _, err := os.Stat(j.Output.Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("output written after cancel: %v", err)
		}
	})

	t.Run("errors", func(t *testing.T) {
		j := setup(t, "")
		j.TermColumn = Column(sheet.Name("missing"))
		if _, err := Run(t.Context(), j, nil); !errors.Is(err, sheet.ErrInvalidColumnReference) {
			t.Errorf("Run() error = %v, want ErrInvalidColumnReference", err)
		}
		j = setup(t, "")
		j.StopWords = filepath.Join(t.TempDir(), "missing.txt")
		if _, err := Run(t.Context(), j, nil); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Run() error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestTerms(t *testing.T) {
	j := setup(t, "")
	j.Codes = []string{"CH001", "CH003"}
	got, err := Terms(t.Context(), j)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Terms() = %v", got)
	}
	var words []string
	for _, tr := range got[0].Terms {
		words = append(words, tr.Term)
	}
	if want := []string{"chest", "pain", "fever"}; !slices.Equal(words, want) {
		t.Errorf("CH001 terms = %v, want %v", words, want)
	}
	if len(got[1].Terms) != 0 {
		t.Errorf("CH003 terms = %v, want stop words removed", got[1].Terms)
	}
	if _, err := os.Stat(j.Output.Path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Terms() wrote the output")
	}
}

func TestCLIProgress(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &CLIProgress{Out: &out, Err: &errOut}
	id := ksid.NewID()
	p.OnStart(id, 2)
	p.OnCode(1, CodeStats{Code: "CH001", Terms: 3, Rows: 2, Both: 1, None: 1})
	p.OnWarning("code CH002 matched no data rows")
	p.OnComplete(&Result{RunID: id, Codes: []CodeStats{{Code: "CH001", Rows: 2, Both: 1, None: 1}}, Output: "out.txt"})
	s := out.String()
	for _, want := range []string{id.String(), "2 codes", "CH001", "Y-LR=1", "N=1", "Rows:      2", "Found:     1", "out.txt"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
	if !strings.HasPrefix(errOut.String(), "Warning: code CH002") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestSchema(t *testing.T) {
	b, err := Schema()
	if err != nil {
		t.Fatal(err)
	}
	var s struct {
		Title      string                     `json:"title"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("Schema() is not JSON: %v", err)
	}
	if s.Title != "sheetsearch job" {
		t.Errorf("title = %q", s.Title)
	}
	for _, name := range []string{"version", "data", "rules", "codes", "term_column", "output"} {
		if !slices.Contains(s.Required, name) {
			t.Errorf("required is missing %q: %v", name, s.Required)
		}
	}
	if slices.Contains(s.Required, "scope") {
		t.Error("scope is required")
	}
	if !strings.Contains(string(s.Properties["term_column"]), "oneOf") {
		t.Errorf("term_column schema = %s", s.Properties["term_column"])
	}
}

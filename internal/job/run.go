package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabastillas/sheetsearch/internal/sheet"
	"github.com/gabastillas/sheetsearch/internal/stopwords"
	"github.com/gabastillas/sheetsearch/internal/terms"
	"github.com/maruel/ksid"
)

// CodeTerms is the ranking of one code.
type CodeTerms struct {
	Code  string
	Terms []terms.TermRecord
}

// Run loads the tables, tags the data rows of every code and saves the data
// table. Codes run in order; the first failure stops the job and nothing is
// saved. ctx is checked between codes.
func Run(ctx context.Context, j *Job, p Progress) (*Result, error) {
	if p == nil {
		p = &NullProgress{}
	}
	start := time.Now()
	res := &Result{RunID: ksid.NewID(), Output: j.Output.Path}
	m, err := j.matcher(ctx)
	if err != nil {
		return nil, err
	}
	p.OnStart(res.RunID, len(j.Codes))
	for i, code := range j.Codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ranked, err := m.PrepareTerms(code, j.TermColumn.Ref(), "")
		if err != nil {
			return nil, fmt.Errorf("code %s: %w", code, err)
		}
		matches, err := m.Tag(code, j.TermColumn.Ref(), ranked)
		if err != nil {
			return nil, fmt.Errorf("code %s: %w", code, err)
		}
		stats := CodeStats{Code: code, Terms: len(ranked), Rows: len(matches)}
		for _, match := range matches {
			switch match.Class {
			case terms.FoundBoth:
				stats.Both++
			case terms.FoundLeft:
				stats.Left++
			case terms.FoundRight:
				stats.Right++
			default:
				stats.None++
			}
		}
		switch {
		case stats.Rows == 0:
			p.OnWarning(fmt.Sprintf("code %s matched no data rows", code))
		case stats.Terms == 0:
			p.OnWarning(fmt.Sprintf("code %s has no terms in the rules", code))
		}
		slog.InfoContext(ctx, "Scanned code", "run", res.RunID.String(), "code", code, "terms", stats.Terms, "rows", stats.Rows, "found", stats.Found())
		res.Codes = append(res.Codes, stats)
		p.OnCode(i+1, stats)
	}

	mode, err := sheet.ParseWriteMode(j.Output.Mode)
	if err != nil {
		return nil, err
	}
	delim := ParseDelimiter(j.Output.Delimiter)
	if delim == "" {
		delim = ParseDelimiter(j.Data.Delimiter)
	}
	if err := m.Data.Save(j.Output.Path, delim, mode); err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)
	slog.InfoContext(ctx, "Saved results", "run", res.RunID.String(), "path", j.Output.Path, "mode", mode.String(), "rows", m.Data.RowCount())
	if j.History.Path != "" {
		// The output is saved; a history failure does not fail the run.
		if err := j.record(ctx, start, mode.String(), res); err != nil {
			slog.WarnContext(ctx, "Failed to record run", "path", j.History.Path, "err", err)
			p.OnWarning(fmt.Sprintf("history not recorded: %v", err))
		}
	}
	p.OnComplete(res)
	return res, nil
}

// Terms returns the ranking of every code without touching the data table.
func Terms(ctx context.Context, j *Job) ([]CodeTerms, error) {
	rules, err := j.loadRules()
	if err != nil {
		return nil, err
	}
	stop, err := j.stopWords()
	if err != nil {
		return nil, err
	}
	m := &terms.Matcher{Data: sheet.New(), Rules: rules, Stop: stop, Options: j.Options()}
	out := make([]CodeTerms, 0, len(j.Codes))
	for _, code := range j.Codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ranked, err := m.PrepareTerms(code, j.TermColumn.Ref(), "")
		if err != nil {
			return nil, fmt.Errorf("code %s: %w", code, err)
		}
		out = append(out, CodeTerms{Code: code, Terms: ranked})
	}
	return out, nil
}

func (j *Job) matcher(ctx context.Context) (*terms.Matcher, error) {
	data, err := sheet.Load(j.Data.Path, ParseDelimiter(j.Data.Delimiter))
	if err != nil {
		return nil, err
	}
	if len(j.Data.Keep) > 0 {
		if err := data.Keep(refs(j.Data.Keep)...); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}
	rules, err := j.loadRules()
	if err != nil {
		return nil, err
	}
	stop, err := j.stopWords()
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Loaded job inputs", "data_rows", data.RowCount(), "rules_rows", rules.RowCount(), "stop_words", len(stop))
	return &terms.Matcher{Data: data, Rules: rules, Stop: stop, Options: j.Options()}, nil
}

func (j *Job) loadRules() (*sheet.Table, error) {
	rules, err := sheet.Load(j.Rules.Path, ParseDelimiter(j.Rules.Delimiter))
	if err != nil {
		return nil, err
	}
	if len(j.Rules.Keep) > 0 {
		if err := rules.Keep(refs(j.Rules.Keep)...); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}
	return rules, nil
}

func (j *Job) stopWords() (stopwords.Set, error) {
	if j.StopWords == "" {
		return stopwords.Default(), nil
	}
	return stopwords.Load(j.StopWords)
}

func refs(specs []ColumnSpec) []sheet.ColumnRef {
	out := make([]sheet.ColumnRef, len(specs))
	for i, s := range specs {
		out[i] = s.Ref()
	}
	return out
}

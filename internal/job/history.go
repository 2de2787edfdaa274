// Records job runs in the history log.

package job

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gabastillas/sheetsearch/internal/jsonldb"
	"github.com/maruel/ksid"
)

// ErrNoHistory is returned when the job has no history path.
var ErrNoHistory = errors.New("job has no history path")

// Entry is one run in the history log.
type Entry struct {
	RunID    ksid.ID       `json:"run_id"`
	Started  time.Time     `json:"started"`
	Data     string        `json:"data"`
	Rules    string        `json:"rules"`
	Output   string        `json:"output"`
	Mode     string        `json:"mode"`
	Codes    []CodeStats   `json:"codes"`
	Duration time.Duration `json:"duration"`
}

// Rows returns the number of data rows scanned over all codes.
func (e *Entry) Rows() int {
	r := Result{Codes: e.Codes}
	return r.Rows()
}

// record appends res to the history log and drops the entries beyond
// History.Keep.
func (j *Job) record(ctx context.Context, started time.Time, mode string, res *Result) error {
	log, err := jsonldb.Open[Entry](j.History.Path)
	if err != nil {
		return err
	}
	e := Entry{
		RunID:    res.RunID,
		Started:  started.UTC(),
		Data:     j.Data.Path,
		Rules:    j.Rules.Path,
		Output:   res.Output,
		Mode:     mode,
		Codes:    res.Codes,
		Duration: res.Duration,
	}
	if err := log.Append(e); err != nil {
		return err
	}
	if j.History.Keep > 0 {
		n, err := log.Trim(j.History.Keep)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.DebugContext(ctx, "Trimmed history", "path", log.Path(), "dropped", n)
		}
	}
	return nil
}

// ReadHistory returns the last n entries of the job history, oldest first. A
// negative n returns every entry.
func ReadHistory(j *Job, n int) ([]Entry, error) {
	if j.History.Path == "" {
		return nil, ErrNoHistory
	}
	log, err := jsonldb.Open[Entry](j.History.Path)
	if err != nil {
		return nil, err
	}
	return log.Last(n), nil
}

// Defines progress reporting interfaces and implementations.

package job

import (
	"fmt"
	"io"
	"time"

	"github.com/maruel/ksid"
)

// CodeStats contains the outcome of scanning the data rows of one code.
type CodeStats struct {
	Code  string `json:"code"`
	Terms int    `json:"terms"`
	Rows  int    `json:"rows"`
	Both  int    `json:"both"`
	Left  int    `json:"left"`
	Right int    `json:"right"`
	None  int    `json:"none"`
}

// Found returns the number of rows where a term was found.
func (s *CodeStats) Found() int {
	return s.Both + s.Left + s.Right
}

// Result contains statistics about a job run.
type Result struct {
	RunID    ksid.ID       `json:"run_id"`
	Codes    []CodeStats   `json:"codes"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Rows returns the number of data rows scanned over all codes.
func (r *Result) Rows() int {
	n := 0
	for i := range r.Codes {
		n += r.Codes[i].Rows
	}
	return n
}

// Progress is the interface for reporting job progress.
type Progress interface {
	OnStart(runID ksid.ID, codes int)
	OnCode(current int, stats CodeStats)
	OnWarning(msg string)
	OnComplete(res *Result)
}

// CLIProgress writes progress to stdout/stderr.
type CLIProgress struct {
	Out io.Writer
	Err io.Writer
}

// OnStart is called when the scan begins.
func (p *CLIProgress) OnStart(runID ksid.ID, codes int) {
	_, _ = fmt.Fprintf(p.Out, "Run %s: %d codes to compile\n\n", runID, codes)
}

// OnCode is called after each code is scanned.
func (p *CLIProgress) OnCode(current int, s CodeStats) {
	_, _ = fmt.Fprintf(p.Out, "[%d] %-10s terms=%-4d rows=%-5d Y-LR=%d Y-L=%d Y-R=%d N=%d\n",
		current, s.Code, s.Terms, s.Rows, s.Both, s.Left, s.Right, s.None)
}

// OnWarning is called for non-fatal issues.
func (p *CLIProgress) OnWarning(msg string) {
	_, _ = fmt.Fprintf(p.Err, "Warning: %s\n", msg)
}

// OnComplete is called when the job finishes.
func (p *CLIProgress) OnComplete(res *Result) {
	found := 0
	for i := range res.Codes {
		found += res.Codes[i].Found()
	}
	_, _ = fmt.Fprintf(p.Out, "\nComplete!\n")
	_, _ = fmt.Fprintf(p.Out, "---------\n")
	_, _ = fmt.Fprintf(p.Out, "Codes:     %d\n", len(res.Codes))
	_, _ = fmt.Fprintf(p.Out, "Rows:      %d\n", res.Rows())
	_, _ = fmt.Fprintf(p.Out, "Found:     %d\n", found)
	_, _ = fmt.Fprintf(p.Out, "Output:    %s\n", res.Output)
	_, _ = fmt.Fprintf(p.Out, "Duration:  %s\n", res.Duration.Round(time.Millisecond))
}

// NullProgress discards all progress updates.
type NullProgress struct{}

// OnStart is called when the scan begins.
func (p *NullProgress) OnStart(runID ksid.ID, codes int) {}

// OnCode is called after each code is scanned.
func (p *NullProgress) OnCode(current int, stats CodeStats) {}

// OnWarning is called for non-fatal issues.
func (p *NullProgress) OnWarning(msg string) {}

// OnComplete is called when the job finishes.
func (p *NullProgress) OnComplete(res *Result) {}

// Parses job manifest YAML files.

package job

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabastillas/sheetsearch/internal/sheet"
	"github.com/gabastillas/sheetsearch/internal/terms"
	"gopkg.in/yaml.v3"
)

// Job describes one search: the two input tables, the codes to compile and
// where to write the tagged data table.
type Job struct {
	Version         int         `yaml:"version" json:"version" jsonschema:"description=Manifest format version. Must be 1"`
	Data            TableConfig `yaml:"data" json:"data" jsonschema:"description=Table scanned for terms and written to the output"`
	Rules           TableConfig `yaml:"rules" json:"rules" jsonschema:"description=Table listing the terms of each code"`
	StopWords       string      `yaml:"stop_words,omitempty" json:"stop_words,omitempty" jsonschema:"description=Whitespace separated stop word file. The built-in English list is used when empty"`
	Codes           []string    `yaml:"codes" json:"codes" jsonschema:"description=Codes to compile in order,minItems=1"`
	TermColumn      ColumnSpec  `yaml:"term_column" json:"term_column" jsonschema:"description=Term column in the rules table and keyword column in the data table"`
	Sufficiency     string      `yaml:"sufficiency,omitempty" json:"sufficiency,omitempty" jsonschema:"enum=-S,enum=-I,description=Suffix selecting sufficient or insufficient rules. Defaults to -S"`
	Scope           int         `yaml:"scope,omitempty" json:"scope,omitempty" jsonschema:"minimum=0,description=Characters kept on each side of a match in excerpts. Defaults to 50"`
	DataCodeColumn  ColumnSpec  `yaml:"data_code_column,omitempty" json:"data_code_column,omitempty" jsonschema:"description=Code column of the data table. Defaults to the first column"`
	RulesCodeColumn ColumnSpec  `yaml:"rules_code_column,omitempty" json:"rules_code_column,omitempty" jsonschema:"description=Code column of the rules table. Defaults to column C"`
	Output          Output      `yaml:"output" json:"output" jsonschema:"description=Where the tagged data table is saved"`
	Columns         Columns     `yaml:"columns,omitempty" json:"columns,omitempty" jsonschema:"description=Headers of the output columns"`
	History         History     `yaml:"history,omitempty" json:"history,omitempty" jsonschema:"description=Log of past runs. Disabled when path is empty"`
}

// TableConfig locates an input table.
type TableConfig struct {
	Path      string       `yaml:"path" json:"path" jsonschema:"description=Delimited text file. Relative to the manifest"`
	Delimiter string       `yaml:"delimiter,omitempty" json:"delimiter,omitempty" jsonschema:"description=Field separator or one of tab/comma/semicolon/pipe. Defaults to tab"`
	Keep      []ColumnSpec `yaml:"keep,omitempty" json:"keep,omitempty" jsonschema:"description=Columns kept after loading in this order. All columns when empty"`
}

// Output locates the saved table.
type Output struct {
	Path      string `yaml:"path" json:"path" jsonschema:"description=Destination file. Relative to the manifest"`
	Mode      string `yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"enum=overwrite,enum=append,description=Write mode. Defaults to overwrite"`
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty" jsonschema:"description=Field separator. Defaults to the data delimiter"`
}

// Columns names the output columns added to the data table.
type Columns struct {
	Result  string `yaml:"result,omitempty" json:"result,omitempty" jsonschema:"description=Classification column. Defaults to Results"`
	Rank    string `yaml:"rank,omitempty" json:"rank,omitempty" jsonschema:"description=Rank of the matched term. Defaults to Rank"`
	Term    string `yaml:"term,omitempty" json:"term,omitempty" jsonschema:"description=Matched term. Defaults to Matched"`
	Excerpt string `yaml:"excerpt,omitempty" json:"excerpt,omitempty" jsonschema:"description=Text around the match. Defaults to Excerpt"`
}

// History locates the run log.
type History struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty" jsonschema:"description=JSON Lines file receiving one entry per run. Relative to the manifest"`
	Keep int    `yaml:"keep,omitempty" json:"keep,omitempty" jsonschema:"minimum=0,description=Entries kept in the log. Unlimited when 0"`
}

// ErrNoJob is returned when no manifest file is provided.
var ErrNoJob = errors.New("no job file provided")

// ParseJob reads and parses a job manifest from a file. Relative paths in the
// manifest are resolved against the manifest directory.
// The path is provided by the CLI user, so file inclusion is expected.
func ParseJob(path string) (*Job, error) {
	if path == "" {
		return nil, ErrNoJob
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-specified manifest path
	if err != nil {
		return nil, fmt.Errorf("failed to read job: %w", err)
	}
	j, err := ParseJobBytes(data)
	if err != nil {
		return nil, err
	}
	j.resolvePaths(filepath.Dir(path))
	return j, nil
}

// ParseJobBytes parses a job manifest from bytes.
func ParseJobBytes(data []byte) (*Job, error) {
	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &j, nil
}

// Validate checks that the job is valid.
func (j *Job) Validate() error {
	if j.Version != 1 {
		return fmt.Errorf("unsupported job version: %d", j.Version)
	}
	if j.Data.Path == "" {
		return errors.New("data: path is required")
	}
	if j.Rules.Path == "" {
		return errors.New("rules: path is required")
	}
	if len(j.Codes) == 0 {
		return errors.New("codes: at least one code is required")
	}
	for i, c := range j.Codes {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("codes: code %d is empty", i)
		}
	}
	if j.TermColumn.IsZero() {
		return errors.New("term_column is required")
	}
	switch j.Sufficiency {
	case "", "-S", "-I":
	default:
		return fmt.Errorf("sufficiency: invalid value %q", j.Sufficiency)
	}
	if j.Scope < 0 {
		return fmt.Errorf("scope: must not be negative, got %d", j.Scope)
	}
	if j.Output.Path == "" {
		return errors.New("output: path is required")
	}
	if _, err := sheet.ParseWriteMode(j.Output.Mode); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if j.History.Keep < 0 {
		return fmt.Errorf("history: keep must not be negative, got %d", j.History.Keep)
	}
	return nil
}

// Inputs returns the files the job reads.
func (j *Job) Inputs() []string {
	in := []string{j.Data.Path, j.Rules.Path}
	if j.StopWords != "" {
		in = append(in, j.StopWords)
	}
	return in
}

// Options returns the matcher options for the job, defaults filled in.
func (j *Job) Options() terms.Options {
	o := terms.DefaultOptions()
	if j.Sufficiency != "" {
		o.Suffix = j.Sufficiency
	}
	if j.Scope != 0 {
		o.Scope = j.Scope
	}
	if !j.DataCodeColumn.IsZero() {
		o.DataCodeColumn = j.DataCodeColumn.Ref()
	}
	if !j.RulesCodeColumn.IsZero() {
		o.RulesCodeColumn = j.RulesCodeColumn.Ref()
	}
	if j.Columns.Result != "" {
		o.ResultColumn = j.Columns.Result
	}
	if j.Columns.Rank != "" {
		o.RankColumn = j.Columns.Rank
	}
	if j.Columns.Term != "" {
		o.TermColumn = j.Columns.Term
	}
	if j.Columns.Excerpt != "" {
		o.ExcerptColumn = j.Columns.Excerpt
	}
	return o
}

func (j *Job) resolvePaths(dir string) {
	for _, p := range []*string{&j.Data.Path, &j.Rules.Path, &j.StopWords, &j.Output.Path, &j.History.Path} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// ParseDelimiter maps the names tab, comma, semicolon and pipe to their
// character. Any other value is returned as is.
func ParseDelimiter(s string) string {
	switch strings.ToLower(s) {
	case "tab", `\t`:
		return "\t"
	case "comma":
		return ","
	case "semicolon":
		return ";"
	case "pipe":
		return "|"
	default:
		return s
	}
}

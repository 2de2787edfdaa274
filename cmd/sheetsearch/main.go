// Package main is the entry point for sheetsearch.
//
// sheetsearch loads a data table and a rules table from delimited text files,
// ranks the terms the rules associate with each requested code and tags the
// data rows where those terms occur. The job is described by a YAML manifest;
// defaults for some flags are read from a .env file next to it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gabastillas/sheetsearch/internal/job"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "sheetsearch: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	version := flag.Bool("version", false, "Print version and exit")
	schema := flag.Bool("schema", false, "Print the JSON Schema of the job manifest and exit")
	jobPath := flag.String("job", "", "Path to the job manifest (YAML)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	delimiter := flag.String("delimiter", "", "Field separator for tables without one in the manifest (tab, comma, semicolon, pipe or literal)")
	stopWords := flag.String("stop-words", "", "Stop word file overriding the manifest")
	watch := flag.Bool("watch", false, "Run again whenever an input file changes")
	dryRun := flag.Bool("dry-run", false, "Print the ranked terms of each code without scanning or saving")
	history := flag.Int("history", 0, "Print the last N runs from the job history and exit")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}

	if *version {
		fmt.Print(readBuildInfo())
		return nil
	}
	if *schema {
		b, err := job.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Printf("%s\n", b)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			val := a.Value.Any()
			skip := false
			switch t := val.(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case int64:
				skip = t == 0
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	if *jobPath == "" {
		return job.ErrNoJob
	}
	env, err := loadDotEnv(filepath.Dir(*jobPath))
	if err != nil {
		return err
	}

	// Override with .env file values if not explicitly set via flags
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if !set["log-level"] {
		if env.LogLevel != "" {
			*logLevel = env.LogLevel
		}
	}
	if !set["delimiter"] {
		if env.Delimiter != "" {
			*delimiter = env.Delimiter
		}
	}
	if !set["stop-words"] {
		if env.StopWords != "" {
			*stopWords = env.StopWords
		}
	}

	switch *logLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "info":
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", *logLevel)
	}

	load := func() (*job.Job, error) {
		j, err := job.ParseJob(*jobPath)
		if err != nil {
			return nil, err
		}
		if *delimiter != "" {
			if j.Data.Delimiter == "" {
				j.Data.Delimiter = *delimiter
			}
			if j.Rules.Delimiter == "" {
				j.Rules.Delimiter = *delimiter
			}
		}
		if *stopWords != "" {
			j.StopWords = *stopWords
		}
		return j, nil
	}
	run := func() error {
		j, err := load()
		if err != nil {
			return err
		}
		if *dryRun {
			codes, err := job.Terms(ctx, j)
			if err != nil {
				return err
			}
			printTerms(codes)
			return nil
		}
		_, err = job.Run(ctx, j, &job.CLIProgress{Out: os.Stdout, Err: os.Stderr})
		return err
	}

	if *history > 0 {
		j, err := load()
		if err != nil {
			return err
		}
		entries, err := job.ReadHistory(j, *history)
		if err != nil {
			return err
		}
		printHistory(entries)
		return nil
	}
	if !*watch {
		return run()
	}
	j, err := load()
	if err != nil {
		return err
	}
	paths := append([]string{*jobPath}, j.Inputs()...)
	if !*dryRun {
		out, _ := filepath.Abs(j.Output.Path)
		for _, p := range paths {
			if in, _ := filepath.Abs(p); in == out {
				return fmt.Errorf("cannot watch %s: it is both an input and the output", p)
			}
		}
	}
	return watchInputs(ctx, paths, run)
}

func printTerms(codes []job.CodeTerms) {
	for _, c := range codes {
		fmt.Printf("%s (%d terms)\n", c.Code, len(c.Terms))
		for i, t := range c.Terms {
			fmt.Printf("  %3d  %-24s %d\n", i, t.Term, t.Frequency)
		}
	}
}

func printHistory(entries []job.Entry) {
	for _, e := range entries {
		found := 0
		for i := range e.Codes {
			found += e.Codes[i].Found()
		}
		fmt.Printf("%s  %s  codes=%d rows=%d found=%d  %s (%s) in %s\n",
			e.RunID, e.Started.Local().Format(time.DateTime), len(e.Codes), e.Rows(), found, e.Output, e.Mode, e.Duration.Round(time.Millisecond))
	}
}

// watchDebounce groups the bursts of events an editor emits on save.
const watchDebounce = 200 * time.Millisecond

// watchInputs calls run once, then again every time one of paths changes,
// until ctx is done. Directories are watched rather than the files so that
// editors replacing a file on save are still noticed. A failed run is logged
// and waits for the next change.
func watchInputs(ctx context.Context, paths []string, run func() error) error {
	files := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}

	if err := run(); err != nil {
		slog.ErrorContext(ctx, "Run failed", "err", err)
	}
	slog.InfoContext(ctx, "Watching inputs", "files", len(files))
	var rerun <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !files[event.Name] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)) {
				continue
			}
			slog.DebugContext(ctx, "Input changed", "path", event.Name, "op", event.Op.String())
			rerun = time.After(watchDebounce)
		case <-rerun:
			rerun = nil
			slog.InfoContext(ctx, "Inputs modified, running again")
			if err := run(); err != nil {
				slog.ErrorContext(ctx, "Run failed", "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching inputs", "err", err)
		}
	}
}

type buildInfo struct {
	version   string
	goVersion string
	revision  string
	modified  bool
}

func readBuildInfo() buildInfo {
	b := buildInfo{version: "unknown", goVersion: "unknown", revision: "unknown"}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.version = info.Main.Version
	if b.version == "" || b.version == "(devel)" {
		b.version = "dev"
	}
	b.goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.revision = setting.Value
		case "vcs.modified":
			b.modified = setting.Value == "true"
		}
	}
	return b
}

func (b buildInfo) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "sheetsearch %s\n  Go version: %s\n  Revision:   %s\n", b.version, b.goVersion, b.revision)
	if b.modified {
		s.WriteString("  Modified:   true\n")
	}
	return s.String()
}

// dotEnv holds the flag defaults a .env file next to the job may set.
type dotEnv struct {
	LogLevel  string // LOG_LEVEL
	Delimiter string // DELIMITER
	StopWords string // STOP_WORDS, relative to the .env directory
}

// loadDotEnv reads dir/.env. A missing file sets no defaults. Lines are
// KEY=VALUE, values optionally double-quoted; unknown keys are rejected so a
// misspelt key does not go unnoticed.
func loadDotEnv(dir string) (dotEnv, error) {
	var env dotEnv
	path := filepath.Join(dir, ".env")
	content, err := os.ReadFile(path) //nolint:gosec // G304: path is derived from the -job flag
	if errors.Is(err, fs.ErrNotExist) {
		return env, nil
	}
	if err != nil {
		return env, err
	}
	for n, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, raw, ok := strings.Cut(line, "=")
		if !ok {
			return env, fmt.Errorf("%s:%d: expected KEY=VALUE", path, n+1)
		}
		key = strings.TrimSpace(key)
		val, err := dotEnvValue(strings.TrimSpace(raw))
		if err != nil {
			return env, fmt.Errorf("%s:%d: %s: %w", path, n+1, key, err)
		}
		switch key {
		case "LOG_LEVEL":
			env.LogLevel = val
		case "DELIMITER":
			env.Delimiter = val
		case "STOP_WORDS":
			if val != "" && !filepath.IsAbs(val) {
				val = filepath.Join(dir, val)
			}
			env.StopWords = val
		default:
			return env, fmt.Errorf("%s:%d: unknown key %q", path, n+1, key)
		}
	}
	return env, nil
}

func dotEnvValue(v string) (string, error) {
	switch {
	case strings.HasPrefix(v, `"`):
		return strconv.Unquote(v)
	case strings.HasPrefix(v, "'") || strings.HasSuffix(v, "'"):
		return "", errors.New("single quotes are not supported, use double quotes")
	}
	return v, nil
}

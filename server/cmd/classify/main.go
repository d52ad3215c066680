// Command classify enriches a drill-hole CSV offline: it adds duration,
// hardness category and hardness index to every row, prints a per-category
// summary and optionally writes the enriched table.
//
// Usage:
//
//	classify [-config config.yaml] -in holes.csv [-out enriched.csv] [-from 2024-02-01] [-to 2024-02-29] [-pattern F-01,F-02]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/drillscope/drillscope/server/internal/config"
	"github.com/drillscope/drillscope/server/internal/filter"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

var errColor = color.FgHiRed

// categoryColors mirrors the chart palette as closely as a terminal allows.
var categoryColors = map[hardness.Category]color.Attribute{
	hardness.Soft:     color.FgHiGreen,
	hardness.Medium:   color.FgHiYellow,
	hardness.Hard:     color.FgHiRed,
	hardness.VeryHard: color.FgHiMagenta,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (columns and timestamp settings)")
	in := fs.String("in", "", "input CSV; \"-\" reads stdin")
	out := fs.String("out", "", "write the enriched CSV here; \"-\" writes stdout")
	from := fs.String("from", "", "keep holes started on or after this day (YYYY-MM-DD)")
	to := fs.String("to", "", "keep holes started on or before this day (YYYY-MM-DD)")
	pattern := fs.String("pattern", "", "comma-separated drill patterns to keep")
	verbose := fs.Bool("v", false, "log processing details to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *in == "" {
		color.New(errColor).Fprintln(stderr, "classify: -in is required")
		fs.Usage()
		return 2
	}

	lvl := slog.LevelWarn
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl}))

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			color.New(errColor).Fprintln(stderr, err)
			return 1
		}
	}

	criteria, err := filter.ParseQuery(url.Values{
		"from":    {*from},
		"to":      {*to},
		"pattern": {*pattern},
	}, cfg.Server.Timestamps.Zone())
	if err != nil {
		color.New(errColor).Fprintln(stderr, err)
		return 2
	}

	src := stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			color.New(errColor).Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		src = f
	}

	proc := records.NewProcessor(cfg.Server.ProcessorOptions(logger))
	tbl, err := proc.LoadAndProcess(ctx, src)
	if err != nil {
		color.New(errColor).Fprintln(stderr, describe(err))
		return 1
	}
	tbl = filter.Apply(tbl, criteria)

	// The summary goes to stderr when the table itself is written to stdout.
	report := stdout
	if *out == "-" {
		report = stderr
	}
	printSummary(report, *in, records.Summarize(tbl))

	if *out == "" {
		return 0
	}
	if err := writeTable(*out, stdout, tbl); err != nil {
		color.New(errColor).Fprintln(stderr, err)
		return 1
	}
	return 0
}

// describe adds a hint for the failures users can fix in the input file.
func describe(err error) string {
	var (
		missing *records.MissingColumnError
		timeErr *records.TimeParseError
	)
	switch {
	case errors.As(err, &missing):
		return fmt.Sprintf("%v\n  columns found: %v\n  set server.columns in the config file if the file uses other names",
			err, missing.Available)
	case errors.As(err, &timeErr):
		return fmt.Sprintf("%v\n  add the layout to server.timestamps.layouts in the config file", err)
	}
	return err.Error()
}

func printSummary(w io.Writer, name string, s records.Summary) {
	title := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s  %d holes\n", title(name), s.Rows)
	if s.Rows == 0 {
		return
	}
	for _, st := range s.Categories {
		label := color.New(categoryColors[st.Category]).Sprintf("%-15s", st.Category)
		fmt.Fprintf(w, "  %s %6d  %5.1f%%  mean %6.1f min\n", label, st.Count, st.Percent, st.MeanDuration)
	}
	fmt.Fprintf(w, "  duration  mean %.1f  min %.1f  max %.1f min\n", s.MeanDuration, s.MinDuration, s.MaxDuration)
	fmt.Fprintf(w, "  index     mean %.1f\n", s.MeanIndex)

	warn := color.New(color.FgYellow).SprintfFunc()
	if s.InvertedRows > 0 {
		fmt.Fprintln(w, warn("  %d holes end before they start", s.InvertedRows))
	}
	if s.SaturatedRows > 0 {
		fmt.Fprintln(w, warn("  %d holes past %.0f min share index %.0f", s.SaturatedRows,
			hardness.ThresholdSaturate, hardness.MaxIndex))
	}
}

func writeTable(path string, stdout io.Writer, tbl *records.Table) error {
	if path == "-" {
		return records.WriteCSV(stdout, tbl)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("classify: create output: %w", err)
	}
	if err := records.WriteCSV(f, tbl); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

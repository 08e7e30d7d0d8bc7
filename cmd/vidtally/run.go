package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/vidtally/pkg/vidtally/aggregate"
	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/discover"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
	"github.com/jamesainslie/vidtally/pkg/vidtally/probe"
	"github.com/jamesainslie/vidtally/pkg/vidtally/report"
	"github.com/jamesainslie/vidtally/pkg/vidtally/resolver"
	"github.com/jamesainslie/vidtally/pkg/vidtally/tuner"
	"github.com/jamesainslie/vidtally/pkg/vidtally/types"
)

const promptText = "Enter the folder path to search for MP4 files: "

// outcome describes what a tally run produced.
type outcome struct {
	summary *aggregate.Summary
	files   int

	// aborted is set when the root could not be searched.
	aborted bool
}

// runTally is the root command: prompt for a folder if needed, tally it,
// print the report, and optionally save it.
func (a *app) runTally(cmd *cobra.Command, args []string) error {
	formatter, err := report.Get(a.cfg.Format)
	if err != nil {
		return err
	}

	out := a.out
	fmt.Fprintln(out, "MP4 Duration Calculator")
	fmt.Fprintln(out, strings.Repeat("=", 30))
	fmt.Fprintln(out)

	folder, err := a.folderArg(args)
	if err != nil {
		return err
	}
	if folder == "" {
		fmt.Fprintln(out, "No folder path provided. Exiting.")
		return nil
	}

	save := a.v.GetBool("save")
	var capture bytes.Buffer
	w := out
	if save {
		w = io.MultiWriter(out, &capture)
	}

	start := time.Now()
	res, err := a.tally(cmd.Context(), w, folder, formatter)
	if err != nil {
		return err
	}
	if !a.quiet() {
		fmt.Fprintf(w, "\nScript execution time: %.2f seconds\n", time.Since(start).Seconds())
	}

	if !save || res.aborted {
		return nil
	}

	content := report.ExtractSummary(capture.String())
	if res.summary != nil && a.cfg.Format != config.DefaultFormat {
		// The console got a machine format; saved reports are always text.
		content = report.ExtractSummary(report.Render(res.summary))
	}

	dir, err := config.ResolveOutputDir(a.cfg.OutputDir)
	if err != nil {
		return err
	}
	path, err := report.Save(dir, report.Filename(folder, time.Now(), res.files), content)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSaved report to: %s\n", path)
	return nil
}

// folderArg returns the folder from the positional argument or, when
// absent, from one line of input. Surrounding quotes are removed.
func (a *app) folderArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Trim(args[0], `"'`), nil
	}

	fmt.Fprint(a.out, promptText)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading folder path: %w", err)
	}
	return strings.Trim(strings.TrimSpace(line), `"'`), nil
}

// tally discovers, resolves and aggregates the files under folder, writing
// the transcript and the report to w.
func (a *app) tally(ctx context.Context, w io.Writer, folder string, formatter report.Formatter) (outcome, error) {
	log := logging.Get("cli").With("run_id", newRunID())
	quiet := a.quiet()

	say := func(format string, args ...interface{}) {
		if !quiet {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}

	say("Searching for MP4 files in: %s", folder)
	say("%s", strings.Repeat("-", 50))

	root, err := discover.ResolveRoot(folder)
	switch {
	case errors.Is(err, discover.ErrNotFound):
		fmt.Fprintf(w, "Error: Folder '%s' does not exist.\n", folder)
		log.Warn("root not found", "folder", folder)
		return outcome{aborted: true}, nil
	case errors.Is(err, discover.ErrNotADirectory):
		fmt.Fprintf(w, "Error: '%s' is not a directory.\n", folder)
		log.Warn("root is not a directory", "folder", folder)
		return outcome{aborted: true}, nil
	case err != nil:
		return outcome{}, err
	}

	say("Searching recursively in: %s", root)
	files, err := discover.Discover(ctx, discover.Options{
		Root:       root,
		Extensions: a.cfg.Extensions,
		IgnoreCase: a.cfg.IgnoreCase,
		Exclude:    a.cfg.Exclude,
	})
	if err != nil {
		return outcome{}, err
	}

	var totalSize int64
	for _, f := range files {
		say("  Found: %s", f.RelPath)
		totalSize += f.Size
	}

	if len(files) == 0 {
		fmt.Fprintln(w, "No MP4 files found in the specified folder and its subfolders.")
		return outcome{}, nil
	}

	say("Found %d MP4 file(s):", len(files))
	say("")

	resources, err := tuner.Detect()
	if err != nil {
		log.Warn("resource detection failed", "error", err)
	}
	workers := tuner.WorkersWithOverride(resources, a.cfg.Workers)

	log.Info("tally started",
		"root", root,
		"files", len(files),
		"bytes", types.FormatSize(totalSize),
		"workers", workers,
	)

	pool := &resolver.Pool{
		Resolver: resolver.New(probe.FFProbe{Binary: a.cfg.FFProbe, Timeout: a.cfg.ProbeTimeout}),
		Workers:  workers,
	}
	agg := aggregate.New()
	err = pool.Run(ctx, files, func(i int, f types.MediaFile, r types.Result) {
		agg.Add(f, r)
		if !quiet {
			writeProgress(w, i, len(files), f, r)
		}
	})
	if err != nil {
		return outcome{}, err
	}

	summary := agg.Summary()
	var buf bytes.Buffer
	if err := formatter.Format(&buf, summary); err != nil {
		return outcome{}, fmt.Errorf("formatting report: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return outcome{}, err
	}

	log.Info("tally finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"total", types.FormatDuration(summary.Total),
	)
	return outcome{summary: summary, files: len(files)}, nil
}

// writeProgress prints the per-file lines for files[i].
func writeProgress(w io.Writer, i, n int, f types.MediaFile, r types.Result) {
	fmt.Fprintf(w, "[%d/%d] Processing: %s\n", i+1, n, f.RelPath)
	if r.PrimaryErr != "" {
		fmt.Fprintf(w, "    Error: %s\n", r.PrimaryErr)
	}

	switch {
	case r.OK() && r.Method == types.MethodPrimary:
		fmt.Fprintf(w, "    Duration: %s\n", types.FormatDuration(r.Duration))
	case r.OK():
		fmt.Fprintln(w, "    Trying alternative method...")
		fmt.Fprintf(w, "    Duration: %s (alternative method)\n", types.FormatDuration(r.Duration))
	default:
		if r.Fallback {
			fmt.Fprintln(w, "    Trying alternative method...")
		}
		fmt.Fprintln(w, "    Skipped (could not read duration with any method)")
	}
	fmt.Fprintln(w)
}

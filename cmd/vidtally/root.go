package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/vidtally/pkg/vidtally/config"
	"github.com/jamesainslie/vidtally/pkg/vidtally/logging"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, v: viper.New()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vidtally [folder]",
		Short: "Total up the running time of video files",
		Long: `vidtally searches a folder recursively for video files, reads each file's
duration, and prints per-folder and overall totals.

The duration is read from the MP4 movie header. Files that cannot be read that
way are retried with ffprobe when it is installed.

Examples:
  vidtally ~/Videos                  # Tally every .mp4 under ~/Videos
  vidtally                           # Prompt for the folder
  vidtally --save ~/Videos           # Also write the summary to reports/
  vidtally --ext .mp4,.m4v -i .      # Match more extensions, any case
  vidtally --format json ~/Videos    # Machine-readable summary`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.bootstrap,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logging.Close() },
		RunE:              a.runTally,
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/vidtally/config.yaml)")
	pf.BoolP("quiet", "q", false, "print only the report")
	pf.BoolP("verbose", "v", false, "log debug output to stderr")
	pf.String("log-level", "", "file log level (debug, info, warn, error)")

	f := rootCmd.Flags()
	f.Bool("save", false, "save the summary to a text report")
	f.String("output-dir", config.DefaultOutputDir, "directory for saved reports (relative to the executable)")
	f.StringSlice("ext", config.DefaultExtensions, "file extensions to match")
	f.BoolP("ignore-case", "i", false, "match extensions case-insensitively")
	f.StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	f.IntP("workers", "w", 0, "concurrent probes (0=auto, 1=sequential)")
	f.String("ffprobe", config.DefaultFFProbe, "ffprobe executable used as the fallback probe")
	f.StringP("format", "f", config.DefaultFormat, "report format (text, pretty, json, yaml)")

	bindings := map[string]string{
		"quiet":       "quiet",
		"verbose":     "verbose",
		"log-level":   "logging.level",
		"save":        "save",
		"output-dir":  "output_dir",
		"ext":         "extensions",
		"ignore-case": "ignore_case",
		"exclude":     "exclude",
		"workers":     "workers",
		"ffprobe":     "ffprobe",
		"format":      "format",
	}
	for flag, key := range bindings {
		fl := f.Lookup(flag)
		if fl == nil {
			fl = pf.Lookup(flag)
		}
		_ = a.v.BindPFlag(key, fl)
	}

	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))

	return rootCmd
}

// Execute runs the root command against the process's standard streams.
// An interrupt cancels in-flight probes.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		printError(a.errOut, "%v", err)
		return err
	}
	return nil
}

func (a *app) quiet() bool {
	return a.v.GetBool("quiet")
}

func (a *app) verbose() bool {
	return a.v.GetBool("verbose")
}

// printError prints an error message to w.
func printError(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
}

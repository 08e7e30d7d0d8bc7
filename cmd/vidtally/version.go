package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set by go build -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Display the version, commit hash, and build date of vidtally.`,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "vidtally %s\n", version)
			fmt.Fprintf(a.out, "  commit:  %s\n", commit)
			fmt.Fprintf(a.out, "  built:   %s\n", date)
			fmt.Fprintf(a.out, "  go:      %s\n", runtime.Version())
			fmt.Fprintf(a.out, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
}

const (
	binaryName = "vidtally"
	mainPkg    = "./cmd/vidtally"
	binDir     = "bin"
)

// All runs the complete build pipeline.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Build compiles the vidtally binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binaryPath(binDir), mainPkg)
}

// Install builds and copies vidtally into GOBIN, GOPATH/bin or /usr/local/bin.
func Install() error {
	st.Deps(Build)

	dir, err := installDir()
	if err != nil {
		return err
	}
	src, dst := binaryPath(binDir), binaryPath(dir)
	if st.Verbose() {
		fmt.Printf("Installing %s to %s\n", src, dst)
	}
	return sh.Copy(dst, src)
}

// Uninstall removes the installed vidtally binary.
func Uninstall() error {
	dir, err := installDir()
	if err != nil {
		return err
	}

	target := binaryPath(dir)
	if _, err := os.Stat(target); os.IsNotExist(err) {
		if st.Verbose() {
			fmt.Printf("Binary not found at %s, nothing to uninstall\n", target)
		}
		return nil
	}
	if st.Verbose() {
		fmt.Printf("Removing %s\n", target)
	}
	return os.Remove(target)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Doctor reports whether the ffprobe fallback is available on PATH.
func Doctor() error {
	out, err := sh.Output("ffprobe", "-version")
	if err != nil {
		fmt.Println("ffprobe: not found (files without a movie header will be skipped)")
		return nil
	}
	first, _, _ := strings.Cut(out, "\n")
	fmt.Printf("ffprobe: %s\n", first)
	return nil
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

func binaryPath(dir string) string {
	p := filepath.Join(dir, binaryName)
	if runtime.GOOS == "windows" {
		p += ".exe"
	}
	return p
}

func installDir() (string, error) {
	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return "", fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin != "" {
		return bin, nil
	}

	gopath, err := sh.Output(gocmd, "env", "GOPATH")
	if err != nil {
		return "", fmt.Errorf("determining GOPATH: %w", err)
	}
	if gopath == "" {
		return "/usr/local/bin", nil
	}
	return filepath.Join(gopath, "bin"), nil
}

// buildLdflags injects version, commit and build date into package main.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().UTC().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}

	return fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

//go:build stave

package main

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"tp":  Test.Parser,
	"l":   Lint.Default,
	"c":   Check,
	"fmt": Lint.Fmt,
	"sb":  Bench.Sketchbook,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
)

const binary = "bin/sketchdiag"

// Build compiles sketchdiag with version info. The tree-sitter grammar is C,
// so cgo must be enabled.
func Build() error {
	rebuild, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !rebuild {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building sketchdiag...")
	return sh.RunWithV(cgoEnv(), "go", "build", "-ldflags", ldflags(), "-o", binary, "./cmd/sketchdiag")
}

// Check runs format, lint, and test sequentially.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes build artifacts and the listing cache.
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	if _, err := os.Stat(binary); err == nil {
		if err := sh.RunV(binary, "classpath", "--drop-cache"); err != nil {
			fmt.Println("could not drop the listing cache:", err)
		}
	}
	for _, path := range []string{"bin", "coverage.out"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install installs sketchdiag to $GOBIN or $GOPATH/bin.
func Install() error {
	fmt.Println("Installing sketchdiag...")
	return sh.RunWithV(cgoEnv(), "go", "install", "-ldflags", ldflags(), "./cmd/sketchdiag")
}

// Default runs all tests with race detection and coverage.
func (Test) Default() error {
	fmt.Println("Running tests...")
	return goTest("./...", "-race", "-coverprofile=coverage.out", "-covermode=atomic")
}

// Parser runs only the tree-sitter front-end tests, the ones that need cgo.
func (Test) Parser() error {
	fmt.Println("Running parser tests...")
	return goTest("./pkg/parser/...")
}

// Service runs the orchestrator tests repeatedly to shake out timing bugs.
func (Test) Service() error {
	fmt.Println("Running service tests x20...")
	return goTest("./pkg/preproc/...", "-race", "-count=20")
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	fmt.Println("Running linters...")
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without auto-fix.
func (Lint) CI() error {
	fmt.Println("Running linters (CI mode)...")
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code.
func (Lint) Fmt() error {
	fmt.Println("Formatting code...")
	return sh.RunV("gofmt", "-w", "cmd", "internal", "pkg", "stavefile.go")
}

// FmtCheck verifies code formatting without modifying files.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "stavefile.go")
	if err != nil {
		return fmt.Errorf("gofmt check failed: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	fmt.Println("✓ Code formatting OK")
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	fmt.Println("Running go vet...")
	return sh.RunWithV(cgoEnv(), "go", "vet", "./...")
}

// Gate runs every CI check in order, then smoke-tests the binary.
func (CI) Gate() error {
	fmt.Println("Running CI gate checks...")
	st.SerialDeps(
		Lint.FmtCheck,
		Lint.Vet,
		Lint.CI,
		Build,
		Test.Default,
		CI.ModTidy,
		CI.Smoke,
	)
	fmt.Println("\n✓ All CI gate checks passed!")
	return nil
}

// ModTidy checks that go.mod and go.sum are tidy.
func (CI) ModTidy() error {
	fmt.Println("Checking go.mod/go.sum are tidy...")
	before, err := readModFiles()
	if err != nil {
		return err
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}
	after, err := readModFiles()
	if err != nil {
		return err
	}
	if before != after {
		return errors.New("go.mod or go.sum changed after 'go mod tidy' - please commit the changes")
	}
	fmt.Println("✓ go.mod/go.sum are tidy")
	return nil
}

// Smoke checks a clean and a broken sketch with the built binary.
func (CI) Smoke() error {
	st.Deps(Build)
	dir, err := os.MkdirTemp("", "sketchdiag-smoke")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	sketches := map[string]string{
		"Clean":  "void setup() {\n  size(200, 200);\n}\n",
		"Broken": "void setup() {\n  size(200, 200);\n",
	}
	for name, text := range sketches {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			return fmt.Errorf("create sketch: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, name, name+".pde"), []byte(text), 0o644); err != nil {
			return fmt.Errorf("write sketch: %w", err)
		}
	}

	if err := sh.RunV(binary, "check", filepath.Join(dir, "Clean")); err != nil {
		return fmt.Errorf("clean sketch reported problems: %w", err)
	}
	out, err := sh.Output(binary, "check", "--no-context", "--color", "never", filepath.Join(dir, "Broken"))
	if err == nil || !strings.Contains(out, "Broken.pde:") {
		return fmt.Errorf("broken sketch was not reported:\n%s", out)
	}
	fmt.Println("✓ Smoke test passed")
	return nil
}

// Default runs Go benchmarks.
func (Bench) Default() error {
	fmt.Println("Running benchmarks...")
	return goTest("./...", "-run=^$", "-bench=.", "-benchmem")
}

// Sketchbook times a cold and a warm check of the sketchbook named by
// SKETCHBOOK, so the listing cache's effect is visible.
func (Bench) Sketchbook() error {
	st.Deps(Build)
	dir := os.Getenv("SKETCHBOOK")
	if dir == "" {
		return errors.New("set SKETCHBOOK to a folder of sketches")
	}
	if err := sh.RunV(binary, "classpath", "--drop-cache"); err != nil {
		return fmt.Errorf("drop cache: %w", err)
	}
	for _, run := range []string{"cold", "warm"} {
		start := time.Now()
		// Problems in the sketchbook are not a benchmark failure.
		_, _ = sh.Output(binary, "check", "--format", "json", "--compact", dir)
		fmt.Printf("%s: %s\n", run, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func goTest(pkgs string, flags ...string) error {
	nCores := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	args := append([]string{"test", "-p", nCores, "-parallel", nCores}, flags...)
	return sh.RunWithV(cgoEnv(), "go", append(args, pkgs)...)
}

func cgoEnv() map[string]string {
	return map[string]string{"CGO_ENABLED": "1"}
}

func readModFiles() (string, error) {
	var sb strings.Builder
	for _, name := range []string{"go.mod", "go.sum"} {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", name, err)
		}
		sb.Write(data)
	}
	return sb.String(), nil
}

// gitOutput runs a git command and returns trimmed stdout, or empty on error.
func gitOutput(args ...string) string {
	out, err := sh.Output("git", args...)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// ldflags returns the linker flags for version injection.
func ldflags() string {
	version := cmp.Or(gitOutput("describe", "--tags", "--always", "--dirty"), "dev")
	commit := cmp.Or(gitOutput("rev-parse", "--short", "HEAD"), "none")
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}

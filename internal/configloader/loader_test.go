package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yaklabco/sketchdiag/pkg/config"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}

	if result.Config.Mode.Descriptor != "mode.toml" {
		t.Errorf("expected descriptor %q, got %q", "mode.toml", result.Config.Mode.Descriptor)
	}
	if result.Config.Service.CallbackTimeout != config.DefaultCallbackTimeout {
		t.Errorf("expected callback timeout %v, got %v", config.DefaultCallbackTimeout, result.Config.Service.CallbackTimeout)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), `
mode:
  dir: /opt/modes/java
service:
  analysis_enabled: false
`)

	// Discovery walks upward from a nested sketch folder.
	sketchDir := filepath.Join(tmpDir, "sketches", "Blink")
	if err := os.MkdirAll(sketchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(sketchDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Mode.Dir != "/opt/modes/java" {
		t.Errorf("expected mode dir from project config, got %q", result.Config.Mode.Dir)
	}
	if result.Config.AnalysisOn() {
		t.Error("expected analysis disabled by project config")
	}
	if result.Config.Mode.Descriptor != "mode.toml" {
		t.Errorf("expected default descriptor to survive merge, got %q", result.Config.Mode.Descriptor)
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), "mode:\n  dir: /outer\n")
	repo := filepath.Join(tmpDir, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(repo))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Mode.Dir != "" {
		t.Errorf("expected config outside the repository to be ignored, got %q", result.Config.Mode.Dir)
	}
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), "service:\n  callback_timeout: 1s\n")
	customPath := filepath.Join(tmpDir, "custom.yml")
	writeConfig(t, customPath, "service:\n  callback_timeout: 250ms\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := result.Config.Service.CallbackTimeout; got != 250*time.Millisecond {
		t.Errorf("expected explicit config to win, got %v", got)
	}
	if len(result.LoadedFrom) != 2 || result.LoadedFrom[1] != customPath {
		t.Errorf("expected explicit config loaded last, got %v", result.LoadedFrom)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), "sketchbook:\n  libraries: [/project/libs]\n")

	opts := isolated(tmpDir)
	opts.CLIConfig = &config.Config{
		Sketchbook: config.SketchbookConfig{Libraries: []string{"/cli/libs"}},
		Jobs:       8,
		Format:     config.FormatJSON,
	}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := result.Config.Sketchbook.Libraries; len(got) != 1 || got[0] != "/cli/libs" {
		t.Errorf("expected CLI libraries, got %v", got)
	}
	if result.Config.Jobs != 8 {
		t.Errorf("expected jobs 8 (CLI override), got %d", result.Config.Jobs)
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected json format, got %q", result.Config.Format)
	}
}

func TestLoad_Environment(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), "cache:\n  enabled: true\n")
	t.Setenv("SKETCHDIAG_CACHE_ENABLED", "false")
	t.Setenv("SKETCHDIAG_SERVICE_DEBOUNCE", "1s")
	t.Setenv("SKETCHDIAG_SKETCHBOOK_LIBRARIES", "/a, /b")

	opts := isolated(tmpDir)
	opts.IgnoreEnv = false

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.CacheOn() {
		t.Error("expected environment to disable the cache")
	}
	if result.Config.Service.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", result.Config.Service.Debounce)
	}
	if got := strings.Join(result.Config.Sketchbook.Libraries, ";"); got != "/a;/b" {
		t.Errorf("expected libraries /a;/b, got %q", got)
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("SKETCHDIAG_JOBS", "many")

	opts := isolated(t.TempDir())
	opts.IgnoreEnv = false

	if _, err := Load(context.Background(), opts); err == nil {
		t.Fatal("expected error for non-numeric SKETCHDIAG_JOBS")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"negative timeout", "service:\n  callback_timeout: -1s\n", "service.callback_timeout"},
		{"descriptor path", "mode:\n  descriptor: ../mode.toml\n", "mode.descriptor"},
		{"bad glob", "ignore: ['[']\n", "ignore[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, ".sketchdiag.yml")
			writeConfig(t, path, tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if verr.FilePath != path {
				t.Errorf("expected file path %q, got %q", path, verr.FilePath)
			}
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"), "flavor: gfm\n")

	if _, err := Load(context.Background(), isolated(tmpDir)); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_InvalidCLIValues(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.CLIConfig = &config.Config{Color: "rainbow"}

	_, err := Load(context.Background(), opts)
	if err == nil || !strings.Contains(err.Error(), "color") {
		t.Fatalf("expected color validation error, got %v", err)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, isolated(t.TempDir())); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestValidate_DuplicateLibrariesWarn(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Sketchbook.Libraries = []string{"/libs", "/libs"}

	result := Validate(cfg)
	if !result.Valid() {
		t.Fatalf("expected valid config, got %v", result.AllMessages())
	}
	if !result.HasWarnings() {
		t.Fatal("expected duplicate folder warning")
	}
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	if len(vars) != len(envMappings) {
		t.Fatalf("expected %d variables, got %d", len(envMappings), len(vars))
	}
	for i := 1; i < len(vars); i++ {
		if vars[i-1].Name >= vars[i].Name {
			t.Fatalf("variables not sorted: %s >= %s", vars[i-1].Name, vars[i].Name)
		}
	}
	if GetEnvVarName("mode.dir") != "SKETCHDIAG_MODE_DIR" {
		t.Errorf("unexpected env var for mode.dir: %q", GetEnvVarName("mode.dir"))
	}
}

func TestLoad_SketchbookLibrariesFallback(t *testing.T) {
	t.Parallel()

	book := t.TempDir()
	if err := os.MkdirAll(filepath.Join(book, "libraries"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sketchDir := filepath.Join(book, "Blink")
	if err := os.MkdirAll(sketchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(sketchDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Paths.Sketchbook != book {
		t.Errorf("expected sketchbook %q, got %q", book, result.Paths.Sketchbook)
	}
	want := filepath.Join(book, "libraries")
	if got := result.Config.Sketchbook.Libraries; len(got) != 1 || got[0] != want {
		t.Errorf("expected libraries [%s], got %v", want, got)
	}

	opts := isolated(sketchDir)
	opts.CLIConfig = &config.Config{Sketchbook: config.SketchbookConfig{Libraries: []string{"/elsewhere"}}}
	result, err = Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := result.Config.Sketchbook.Libraries; len(got) != 1 || got[0] != "/elsewhere" {
		t.Errorf("explicit libraries should win over the sketchbook, got %v", got)
	}
}

func TestFindProjectConfig_StopsAtSketchbook(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeConfig(t, filepath.Join(outer, ".sketchdiag.yml"), "mode:\n  dir: /outer\n")
	book := filepath.Join(outer, "sketchbook")
	if err := os.MkdirAll(filepath.Join(book, "libraries"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	sketchDir := filepath.Join(book, "Blink")
	if err := os.MkdirAll(sketchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, err := FindProjectConfig(context.Background(), sketchDir)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("expected the walk to stop at the sketchbook, found %q", path)
	}

	writeConfig(t, filepath.Join(book, "sketchdiag.yaml"), "mode:\n  dir: /book\n")
	path, err = FindProjectConfig(context.Background(), sketchDir)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if path != filepath.Join(book, "sketchdiag.yaml") {
		t.Errorf("expected the sketchbook config, got %q", path)
	}
}

func TestLoad_RelativeFoldersFollowTheFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".sketchdiag.yml"),
		"mode:\n  dir: modes/java\nsketchbook:\n  libraries: [libs, /abs/libs]\ncache:\n  dir: .cache\n")
	sketchDir := filepath.Join(tmpDir, "Blink")
	if err := os.MkdirAll(sketchDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(sketchDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := result.Config
	if want := filepath.Join(tmpDir, "modes", "java"); cfg.Mode.Dir != want {
		t.Errorf("mode dir = %q, want %q", cfg.Mode.Dir, want)
	}
	if want := filepath.Join(tmpDir, ".cache"); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
	libs := cfg.Sketchbook.Libraries
	if len(libs) != 2 || libs[0] != filepath.Join(tmpDir, "libs") || libs[1] != "/abs/libs" {
		t.Errorf("libraries = %v", libs)
	}
}

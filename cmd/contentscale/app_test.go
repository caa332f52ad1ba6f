package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/config"
)

// newFlagCmd returns a scan-like command with the global flags it reads.
func newFlagCmd(t *testing.T, configPath string, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScanFlags(cmd)
	cmd.Flags().String("config", configPath, "")
	cmd.Flags().String("db-dir", t.TempDir(), "")
	cmd.Flags().String("schedule", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

// TestLoadConfig tests merging flags with the configuration file.
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `render:
  renderer: browserless
  timeout: 45s
  concurrency: 2
  browserless:
    endpoint: https://chrome.example.com
validator:
  model: claude-test
watch:
  schedule: "@daily"
`
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Run("file values fill unset flags", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(newFlagCmd(t, path), []string{"https://example.com"})
		if err != nil {
			t.Fatalf("loadConfig failed: %v", err)
		}
		if cfg.Renderer != config.RendererBrowserless {
			t.Errorf("expected renderer from file, got %q", cfg.Renderer)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected timeout from file, got %v", cfg.Timeout)
		}
		if cfg.RenderConcurrency != 2 {
			t.Errorf("expected concurrency from file, got %d", cfg.RenderConcurrency)
		}
		if cfg.BrowserlessEndpoint != "https://chrome.example.com" {
			t.Errorf("expected endpoint from file, got %q", cfg.BrowserlessEndpoint)
		}
		if cfg.Model != "claude-test" {
			t.Errorf("expected model from file, got %q", cfg.Model)
		}
		if cfg.WatchSchedule != "@daily" {
			t.Errorf("expected schedule from file, got %q", cfg.WatchSchedule)
		}
	})

	t.Run("flags win over the file", func(t *testing.T) {
		t.Parallel()
		cmd := newFlagCmd(t, path, "--renderer", "http", "--timeout", "5s", "--model", "claude-flag")
		cfg, err := loadConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("loadConfig failed: %v", err)
		}
		if cfg.Renderer != config.RendererHTTP || cfg.Timeout != 5*time.Second || cfg.Model != "claude-flag" {
			t.Errorf("expected flag values, got renderer=%q timeout=%v model=%q", cfg.Renderer, cfg.Timeout, cfg.Model)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(newFlagCmd(t, filepath.Join(t.TempDir(), "missing.yaml")), nil)
		if err == nil {
			t.Error("expected an error for a missing config file")
		}
	})
}

// TestCollectTargets tests merging positional URLs with a list file.
func TestCollectTargets(t *testing.T) {
	t.Parallel()

	list := filepath.Join(t.TempDir(), "urls.txt")
	content := "# pages\nhttps://a.example/\n\n  https://b.example/  \nhttps://a.example/\n"
	if err := os.WriteFile(list, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}

	got, err := collectTargets([]string{"https://c.example/", "https://b.example/"}, list)
	if err != nil {
		t.Fatalf("collectTargets failed: %v", err)
	}
	want := []string{"https://c.example/", "https://b.example/", "https://a.example/"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := collectTargets(nil, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing list")
	}
}

// TestParseSince tests --since parsing.
func TestParseSince(t *testing.T) {
	t.Parallel()

	got, err := parseSince("2026-02-03")
	if err != nil {
		t.Fatalf("parseSince failed: %v", err)
	}
	if !got.Equal(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time: %v", got)
	}
	if got, err := parseSince(""); err != nil || !got.IsZero() {
		t.Errorf("expected zero time for empty input, got %v, %v", got, err)
	}
	if _, err := parseSince("03/02/2026"); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

// TestOpenOutput tests choosing the report destination.
func TestOpenOutput(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	w, closeFn, err := openOutput("", &stdout)
	if err != nil {
		t.Fatalf("openOutput failed: %v", err)
	}
	if w != &stdout {
		t.Error("expected stdout for an empty path")
	}
	if err := closeFn(); err != nil {
		t.Errorf("close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "a", "b", "report.txt")
	w, closeFn, err = openOutput(path, &stdout)
	if err != nil {
		t.Fatalf("openOutput failed: %v", err)
	}
	if _, err := w.Write([]byte("ok")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

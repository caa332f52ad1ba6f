package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/contentscale/internal/config"
	"github.com/nao1215/contentscale/internal/database"
	applog "github.com/nao1215/contentscale/internal/log"
	"github.com/nao1215/contentscale/internal/report"
)

// dateLayout is accepted by --since flags.
const dateLayout = "2006-01-02"

// errNoDatabase is returned by read-only commands before the first scan.
var errNoDatabase = errors.New("no scan database found; run 'contentscale scan' first")

// flag accessors tolerate flags that a command does not define.

func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

func flagBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return v
}

func flagInt(cmd *cobra.Command, name string, fallback int) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return fallback
	}
	return v
}

func flagDuration(cmd *cobra.Command, name string, fallback time.Duration) time.Duration {
	v, err := cmd.Flags().GetDuration(name)
	if err != nil {
		return fallback
	}
	return v
}

// loadConfig builds the configuration from flags, the configuration file and
// the environment. Flags given on the command line take precedence.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	cfg.Verbose = flagBool(cmd, "verbose")
	cfg.JSONLog = flagBool(cmd, "log-json")
	cfg.ConfigFilePath = flagString(cmd, "config")
	cfg.DBDir = flagString(cmd, "db-dir")
	cfg.DBDSN = flagString(cmd, "db-dsn")

	cfg.Timeout = flagDuration(cmd, "timeout", cfg.Timeout)
	cfg.ScanTimeout = flagDuration(cmd, "scan-timeout", cfg.ScanTimeout)
	cfg.BatchSize = flagInt(cmd, "batch-size", cfg.BatchSize)
	cfg.RenderConcurrency = flagInt(cmd, "render-concurrency", cfg.RenderConcurrency)
	if r := flagString(cmd, "renderer"); r != "" {
		cfg.Renderer = r
	}
	cfg.BrowserlessEndpoint = flagString(cmd, "browserless-endpoint")
	cfg.UserAgent = flagString(cmd, "user-agent")
	cfg.JSONReport = flagBool(cmd, "json")
	cfg.MarkdownReport = flagBool(cmd, "markdown")
	cfg.ReportFile = flagString(cmd, "output")
	cfg.NoValidate = flagBool(cmd, "no-validate")
	cfg.SaveToDB = !flagBool(cmd, "no-save")
	cfg.Model = flagString(cmd, "model")
	cfg.MetricsFile = flagString(cmd, "metrics-file")
	if s := flagString(cmd, "schedule"); s != "" {
		cfg.WatchSchedule = s
	}

	// An explicit config path must exist. Without one, a missing file
	// means an empty configuration.
	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(f, cmd.Flags().Changed)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	cfg.ApplyEnv(os.LookupEnv)

	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	targets, err := collectTargets(args, flagString(cmd, "list"))
	if err != nil {
		return nil, err
	}
	cfg.Targets = targets

	return cfg, nil
}

// collectTargets merges positional URLs with the URLs of a list file.
// The list file has one URL per line; blank lines and lines starting with
// '#' are ignored. Duplicates are dropped, keeping the first occurrence.
func collectTargets(args []string, listFile string) ([]string, error) {
	targets := make([]string, 0, len(args))
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		targets = append(targets, s)
	}

	for _, arg := range args {
		add(arg)
	}

	if listFile == "" {
		return targets, nil
	}

	f, err := os.Open(listFile) //nolint:gosec // User-provided list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		add(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return targets, nil
}

// newLogger creates the secure logger for cfg.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return applog.New(w, cfg.Verbose, cfg.JSONLog)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// openStore opens the score store for writing, creating the SQLite
// database if needed. A DSN selects PostgreSQL.
func openStore(ctx context.Context, cfg *config.Config) (*database.ScoreDB, error) {
	if cfg.DBDSN != "" {
		db, err := database.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openExistingStore opens the score store without creating it.
func openExistingStore(ctx context.Context, cfg *config.Config) (*database.ScoreDB, error) {
	if cfg.DBDSN != "" {
		return openStore(ctx, cfg)
	}
	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrNotFound) {
		return nil, errNoDatabase
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openOutput returns the report destination: the file at path, or stdout
// when path is empty. Reports may contain site cookies in URLs, so files are
// created with owner-only permissions.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter selects the report format of cfg.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// parseSince parses a --since date as midnight UTC.
func parseSince(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contentscale/internal/model"
)

// FileName is the SQLite database file created inside the data directory.
const FileName = "contentscale.db"

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ScoreDB stores scan reports.
type ScoreDB struct {
	db       *sql.DB
	dialect  dialect
	location string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns options that create the database with WAL enabled.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the SQLite database in dbDir.
func Open(dbDir string, opts Options) (*ScoreDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		mode = "rw"
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	sdb := &ScoreDB{db: db, dialect: dialectSQLite, location: dbPath}
	if err := sdb.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return sdb, nil
}

// OpenPostgres connects to the PostgreSQL database at dsn and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*ScoreDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	sdb := &ScoreDB{db: db, dialect: dialectPostgres, location: "postgres"}
	if err := sdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return sdb, nil
}

// Close closes the database.
func (s *ScoreDB) Close() error {
	return s.db.Close()
}

// Location returns the database file path, or "postgres".
func (s *ScoreDB) Location() string {
	return s.location
}

func (s *ScoreDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_reports (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		host TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		total INTEGER NOT NULL DEFAULT 0,
		graaf INTEGER NOT NULL DEFAULT 0,
		craft INTEGER NOT NULL DEFAULT 0,
		technical INTEGER NOT NULL DEFAULT 0,
		quality TEXT NOT NULL DEFAULT '',
		verified INTEGER NOT NULL DEFAULT 0,
		failure_stage TEXT NOT NULL DEFAULT '',
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url_time ON scan_reports(url, scanned_at);
	CREATE INDEX IF NOT EXISTS idx_reports_host ON scan_reports(host);
	CREATE INDEX IF NOT EXISTS idx_reports_total ON scan_reports(total);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveScanReport stores report. Saving a report with an existing ID replaces it.
func (s *ScoreDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	if report == nil || report.ID == "" {
		return ErrMissingID
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	sum := report.Summary()
	query := `
	INSERT INTO scan_reports (id, url, host, scanned_at, total, graaf, craft, technical, quality, verified, failure_stage, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		total = excluded.total,
		graaf = excluded.graaf,
		craft = excluded.craft,
		technical = excluded.technical,
		quality = excluded.quality,
		verified = excluded.verified,
		failure_stage = excluded.failure_stage,
		report_json = excluded.report_json
	`
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(query),
		sum.ID,
		sum.URL,
		sum.Host,
		formatTime(sum.ScannedAt),
		sum.Total,
		sum.GRAAF,
		sum.CRAFT,
		sum.Technical,
		string(sum.Quality),
		boolToInt(sum.Verified),
		sum.FailureStage,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}
	return nil
}

// GetLatestScanReport returns the most recent report for url, or nil if there is none.
func (s *ScoreDB) GetLatestScanReport(ctx context.Context, url string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE url = ?
	ORDER BY scanned_at DESC, id DESC
	LIMIT 1
	`
	return s.getReport(ctx, query, url)
}

// GetScanReportByID returns the report with id, or nil if there is none.
func (s *ScoreDB) GetScanReportByID(ctx context.Context, id string) (*model.ScanReport, error) {
	return s.getReport(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id)
}

func (s *ScoreDB) getReport(ctx context.Context, query string, arg string) (*model.ScanReport, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(query), arg).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

const summaryColumns = `id, url, host, scanned_at, total, graaf, craft, technical, quality, verified, failure_stage`

// GetScanHistory returns the scans of url, newest first. limit <= 0 returns all.
func (s *ScoreDB) GetScanHistory(ctx context.Context, url string, limit int) ([]model.ScanSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM scan_reports WHERE url = ? ORDER BY scanned_at DESC, id DESC`
	args := []any{url}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.querySummaries(ctx, query, args...)
}

// ListScannedURLs returns every URL with at least one scan, sorted.
func (s *ScoreDB) ListScannedURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT url FROM scan_reports ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// LeaderboardQuery filters a leaderboard.
type LeaderboardQuery struct {
	// Host keeps only URLs of this host. A leading "www." is ignored.
	Host string

	// Since keeps only scans at or after this time.
	Since time.Time

	// VerifiedOnly keeps only scores computed from validator verdicts.
	VerifiedOnly bool

	// Limit caps the number of rows. Zero or less means no cap.
	Limit int
}

// Leaderboard ranks URLs by the total of their latest successful scan,
// highest first, ties broken by URL.
func (s *ScoreDB) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]model.ScanSummary, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + summaryColumns + ` FROM scan_reports r
	WHERE r.failure_stage = ''
	AND r.scanned_at = (
		SELECT MAX(l.scanned_at) FROM scan_reports l
		WHERE l.url = r.url AND l.failure_stage = ''
	)`)
	args := make([]any, 0, 3)

	if host := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(q.Host)), "www."); host != "" {
		b.WriteString(` AND r.host = ?`)
		args = append(args, host)
	}
	if !q.Since.IsZero() {
		b.WriteString(` AND r.scanned_at >= ?`)
		args = append(args, formatTime(q.Since))
	}
	if q.VerifiedOnly {
		b.WriteString(` AND r.verified = 1`)
	}
	b.WriteString(` ORDER BY r.total DESC, r.url ASC`)
	if q.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}
	return s.querySummaries(ctx, b.String(), args...)
}

func (s *ScoreDB) querySummaries(ctx context.Context, query string, args ...any) ([]model.ScanSummary, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	results := make([]model.ScanSummary, 0)
	for rows.Next() {
		var (
			sum       model.ScanSummary
			scannedAt string
			quality   string
			verified  int
		)
		if err := rows.Scan(
			&sum.ID,
			&sum.URL,
			&sum.Host,
			&scannedAt,
			&sum.Total,
			&sum.GRAAF,
			&sum.CRAFT,
			&sum.Technical,
			&quality,
			&verified,
			&sum.FailureStage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sum.ScannedAt = parseTimestamp(scannedAt)
		sum.Quality = model.Quality(quality)
		sum.Verified = verified != 0
		results = append(results, sum)
	}
	return results, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats are tried in order when reading a stored timestamp.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package archive keeps versioned copies of generated report files in a
// SQLite-backed store. Each version is an immutable file copy plus a
// metadata row.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/models"
	"github.com/pvlab/backend/pkg/logger"
)

type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens the version database and ensures the archive directory
// exists.
func NewStore(dbPath, archiveDir string) (*Store, error) {
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("Archive store initialized",
		zap.String("db", dbPath),
		zap.String("dir", archiveDir),
	)

	return &Store{db: db, dir: archiveDir}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS report_versions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id TEXT NOT NULL,
		version TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		changes TEXT,
		file_path TEXT NOT NULL,
		created_by TEXT,
		UNIQUE(report_id, version)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_report ON report_versions(report_id);
	CREATE INDEX IF NOT EXISTS idx_versions_created ON report_versions(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Archive schema initialized")
	return nil
}

// nextVersion bumps the minor number of the latest version, or starts at
// 1.0 for a new report.
func nextVersion(latest string) string {
	if latest == "" {
		return "1.0"
	}
	parts := strings.SplitN(latest, ".", 2)
	if len(parts) != 2 {
		return "1.0"
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return "1.0"
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

// CreateVersion copies the file into the archive and records a new version
// row. Versions bump minor numbers: 1.0, 1.1, 1.2, ...
func (s *Store) CreateVersion(ctx context.Context, reportID, filePath string, changes []string, createdBy string) (models.ReportVersion, error) {
	var version models.ReportVersion

	latest, err := s.GetLatest(ctx, reportID)
	if err != nil {
		return version, err
	}

	var latestNum string
	if latest != nil {
		latestNum = latest.Version
	}
	newVersion := nextVersion(latestNum)

	archivePath := filepath.Join(s.dir,
		fmt.Sprintf("%s_v%s%s", reportID, newVersion, filepath.Ext(filePath)))
	if err := copyFile(filePath, archivePath); err != nil {
		return version, fmt.Errorf("failed to archive file: %w", err)
	}

	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return version, fmt.Errorf("failed to encode changes: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO report_versions (report_id, version, created_at, changes, file_path, created_by)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reportID, newVersion, now.Unix(), string(changesJSON), archivePath, createdBy,
	)
	if err != nil {
		return version, fmt.Errorf("failed to insert version: %w", err)
	}

	id, _ := res.LastInsertId()
	version = models.ReportVersion{
		ID:        int(id),
		ReportID:  reportID,
		Version:   newVersion,
		CreatedAt: now,
		Changes:   changes,
		FilePath:  archivePath,
		CreatedBy: createdBy,
	}

	logger.Debug("Report version created",
		zap.String("report_id", reportID),
		zap.String("version", newVersion),
	)

	return version, nil
}

// GetVersions returns all versions of a report in creation order.
func (s *Store) GetVersions(ctx context.Context, reportID string) ([]models.ReportVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, version, created_at, changes, file_path, created_by
		FROM report_versions WHERE report_id = ? ORDER BY id ASC`, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ReportVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// GetVersion returns one specific version, or nil when absent.
func (s *Store) GetVersion(ctx context.Context, reportID, version string) (*models.ReportVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, version, created_at, changes, file_path, created_by
		FROM report_versions WHERE report_id = ? AND version = ?`, reportID, version)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetLatest returns the most recent version, or nil for an unknown report.
func (s *Store) GetLatest(ctx context.Context, reportID string) (*models.ReportVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, version, created_at, changes, file_path, created_by
		FROM report_versions WHERE report_id = ? ORDER BY id DESC LIMIT 1`, reportID)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Comparison is the side-by-side view of two versions.
type Comparison struct {
	Version1       models.ReportVersion `json:"version1"`
	Version2       models.ReportVersion `json:"version2"`
	TimeDifference float64              `json:"time_difference_seconds"`
}

func (s *Store) Compare(ctx context.Context, reportID, version1, version2 string) (*Comparison, error) {
	v1, err := s.GetVersion(ctx, reportID, version1)
	if err != nil {
		return nil, err
	}
	v2, err := s.GetVersion(ctx, reportID, version2)
	if err != nil {
		return nil, err
	}
	if v1 == nil || v2 == nil {
		return nil, fmt.Errorf("one or both versions not found")
	}

	return &Comparison{
		Version1:       *v1,
		Version2:       *v2,
		TimeDifference: v2.CreatedAt.Sub(v1.CreatedAt).Seconds(),
	}, nil
}

// DeleteVersion removes a version's archived file and metadata row.
func (s *Store) DeleteVersion(ctx context.Context, reportID, version string) (bool, error) {
	v, err := s.GetVersion(ctx, reportID, version)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}

	if err := os.Remove(v.FilePath); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to delete archived file: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM report_versions WHERE report_id = ? AND version = ?`,
		reportID, version,
	); err != nil {
		return false, fmt.Errorf("failed to delete version row: %w", err)
	}
	return true, nil
}

// ListReports returns the ids of all archived reports.
func (s *Store) ListReports(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT report_id FROM report_versions ORDER BY report_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan report id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Summary describes a report's version history at a glance.
type Summary struct {
	ReportID      string     `json:"report_id"`
	VersionCount  int        `json:"version_count"`
	FirstVersion  string     `json:"first_version,omitempty"`
	LatestVersion string     `json:"latest_version,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	TotalChanges  int        `json:"total_changes"`
}

func (s *Store) GetSummary(ctx context.Context, reportID string) (*Summary, error) {
	versions, err := s.GetVersions(ctx, reportID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{ReportID: reportID, VersionCount: len(versions)}
	if len(versions) == 0 {
		return summary, nil
	}

	first, last := versions[0], versions[len(versions)-1]
	summary.FirstVersion = first.Version
	summary.LatestVersion = last.Version
	summary.CreatedAt = &first.CreatedAt
	summary.LastUpdated = &last.CreatedAt
	for _, v := range versions {
		summary.TotalChanges += len(v.Changes)
	}
	return summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (models.ReportVersion, error) {
	var v models.ReportVersion
	var createdAt int64
	var changesJSON string

	err := row.Scan(&v.ID, &v.ReportID, &v.Version, &createdAt, &changesJSON, &v.FilePath, &v.CreatedBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return v, err
		}
		return v, fmt.Errorf("failed to scan version: %w", err)
	}

	v.CreatedAt = time.Unix(createdAt, 0).UTC()
	if changesJSON != "" {
		if err := json.Unmarshal([]byte(changesJSON), &v.Changes); err != nil {
			return v, fmt.Errorf("failed to decode changes: %w", err)
		}
	}
	return v, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"sound-classification/sound"
	"sound-classification/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// RunRecord is the registry row summarizing one training run. The full
// report lives in the report store; this table exists so past runs can
// be listed and compared without parsing every report file.
type RunRecord struct {
	ID           string
	StartedAt    string
	DatasetRoot  string
	SampleRate   int
	NumMFCC      int
	MaxFrames    int
	Seed         int64
	UsableFiles  int
	SkippedFiles int
	TrainCount   int
	TestCount    int
	TestAccuracy float64
	ReportPath   string
}

// RunRecordFromReport summarizes a training report into a registry row.
func RunRecordFromReport(report *sound.TrainingReport, reportPath string) RunRecord {
	return RunRecord{
		ID:           report.RunID,
		StartedAt:    report.StartedAt,
		DatasetRoot:  report.DatasetRoot,
		SampleRate:   report.SampleRate,
		NumMFCC:      report.NumMFCC,
		MaxFrames:    report.MaxFrames,
		Seed:         report.Seed,
		UsableFiles:  report.UsableFiles,
		SkippedFiles: len(report.SkippedFiles),
		TrainCount:   report.TrainCount,
		TestCount:    report.TestCount,
		TestAccuracy: report.TestAccuracy,
		ReportPath:   reportPath,
	}
}

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	// Create the directory if it doesn't exist (cross-platform)
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000" // 5 seconds
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	err = createTables(db)
	if err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteClient{db: db}, nil
}

// createTables creates the required tables if they don't exist
func createTables(db *sql.DB) error {
	createRunsTable := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        started_at TEXT NOT NULL,
        dataset_root TEXT NOT NULL,
        sample_rate INTEGER NOT NULL,
        num_mfcc INTEGER NOT NULL,
        max_frames INTEGER NOT NULL,
        seed INTEGER NOT NULL,
        usable_files INTEGER NOT NULL DEFAULT 0,
        skipped_files INTEGER NOT NULL DEFAULT 0,
        train_count INTEGER NOT NULL DEFAULT 0,
        test_count INTEGER NOT NULL DEFAULT 0,
        test_accuracy REAL NOT NULL DEFAULT 0,
        report_path TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
    `

	_, err := db.Exec(createRunsTable)
	if err != nil {
		return fmt.Errorf("error creating runs table: %s", err)
	}

	return nil
}

func (db *SQLiteClient) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// SaveRun inserts or replaces one run summary.
func (db *SQLiteClient) SaveRun(record RunRecord) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %s", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO runs (
			id, started_at, dataset_root, sample_rate, num_mfcc,
			max_frames, seed, usable_files, skipped_files, train_count,
			test_count, test_accuracy, report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %s", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(
		record.ID,
		record.StartedAt,
		record.DatasetRoot,
		record.SampleRate,
		record.NumMFCC,
		record.MaxFrames,
		record.Seed,
		record.UsableFiles,
		record.SkippedFiles,
		record.TrainCount,
		record.TestCount,
		record.TestAccuracy,
		record.ReportPath,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("error saving run: %s", err)
	}

	return tx.Commit()
}

const runColumns = `id, started_at, dataset_root, sample_rate, num_mfcc,
	max_frames, seed, usable_files, skipped_files, train_count,
	test_count, test_accuracy, report_path`

func scanRun(scan func(...any) error) (RunRecord, error) {
	var r RunRecord
	err := scan(
		&r.ID,
		&r.StartedAt,
		&r.DatasetRoot,
		&r.SampleRate,
		&r.NumMFCC,
		&r.MaxFrames,
		&r.Seed,
		&r.UsableFiles,
		&r.SkippedFiles,
		&r.TrainCount,
		&r.TestCount,
		&r.TestAccuracy,
		&r.ReportPath,
	)
	return r, err
}

// GetRun retrieves one run by id.
func (db *SQLiteClient) GetRun(id string) (RunRecord, bool, error) {
	row := db.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	record, err := scanRun(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, fmt.Errorf("failed to retrieve run: %s", err)
	}

	return record, true, nil
}

// ListRuns retrieves run summaries newest first. A non-positive limit
// returns everything.
func (db *SQLiteClient) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as no limit
	}
	rows, err := db.db.Query("SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("error querying runs: %s", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning run: %s", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func (db *SQLiteClient) TotalRuns() (int, error) {
	var count int
	err := db.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting runs: %s", err)
	}
	return count, nil
}

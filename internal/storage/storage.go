package storage

import (
	"bytes"
	"compress/zlib"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/xcreports/xcallure/internal/model"
)

//go:embed migrations/*.sql
var fs embed.FS

type Storage struct {
	db  *sqlx.DB
	log *slog.Logger
}

func New(dbFilename string, log *slog.Logger) (*Storage, error) {
	db, err := sqlx.Connect("sqlite", connectionString(dbFilename))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	row := db.QueryRow("select sqlite_version()")

	var version string
	err = row.Scan(&version)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve sqlite version: %w", err)
	}

	log.Info("Using sqlite version: " + version)

	s := &Storage{
		db:  db,
		log: log,
	}

	if err = s.migrateDB(db); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func connectionString(filename string) string {
	var cs string
	var options = []string{"_pragma=busy_timeout(5000)", "_pragma=journal_mode(WAL)", "_pragma=foreign_keys(1)", "_pragma=synchronous(normal)"}

	if filename != "" {
		cs = filename
	} else {
		cs = "file:" + randomAlphanumeric(16)
		options = append(options, "mode=memory", "cache=shared")
	}

	for i, o := range options {
		if i == 0 {
			cs += "?"
		} else {
			cs += "&"
		}
		cs += o
	}

	return cs
}

const alphaNumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphaNumericChars[rand.Intn(len(alphaNumericChars))]
	}
	return string(b)
}

func (s *Storage) migrateDB(db *sqlx.DB) error {
	d, err := iofs.New(fs, "migrations")
	if err != nil {
		return fmt.Errorf("load db migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("load migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate with instance: %w", err)
	}

	err = m.Up()

	if err == migrate.ErrNoChange {
		s.log.Info("No migrations have been applied. The DB is at the latest state.")
	} else if err != nil {
		return fmt.Errorf("applying db migrations: %w", err)
	}

	return nil
}

// InsertReport persists one converted report. The full record is stored
// zlib-compressed, the indexed columns exist for querying only.
func (s *Storage) InsertReport(ctx context.Context, r model.TestResult) error {
	payload, err := compressedPayload(r)
	if err != nil {
		return err
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO Report
	(uuid, historyId, testCaseId, name, fullName, status, startTime, stopTime, createdAt, compressedPayload) VALUES
	(:uuid, :historyId, :testCaseId, :name, :fullName, :status, :startTime, :stopTime, :createdAt, :payload)`,
		map[string]any{
			"uuid":       r.UUID,
			"historyId":  r.HistoryID,
			"testCaseId": r.TestCaseID,
			"name":       r.Name,
			"fullName":   r.FullName,
			"status":     r.Status,
			"startTime":  r.Start,
			"stopTime":   r.Stop,
			"createdAt":  timeFormat(time.Now()),
			"payload":    payload,
		})

	return err
}

func (s *Storage) LoadReport(ctx context.Context, uuid string) (model.TestResult, error) {
	r, err := s.db.QueryxContext(ctx, `SELECT compressedPayload FROM Report WHERE uuid = ?`, uuid)
	if err != nil {
		return model.TestResult{}, err
	}
	defer r.Close()

	if !r.Next() {
		return model.TestResult{}, model.NotFoundError{}
	}

	return scanReport(r)
}

func (s *Storage) LoadReportsByHistoryID(ctx context.Context, historyID string) ([]model.TestResult, error) {
	reports := []model.TestResult{}

	r, err := s.db.QueryxContext(ctx, `SELECT compressedPayload FROM Report WHERE historyId = ? ORDER BY startTime`, historyID)
	if err != nil {
		return reports, err
	}
	defer r.Close()

	for r.Next() {
		report, err := scanReport(r)
		if err != nil {
			return nil, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// DeleteReportsBefore removes reports created before the cutoff and returns
// the number of deleted rows.
func (s *Storage) DeleteReportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r, err := s.db.ExecContext(ctx, `DELETE FROM Report WHERE createdAt < ?`, timeFormat(cutoff))
	if err != nil {
		return 0, err
	}

	return r.RowsAffected()
}

func timeFormat(t time.Time) string {
	return t.Format(time.RFC3339)
}

func scanReport(r *sqlx.Rows) (model.TestResult, error) {
	var payload []byte

	if err := r.Scan(&payload); err != nil {
		return model.TestResult{}, fmt.Errorf("scanning report: %w", err)
	}

	return decompressedPayload(payload)
}

func compressedPayload(report model.TestResult) ([]byte, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal report: %w", err)
	}

	var compressed bytes.Buffer

	w := zlib.NewWriter(&compressed)

	_, err = w.Write(body)
	w.Close()

	return compressed.Bytes(), err
}

func decompressedPayload(payload []byte) (model.TestResult, error) {
	reader, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return model.TestResult{}, fmt.Errorf("decompress report: %w", err)
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return model.TestResult{}, fmt.Errorf("decompress report: %w", err)
	}

	var report model.TestResult

	if err := json.Unmarshal(body, &report); err != nil {
		return model.TestResult{}, fmt.Errorf("unable to unmarshal report: %w", err)
	}

	return report, nil
}

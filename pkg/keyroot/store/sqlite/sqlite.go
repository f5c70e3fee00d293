package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/roots"
	"github.com/cognicore/keyroot/pkg/keyroot/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	log *logrus.Entry
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
// A nil logger falls back to the standard logrus logger.
func OpenSQLite(ctx context.Context, path string, log *logrus.Entry) (store.Store, error) {
	if log == nil {
		log = logrus.WithField("component", "store")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	log.WithField("path", path).Debug("opened report store")
	return &sqliteStore{db: db, log: log}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	listing TEXT NOT NULL,
	created_at TEXT NOT NULL,
	keyword_count INTEGER NOT NULL DEFAULT 0,
	listing_volume INTEGER NOT NULL DEFAULT 0,
	body TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_listing ON reports(listing, id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// reportBody is the JSON column; summary fields live in their own columns.
type reportBody struct {
	Matched       []string           `json:"matched"`
	Units         []store.UnitReport `json:"units"`
	Roots         []roots.Summary    `json:"roots"`
	PriorityRoots []string           `json:"priority_roots"`
}

// SaveReport inserts or replaces a report
func (s *sqliteStore) SaveReport(ctx context.Context, r store.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report id is required", internalerr.ErrInvalidInput)
	}
	body, err := json.Marshal(reportBody{
		Matched:       r.Matched,
		Units:         r.Units,
		Roots:         r.Roots,
		PriorityRoots: r.PriorityRoots,
	})
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports (id, listing, created_at, keyword_count, listing_volume, body)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	listing=excluded.listing,
	created_at=excluded.created_at,
	keyword_count=excluded.keyword_count,
	listing_volume=excluded.listing_volume,
	body=excluded.body;
`, r.ID, r.Listing, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.KeywordCount, r.ListingVolume, string(body))
	if err != nil {
		return fmt.Errorf("save report %s: %w", r.ID, err)
	}
	s.log.WithFields(logrus.Fields{"id": r.ID, "listing": r.Listing}).Debug("saved report")
	return nil
}

// GetReport retrieves a report by ID
func (s *sqliteStore) GetReport(ctx context.Context, id string) (store.Report, error) {
	var (
		r       store.Report
		created string
		body    string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, listing, created_at, keyword_count, listing_volume, body
FROM reports
WHERE id = ?;
`, id).Scan(&r.ID, &r.Listing, &created, &r.KeywordCount, &r.ListingVolume, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Report{}, err
	}
	r.CreatedAt = parseTime(created)

	var b reportBody
	if err := json.Unmarshal([]byte(body), &b); err != nil {
		return store.Report{}, fmt.Errorf("decode report %s: %w", id, err)
	}
	r.Matched = b.Matched
	r.Roots = b.Roots
	r.Units = b.Units
	r.PriorityRoots = b.PriorityRoots
	return r, nil
}

// ListReports returns report summaries, newest first
func (s *sqliteStore) ListReports(ctx context.Context, listing string, limit int) ([]store.ReportInfo, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, listing, created_at, keyword_count, listing_volume
FROM reports
WHERE ? = '' OR listing = ?
ORDER BY id DESC
LIMIT ?;
`, listing, listing, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []store.ReportInfo
	for rows.Next() {
		var (
			info    store.ReportInfo
			created string
		)
		if err := rows.Scan(&info.ID, &info.Listing, &created, &info.KeywordCount, &info.ListingVolume); err != nil {
			return nil, err
		}
		info.CreatedAt = parseTime(created)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

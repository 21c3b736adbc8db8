package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/janekbaraniewski/calplot/internal/core"
)

const dayLayout = "2006-01-02"

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Dataset summarises one named series held by the store.
type Dataset struct {
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	First      time.Time `json:"first"`
	Last       time.Time `json:"last"`
	ImportedAt time.Time `json:"imported_at"`
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("source: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("source: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "sqlite3"), now: time.Now}
}

type observationRow struct {
	Day   string  `db:"day"`
	Value float64 `db:"value"`
	Label string  `db:"label"`
}

type datasetRow struct {
	Name       string `db:"dataset"`
	Rows       int    `db:"row_count"`
	First      string `db:"first_day"`
	Last       string `db:"last_day"`
	ImportedAt string `db:"imported_at"`
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			dataset TEXT NOT NULL,
			day TEXT NOT NULL,
			value REAL NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			imported_at TEXT NOT NULL,
			PRIMARY KEY (dataset, day)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_observations_day ON observations(day);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("source: init schema: %w", err)
		}
	}
	return nil
}

// Import upserts series into dataset. A day already present is overwritten,
// matching the last-wins rule for duplicates.
func (s *Store) Import(ctx context.Context, dataset string, series core.Series) (int, error) {
	if dataset == "" {
		return 0, fmt.Errorf("source: import: empty dataset name")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("source: begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO observations (dataset, day, value, label, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(dataset, day) DO UPDATE SET
			value = excluded.value,
			label = excluded.label,
			imported_at = excluded.imported_at`)
	if err != nil {
		return 0, fmt.Errorf("source: prepare import: %w", err)
	}
	defer stmt.Close()

	importedAt := s.now().UTC().Format(time.RFC3339)
	canonical := core.Canonicalize(series)
	for _, o := range canonical {
		if _, err := stmt.ExecContext(ctx, dataset, o.Date.Format(dayLayout), o.Value, o.Label, importedAt); err != nil {
			return 0, fmt.Errorf("source: import %s %s: %w", dataset, o.Date.Format(dayLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("source: commit import: %w", err)
	}
	return len(canonical), nil
}

// Observations returns the dataset's rows with from <= day <= to, ascending.
// A zero bound is open.
func (s *Store) Observations(ctx context.Context, dataset string, from, to time.Time) (core.Series, error) {
	query := `SELECT day, value, label FROM observations WHERE dataset = ?`
	args := []any{dataset}
	if !from.IsZero() {
		query += ` AND day >= ?`
		args = append(args, core.Day(from).Format(dayLayout))
	}
	if !to.IsZero() {
		query += ` AND day <= ?`
		args = append(args, core.Day(to).Format(dayLayout))
	}
	query += ` ORDER BY day`

	var rows []observationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("source: query observations: %w", err)
	}

	out := make(core.Series, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse(dayLayout, r.Day)
		if err != nil {
			return nil, fmt.Errorf("source: stored day %q: %w", r.Day, err)
		}
		out = append(out, core.Observation{Date: d, Value: r.Value, Label: r.Label})
	}
	return out, nil
}

func (s *Store) Datasets(ctx context.Context) ([]Dataset, error) {
	var rows []datasetRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT dataset, COUNT(*) AS row_count, MIN(day) AS first_day, MAX(day) AS last_day,
			MAX(imported_at) AS imported_at
		FROM observations
		GROUP BY dataset
		ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("source: query datasets: %w", err)
	}

	out := make([]Dataset, 0, len(rows))
	for _, r := range rows {
		ds := Dataset{Name: r.Name, Rows: r.Rows}
		ds.First, _ = time.Parse(dayLayout, r.First)
		ds.Last, _ = time.Parse(dayLayout, r.Last)
		ds.ImportedAt, _ = time.Parse(time.RFC3339, r.ImportedAt)
		out = append(out, ds)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, dataset string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE dataset = ?`, dataset)
	if err != nil {
		return 0, fmt.Errorf("source: delete %s: %w", dataset, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

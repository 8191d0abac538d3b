package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

//go:embed schema.sql
var schema string

// SQLiteStore stores lines in an SQLite database using the pure-Go
// modernc.org/sqlite driver. The schema is created on open.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writers; SQLite allows one at a time
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a private in-memory database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB returns the underlying database connection.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	var snap snapshot.Line
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM lines WHERE id = ?`, string(id),
	).Scan(&snap.ID, &snap.Name, &snap.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query line: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM stations WHERE line_id = ? ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	for rows.Next() {
		var st snapshot.Station
		if err := rows.Scan(&st.ID, &st.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan station: %w", err)
		}
		snap.Stations = append(snap.Stations, st)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT up_station, down_station, distance FROM sections WHERE line_id = ? ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sec snapshot.Section
		if err := rows.Scan(&sec.Up, &sec.Down, &sec.Distance); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		snap.Sections = append(snap.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}

	return snap.ToLine()
}

// Put replaces the line row and all of its station and section rows in one
// transaction.
func (s *SQLiteStore) Put(ctx context.Context, l *line.Line) error {
	snap := snapshot.FromLine(l)

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO lines (id, name, color) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, color = excluded.color`,
		snap.ID, snap.Name, snap.Color); err != nil {
		return fmt.Errorf("upsert line: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stations WHERE line_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear stations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE line_id = ?`, snap.ID); err != nil {
		return fmt.Errorf("clear sections: %w", err)
	}

	for i, st := range snap.Stations {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stations (line_id, position, id, name) VALUES (?, ?, ?, ?)`,
			snap.ID, i, st.ID, st.Name); err != nil {
			return fmt.Errorf("insert station %s: %w", st.ID, err)
		}
	}
	for i, sec := range snap.Sections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sections (line_id, position, up_station, down_station, distance) VALUES (?, ?, ?, ?, ?)`,
			snap.ID, i, sec.Up, sec.Down, sec.Distance); err != nil {
			return fmt.Errorf("insert section %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id line.LineID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM stations WHERE line_id = ?`,
		`DELETE FROM sections WHERE line_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, string(id)); err != nil {
			return fmt.Errorf("delete line rows: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*line.Line, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM lines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan line id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lines: %w", err)
	}

	return getAll(ctx, s, ids)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

// getAll loads each listed line. Lines deleted between the listing and the
// load are skipped.
func getAll(ctx context.Context, s Store, ids []string) ([]*line.Line, error) {
	out := make([]*line.Line, 0, len(ids))
	for _, id := range ids {
		l, err := s.Get(ctx, line.LineID(id))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

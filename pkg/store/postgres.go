package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// PostgresStore stores lines in PostgreSQL through a pgx connection pool.
// It shares its schema with [SQLiteStore].
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL, verifies the connection and
// applies the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	var snap snapshot.Line
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, color FROM lines WHERE id = $1`, string(id),
	).Scan(&snap.ID, &snap.Name, &snap.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query line: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM stations WHERE line_id = $1 ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	snap.Stations, err = pgx.CollectRows(rows, pgx.RowToStructByPos[snapshot.Station])
	if err != nil {
		return nil, fmt.Errorf("scan stations: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		`SELECT up_station, down_station, distance FROM sections WHERE line_id = $1 ORDER BY position`, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	snap.Sections, err = pgx.CollectRows(rows, pgx.RowToStructByPos[snapshot.Section])
	if err != nil {
		return nil, fmt.Errorf("scan sections: %w", err)
	}

	return snap.ToLine()
}

// Put replaces the line row and all of its station and section rows in one
// transaction. Child rows are sent as a single batch.
func (s *PostgresStore) Put(ctx context.Context, l *line.Line) error {
	snap := snapshot.FromLine(l)

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO lines (id, name, color) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, color = excluded.color`,
			snap.ID, snap.Name, snap.Color)
		batch.Queue(`DELETE FROM stations WHERE line_id = $1`, snap.ID)
		batch.Queue(`DELETE FROM sections WHERE line_id = $1`, snap.ID)
		for i, st := range snap.Stations {
			batch.Queue(`INSERT INTO stations (line_id, position, id, name) VALUES ($1, $2, $3, $4)`,
				snap.ID, i, st.ID, st.Name)
		}
		for i, sec := range snap.Sections {
			batch.Queue(`INSERT INTO sections (line_id, position, up_station, down_station, distance) VALUES ($1, $2, $3, $4, $5)`,
				snap.ID, i, sec.Up, sec.Down, sec.Distance)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("write line %s: %w", snap.ID, err)
		}
		return nil
	})
}

func (s *PostgresStore) Delete(ctx context.Context, id line.LineID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM stations WHERE line_id = $1`, string(id)); err != nil {
			return fmt.Errorf("delete stations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sections WHERE line_id = $1`, string(id)); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM lines WHERE id = $1`, string(id))
		if err != nil {
			return fmt.Errorf("delete line: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]*line.Line, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM lines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan line ids: %w", err)
	}
	return getAll(ctx, s, ids)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)

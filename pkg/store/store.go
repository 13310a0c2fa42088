// Package store persists search results in SQLite so earlier analyses can be
// listed and fetched again by ID.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/gomokuengine/pkg/engine"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrNotFound is returned when no analysis has the requested ID.
var ErrNotFound = errors.New("analysis not found")

// Analysis is one stored search result.
type Analysis struct {
	ID         string        `json:"id"`
	PositionID string        `json:"position_id"`
	Depth      int           `json:"depth"`
	HasMove    bool          `json:"has_move"`
	Move       engine.Move   `json:"move"`
	Score      int           `json:"score"`
	Nodes      int64         `json:"nodes"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Store is a SQLite-backed analysis log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	position_id TEXT NOT NULL,
	depth INTEGER NOT NULL,
	has_move INTEGER NOT NULL,
	move_row INTEGER NOT NULL,
	move_col INTEGER NOT NULL,
	score INTEGER NOT NULL,
	nodes INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS analyses_created_at ON analyses (created_at);
`

// Open opens (and if needed creates) the database at path.
// Use MemoryPath for a throwaway database.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a. A new ID and creation time are assigned when empty.
func (s *Store) Save(ctx context.Context, a *Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const insertSQL = `
	INSERT INTO analyses (id, position_id, depth, has_move, move_row, move_col, score, nodes, elapsed_ms, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, insertSQL,
		a.ID,
		a.PositionID,
		a.Depth,
		a.HasMove,
		a.Move.Row,
		a.Move.Col,
		a.Score,
		a.Nodes,
		a.Elapsed.Milliseconds(),
		a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving analysis %s: %w", a.ID, err)
	}
	return nil
}

const selectColumns = `id, position_id, depth, has_move, move_row, move_col, score, nodes, elapsed_ms, created_at`

// Get returns the analysis with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Analysis, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM analyses WHERE id = ?`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading analysis %s: %w", id, err)
	}
	return a, nil
}

// Recent returns up to limit analyses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		return []*Analysis{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	defer rows.Close()

	list := make([]*Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("listing analyses: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count returns the number of stored analyses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting analyses: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*Analysis, error) {
	var (
		a         Analysis
		elapsedMs int64
		createdMs int64
	)
	err := row.Scan(
		&a.ID,
		&a.PositionID,
		&a.Depth,
		&a.HasMove,
		&a.Move.Row,
		&a.Move.Col,
		&a.Score,
		&a.Nodes,
		&elapsedMs,
		&createdMs,
	)
	if err != nil {
		return nil, err
	}
	a.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	a.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &a, nil
}

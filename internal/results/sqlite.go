package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const createSummariesSQLite = `CREATE TABLE IF NOT EXISTS day_summaries (
    summary_id TEXT PRIMARY KEY,
    player TEXT NOT NULL,
    total_points INTEGER NOT NULL,
    payload TEXT NOT NULL,
    recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_day_summaries_points ON day_summaries(total_points DESC, recorded_at);`

// SQLite stores summaries in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = filepath.Join("data", "results.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// a single writer keeps modernc from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createSummariesSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Record(ctx context.Context, sum Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("sqlite: encode summary: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO day_summaries (summary_id, player, total_points, payload, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		sum.ID, sum.Player, sum.TotalPoints, string(payload), sum.RecordedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: insert summary %s: %w", sum.ID, err)
	}
	return nil
}

func (s *SQLite) Top(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM day_summaries ORDER BY total_points DESC, recorded_at ASC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("sqlite: query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		var sum Summary
		if err := json.Unmarshal([]byte(payload), &sum); err != nil {
			return nil, fmt.Errorf("sqlite: decode summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

const createSummariesPostgres = `CREATE TABLE IF NOT EXISTS day_summaries (
    summary_id TEXT PRIMARY KEY,
    player TEXT NOT NULL,
    total_points INTEGER NOT NULL,
    payload JSONB NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL
)`

// Postgres stores summaries in a shared database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool, verifies it and ensures the schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, createSummariesPostgres); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Record(ctx context.Context, sum Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("postgres: encode summary: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO day_summaries (summary_id, player, total_points, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sum.ID, sum.Player, sum.TotalPoints, payload, sum.RecordedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert summary %s: %w", sum.ID, err)
	}
	return nil
}

func (p *Postgres) Top(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT payload
		FROM day_summaries
		ORDER BY total_points DESC, recorded_at ASC
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("postgres: query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		var sum Summary
		if err := json.Unmarshal(payload, &sum); err != nil {
			return nil, fmt.Errorf("postgres: decode summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Package results records end-of-day summaries and serves the leaderboard.
package results

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"schedule_mastery/internal/models"
)

var ErrUnknownBackend = errors.New("unknown results backend")

// AircraftResult is the per-aircraft part of a day summary.
type AircraftResult struct {
	AircraftID    string           `json:"aircraft_id"`
	AircraftType  string           `json:"aircraft_type"`
	Points        int              `json:"points"`
	Trips         int              `json:"trips"`
	FlightMinutes int              `json:"flight_minutes"`
	Crews         []models.CrewKPI `json:"crews"`
}

// Summary is the closing report of a played day.
type Summary struct {
	ID          string           `json:"id"`
	Player      string           `json:"player"`
	TotalPoints int              `json:"total_points"`
	Aircraft    []AircraftResult `json:"aircraft"`
	RecordedAt  time.Time        `json:"recorded_at"`
}

// Store persists summaries. Top returns the best summaries, highest first;
// ties go to the earlier recording.
type Store interface {
	Record(ctx context.Context, s Summary) error
	Top(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend    string
	SQLitePath string
	Postgres   PostgresConfig
	Redis      RedisConfig
}

// Open builds the configured store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		return OpenPostgres(ctx, cfg.Postgres)
	case "redis":
		return OpenRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// Memory keeps summaries in process.
type Memory struct {
	mu        sync.Mutex
	summaries []Summary
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, s)
	return nil
}

func (m *Memory) Top(_ context.Context, limit int) ([]Summary, error) {
	m.mu.Lock()
	out := make([]Summary, len(m.summaries))
	copy(out, m.summaries)
	m.mu.Unlock()

	rank(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

func rank(list []Summary) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TotalPoints != list[j].TotalPoints {
			return list[i].TotalPoints > list[j].TotalPoints
		}
		return list[i].RecordedAt.Before(list[j].RecordedAt)
	})
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 10
	}
	return limit
}

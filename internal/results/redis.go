package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the Redis address in host:port format.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

const (
	leaderboardKey = "schedule:leaderboard"
	summariesKey   = "schedule:summaries"
)

// Redis keeps the leaderboard in a sorted set and payloads in a hash.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return NewRedis(client), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// rankScore orders by points, then earlier recordings first.
func rankScore(s Summary) float64 {
	return float64(s.TotalPoints)*1e10 + float64(1e10-s.RecordedAt.Unix()%1e10)
}

func (r *Redis) Record(ctx context.Context, sum Summary) error {
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("redis: encode summary: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, summariesKey, sum.ID, payload)
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: rankScore(sum), Member: sum.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: record summary %s: %w", sum.ID, err)
	}
	return nil
}

func (r *Redis) Top(ctx context.Context, limit int) ([]Summary, error) {
	ids, err := r.client.ZRevRange(ctx, leaderboardKey, 0, int64(normalizeLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: leaderboard: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	payloads, err := r.client.HMGet(ctx, summariesKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load summaries: %w", err)
	}

	out := make([]Summary, 0, len(payloads))
	for i, p := range payloads {
		raw, ok := p.(string)
		if !ok {
			// leaderboard entry without payload
			continue
		}
		var sum Summary
		if err := json.Unmarshal([]byte(raw), &sum); err != nil {
			return nil, fmt.Errorf("redis: decode summary %s: %w", ids[i], err)
		}
		out = append(out, sum)
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

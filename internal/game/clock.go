package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schedule_mastery/internal/models"
	"schedule_mastery/internal/results"
)

// StartDay starts or resumes the countdown. It does nothing once time is up.
func (e *Engine) StartDay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.expired {
		return
	}
	e.running = true
	e.startedAt = e.now()

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	ticker := time.NewTicker(e.tick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if e.tickDay() {
					return
				}
			}
		}
	}()
	e.addEventLocked("Day started")
}

// tickDay expires the day when the countdown reaches zero. It reports whether
// the clock stopped.
func (e *Engine) tickDay() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return true
	}
	if e.remainingLocked() > 0 {
		return false
	}
	e.stopClockLocked()
	e.remaining = 0
	e.expired = true
	e.addEventLocked("Time is up")
	e.logger.Info("day expired", zap.Int("total_points", e.totalLocked()))
	return true
}

// PauseDay stops the countdown, keeping the remaining time.
func (e *Engine) PauseDay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.remaining = e.remainingLocked()
	e.stopClockLocked()
	e.addEventLocked("Day paused")
}

func (e *Engine) stopClockLocked() {
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Remaining returns the time left on the day clock.
func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remainingLocked()
}

func (e *Engine) remainingLocked() time.Duration {
	if !e.running {
		return e.remaining
	}
	return max(e.remaining-e.now().Sub(e.startedAt), 0)
}

func (e *Engine) totalLocked() int {
	total := 0
	for _, day := range e.fleet {
		total += day.score.Points
	}
	return total
}

// FinishDay closes the day: it stops the clock, records the summary in the
// results store and starts a fresh day. On a store error the day is kept.
// Schedule mutations issued meanwhile wait and apply to the fresh day.
func (e *Engine) FinishDay(ctx context.Context, player string) (results.Summary, error) {
	e.dayMu.Lock()
	defer e.dayMu.Unlock()

	e.mu.Lock()
	if e.running {
		e.remaining = e.remainingLocked()
		e.stopClockLocked()
	}
	player = strings.TrimSpace(player)
	if player == "" {
		player = "anonymous"
	}
	sum := results.Summary{
		ID:          uuid.NewString(),
		Player:      player,
		TotalPoints: e.totalLocked(),
		RecordedAt:  e.now().UTC(),
	}
	for _, day := range e.fleet {
		sum.Aircraft = append(sum.Aircraft, results.AircraftResult{
			AircraftID:    day.aircraft.ID,
			AircraftType:  day.aircraft.Type,
			Points:        day.score.Points,
			Trips:         day.score.Trips,
			FlightMinutes: day.score.FlightMinutes,
			Crews:         append([]models.CrewKPI(nil), day.score.Crews...),
		})
	}
	e.mu.Unlock()

	if err := e.store.Record(ctx, sum); err != nil {
		e.logger.Error("failed to record day summary", zap.String("player", player), zap.Error(err))
		return results.Summary{}, fmt.Errorf("record summary: %w", err)
	}

	e.mu.Lock()
	e.resetLocked()
	e.addEventLocked(fmt.Sprintf("Day closed for %s: %d points", player, sum.TotalPoints))
	e.mu.Unlock()

	e.logger.Info("day recorded",
		zap.String("summary", sum.ID),
		zap.String("player", player),
		zap.Int("total_points", sum.TotalPoints),
	)
	return sum, nil
}

// Leaderboard returns the best recorded days.
func (e *Engine) Leaderboard(ctx context.Context, limit int) ([]results.Summary, error) {
	return e.store.Top(ctx, limit)
}

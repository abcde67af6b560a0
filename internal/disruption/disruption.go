// Package disruption fires random operational events against a running day
// and reverts their effects once they expire.
package disruption

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	Freeze       Kind = "freeze"
	Delay        Kind = "delay"
	CrewIllness  Kind = "crew_illness"
	CharterBonus Kind = "charter_bonus"
)

// Event is one disruption. Target is an aircraft id, or an airport code for
// delays. A zero Duration means the effect is never reverted.
type Event struct {
	Kind     Kind          `json:"kind"`
	Target   string        `json:"target"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Token identifies an applied effect.
type Token string

// Applier is the state an event is applied to. RevertDisruption must be a
// no-op for unknown or already reverted tokens.
type Applier interface {
	ApplyDisruption(ev Event) (Token, error)
	RevertDisruption(tok Token)
}

// Entry is a weighted table row.
type Entry struct {
	Event  Event
	Weight int
}

type Table []Entry

// DefaultTable returns the events of the Naples day. Effects last for
// effect; crew illness is permanent.
func DefaultTable(effect time.Duration) Table {
	return Table{
		{Event: Event{Kind: Delay, Target: "LGW", Message: "ATC delay at LGW (+15m)", Duration: effect}, Weight: 3},
		{Event: Event{Kind: Freeze, Target: "A1", Message: "A1 grounded for a technical check", Duration: effect}, Weight: 2},
		{Event: Event{Kind: CharterBonus, Target: "A3", Message: "Charter demand on A3 (+3 per outbound)", Duration: effect}, Weight: 2},
		{Event: Event{Kind: CrewIllness, Target: "A2", Message: "Crew illness on A2: last trip cancelled"}, Weight: 1},
	}
}

// Pick draws one event by weight. It returns false for an empty table.
func (t Table) Pick(r *rand.Rand) (Event, bool) {
	total := 0
	for _, e := range t {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	if total == 0 {
		return Event{}, false
	}
	n := r.Intn(total)
	for _, e := range t {
		if e.Weight <= 0 {
			continue
		}
		if n < e.Weight {
			return e.Event, true
		}
		n -= e.Weight
	}
	return Event{}, false
}

// Config controls the firing cadence.
type Config struct {
	Interval time.Duration
	Jitter   time.Duration
}

// Scheduler fires one event per interval (plus up to Jitter) while started.
type Scheduler struct {
	applier Applier
	table   Table
	cfg     Config
	logger  *zap.Logger
	active  func() bool

	mu      sync.Mutex
	rng     *rand.Rand
	cancel  context.CancelFunc
	done    chan struct{}
	pending map[Token]*time.Timer
}

func NewScheduler(applier Applier, table Table, cfg Config, logger *zap.Logger, rng *rand.Rand) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Scheduler{
		applier: applier,
		table:   table,
		cfg:     cfg,
		logger:  logger,
		rng:     rng,
		pending: make(map[Token]*time.Timer),
	}
}

// SetGate makes ticks fire only while gate reports true.
func (s *Scheduler) SetGate(gate func() bool) {
	s.active = gate
}

func (s *Scheduler) next() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.cfg.Interval
	if s.cfg.Jitter > 0 {
		d += time.Duration(s.rng.Int63n(int64(s.cfg.Jitter) + 1))
	}
	return d
}

// Start runs the firing loop until ctx is cancelled or Stop is called.
// Starting a started scheduler restarts its loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.stopLoop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	ticker := time.NewTicker(s.next())
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.active == nil || s.active() {
					if _, _, err := s.Fire(); err != nil {
						s.logger.Warn("disruption rejected", zap.Error(err))
					}
				}
				ticker.Reset(s.next())
			}
		}
	}()
}

// Fire applies one randomly drawn event now and schedules its revert.
func (s *Scheduler) Fire() (Event, Token, error) {
	s.mu.Lock()
	ev, ok := s.table.Pick(s.rng)
	s.mu.Unlock()
	if !ok {
		return Event{}, "", fmt.Errorf("disruption: empty table")
	}
	tok, err := s.Apply(ev)
	return ev, tok, err
}

// Apply applies ev and arms its revert timer.
func (s *Scheduler) Apply(ev Event) (Token, error) {
	tok, err := s.applier.ApplyDisruption(ev)
	if err != nil {
		return "", fmt.Errorf("disruption %s on %s: %w", ev.Kind, ev.Target, err)
	}
	s.logger.Info("disruption applied",
		zap.String("kind", string(ev.Kind)),
		zap.String("target", ev.Target),
		zap.Duration("duration", ev.Duration),
		zap.String("token", string(tok)),
	)
	if tok == "" || ev.Duration <= 0 {
		return tok, nil
	}

	s.mu.Lock()
	s.pending[tok] = time.AfterFunc(ev.Duration, func() { s.revert(tok) })
	s.mu.Unlock()
	return tok, nil
}

func (s *Scheduler) revert(tok Token) {
	s.mu.Lock()
	delete(s.pending, tok)
	s.mu.Unlock()
	s.applier.RevertDisruption(tok)
	s.logger.Info("disruption reverted", zap.String("token", string(tok)))
}

// Pending returns the number of effects waiting to be reverted.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Scheduler) stopLoop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Stop ends the firing loop and reverts every outstanding effect.
func (s *Scheduler) Stop() {
	s.stopLoop()

	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[Token]*time.Timer)
	s.mu.Unlock()

	for tok, timer := range pending {
		if timer.Stop() {
			s.applier.RevertDisruption(tok)
		}
	}
}

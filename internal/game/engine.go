package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"schedule_mastery/internal/catalog"
	"schedule_mastery/internal/crew"
	"schedule_mastery/internal/disruption"
	"schedule_mastery/internal/models"
	"schedule_mastery/internal/planner"
	"schedule_mastery/internal/results"
	"schedule_mastery/internal/scoring"
)

const (
	defaultDayLength = 20 * time.Minute
	maxEvents        = 20
)

// Engine owns every aircraft timeline, the route inventory, active
// disruptions and the day clock. Each exported mutation is one transaction
// under mu: it either commits completely or leaves the schedule untouched.
type Engine struct {
	// dayMu is held shared by schedule mutations and exclusively by
	// FinishDay, so nothing lands between recording a day and resetting it.
	dayMu     sync.RWMutex
	mu        sync.Mutex
	catalog   *catalog.Catalog
	planner   *planner.Planner
	store     results.Store
	logger    *zap.Logger
	fleet     []*aircraftDay
	byID      map[string]*aircraftDay
	inventory map[string]int
	effects   []effect
	events    []string

	dayLength time.Duration
	tick      time.Duration
	remaining time.Duration
	startedAt time.Time
	running   bool
	expired   bool
	now       func() time.Time
	cancel    context.CancelFunc
}

type aircraftDay struct {
	aircraft models.Aircraft
	segments []models.Segment
	crew     models.CrewState
	score    models.Score
}

type effect struct {
	token disruption.Token
	event disruption.Event
}

func NewEngine(cat *catalog.Catalog, pl *planner.Planner, store results.Store, logger *zap.Logger) *Engine {
	if cat == nil {
		cat = catalog.Default()
	}
	if pl == nil {
		pl = planner.New()
	}
	if store == nil {
		store = results.NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog:   cat,
		planner:   pl,
		store:     store,
		logger:    logger,
		dayLength: defaultDayLength,
		tick:      time.Second,
		now:       time.Now,
	}
	e.resetLocked()
	return e
}

// SetDayLength configures the countdown used by the next day.
func (e *Engine) SetDayLength(d time.Duration) {
	if d <= 0 {
		d = defaultDayLength
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dayLength = d
	if !e.running {
		e.remaining = d
	}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// resetLocked starts a fresh day: empty timelines and full inventory.
// Active disruptions survive; their reverts are owned by the scheduler.
func (e *Engine) resetLocked() {
	fleet := e.catalog.Fleet()
	e.fleet = make([]*aircraftDay, 0, len(fleet))
	e.byID = make(map[string]*aircraftDay, len(fleet))
	for _, ac := range fleet {
		day := &aircraftDay{aircraft: ac}
		e.commitLocked(day, nil)
		e.fleet = append(e.fleet, day)
		e.byID[strings.ToUpper(ac.ID)] = day
	}
	e.inventory = e.catalog.Inventory()
	e.remaining = e.dayLength
	e.expired = false
}

// lockForUpdate takes the locks a schedule mutation needs and returns the
// matching unlock.
func (e *Engine) lockForUpdate() func() {
	e.dayMu.RLock()
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		e.dayMu.RUnlock()
	}
}

func (e *Engine) dayLocked(aircraftID string) (*aircraftDay, error) {
	day, ok := e.byID[strings.ToUpper(strings.TrimSpace(aircraftID))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", aircraftID, models.ErrUnknownAircraft)
	}
	return day, nil
}

// commitLocked is the single end of every successful mutation: sort, drop
// stale crew-change markers, store, then derive crew state and score.
func (e *Engine) commitLocked(day *aircraftDay, segments []models.Segment) {
	sorted := cloneSegments(segments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	starts := make(map[int]bool, len(sorted))
	for _, s := range sorted {
		if s.Kind != models.KindCrewChange {
			starts[s.Start] = true
		}
	}
	kept := sorted[:0]
	for _, s := range sorted {
		if s.Kind == models.KindCrewChange && !starts[s.End] {
			continue
		}
		kept = append(kept, s)
	}

	day.segments = kept
	st := crew.Recompute(kept)
	st.PendingChange = day.crew.PendingChange
	st.PendingCrewIndex = day.crew.PendingCrewIndex
	day.crew = st
	day.score = scoring.Score(kept)
}

func (e *Engine) addEventLocked(msg string) {
	if msg == "" {
		return
	}
	e.events = append(e.events, msg)
	if len(e.events) > maxEvents {
		e.events = e.events[len(e.events)-maxEvents:]
	}
}

// Snapshot returns a deep copy of the whole game state.
func (e *Engine) Snapshot() models.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := models.GameState{
		Fleet:        make([]models.AircraftState, 0, len(e.fleet)),
		Inventory:    e.inventoryLocked(),
		Disruptions:  e.disruptionsLocked(),
		IsRunning:    e.running,
		RemainingSec: int(e.remainingLocked().Seconds()),
		RecentEvents: append([]string(nil), e.events...),
	}
	for _, day := range e.fleet {
		st.Fleet = append(st.Fleet, day.stateCopy())
		st.TotalPoints += day.score.Points
	}
	return st
}

func (d *aircraftDay) stateCopy() models.AircraftState {
	sc := d.score
	sc.Crews = append([]models.CrewKPI(nil), d.score.Crews...)
	return models.AircraftState{
		Aircraft: d.aircraft,
		Segments: cloneSegments(d.segments),
		Crew:     d.crew,
		Score:    sc,
	}
}

// Aircraft returns the committed state of one aircraft.
func (e *Engine) Aircraft(aircraftID string) (models.AircraftState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return models.AircraftState{}, err
	}
	return day.stateCopy(), nil
}

func (e *Engine) Score(aircraftID string) (models.Score, error) {
	st, err := e.Aircraft(aircraftID)
	return st.Score, err
}

func (e *Engine) Crew(aircraftID string) (models.CrewState, error) {
	st, err := e.Aircraft(aircraftID)
	return st.Crew, err
}

// Inventory returns the remaining trips per route id.
func (e *Engine) Inventory() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inventoryLocked()
}

func (e *Engine) inventoryLocked() map[string]int {
	out := make(map[string]int, len(e.inventory))
	for k, v := range e.inventory {
		out[k] = v
	}
	return out
}

// TotalScore sums points over the fleet.
func (e *Engine) TotalScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	scores := make([]models.Score, 0, len(e.fleet))
	for _, day := range e.fleet {
		scores = append(scores, day.score)
	}
	return scoring.Total(scores...)
}

func cloneSegments(in []models.Segment) []models.Segment {
	out := make([]models.Segment, len(in))
	copy(out, in)
	return out
}

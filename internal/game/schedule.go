package game

import (
	"fmt"

	"go.uber.org/zap"

	"schedule_mastery/internal/crew"
	"schedule_mastery/internal/models"
	"schedule_mastery/internal/planner"
	"schedule_mastery/internal/scoring"
	"schedule_mastery/internal/timeline"
)

// Placement describes a trip that was, or in a preview would be, committed.
type Placement struct {
	AircraftID string          `json:"aircraft_id"`
	Trip       models.Trip     `json:"trip"`
	Gap        *models.Segment `json:"crew_change_gap,omitempty"`
	CrewIndex  int             `json:"crew_index"`
	CrewChange bool            `json:"crew_change"`
	Automatic  bool            `json:"automatic"`
	Reason     string          `json:"reason,omitempty"`
	Score      models.Score    `json:"score"`
}

// placeInput is everything a placement needs, copied out of the engine.
type placeInput struct {
	aircraft models.Aircraft
	existing []models.Segment
	crew     models.CrewState
	route    models.Route
	desired  int
	charter  bool
}

// place plans a trip, resolves crew limits and checks the aircraft duty cap.
// It returns the placement and the full segment list to commit; in.existing
// is never modified.
func place(pl *planner.Planner, in placeInput) (Placement, []models.Segment, error) {
	req := planner.Request{
		Existing:     in.existing,
		Route:        in.route,
		AircraftType: in.aircraft.Type,
		DesiredStart: in.desired,
	}
	trip, err := pl.Plan(req)
	if err != nil {
		return Placement{}, nil, err
	}

	dec, err := crew.Decide(in.crew, trip)
	if err != nil {
		return Placement{}, nil, err
	}

	out := Placement{
		AircraftID: in.aircraft.ID,
		CrewIndex:  dec.Target,
		CrewChange: dec.Change,
		Automatic:  dec.Automatic,
		Reason:     dec.Reason,
	}
	var gap *models.Segment
	if dec.Change {
		req.DesiredStart = trip.Start() + models.CrewChangeGap
		req.Lead = models.CrewChangeGap
		trip, err = pl.Plan(req)
		if err != nil {
			return Placement{}, nil, fmt.Errorf("crew change to %d: %w", dec.Target, err)
		}
		if !gapEndsAt(in.existing, trip.Start()) {
			g := pl.CrewChangeGap(trip.Start())
			gap = &g
		}
	}

	trip = trip.WithCrew(dec.Target)
	trip.Outbound.Charter = in.charter

	segments := cloneSegments(in.existing)
	if gap != nil {
		segments = append(segments, *gap)
	}
	segments = append(segments, trip.Segments()...)

	duty := 0
	for _, s := range segments {
		duty += s.Duration()
	}
	if duty > models.AircraftDutyCap {
		return Placement{}, nil, fmt.Errorf("%s would reach %s: %w",
			in.aircraft.ID, timeline.FormatDuration(duty), models.ErrDutyCapExceeded)
	}

	out.Trip = trip
	out.Gap = gap
	out.Score = scoring.Score(segments)
	return out, segments, nil
}

func gapEndsAt(segments []models.Segment, end int) bool {
	for _, s := range segments {
		if s.Kind == models.KindCrewChange && s.End == end {
			return true
		}
	}
	return false
}

// prepareLocked runs the checks shared by Add and Preview and copies the
// placement input out of the engine.
func (e *Engine) prepareLocked(aircraftID, routeID string, desiredStart *int) (*aircraftDay, placeInput, error) {
	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return nil, placeInput{}, err
	}
	if e.frozenLocked(day.aircraft.ID) {
		return nil, placeInput{}, fmt.Errorf("%s: %w", day.aircraft.ID, models.ErrAircraftUnavailable)
	}
	route, ok := e.catalog.Route(routeID)
	if !ok {
		return nil, placeInput{}, fmt.Errorf("%s: %w", routeID, models.ErrUnknownRoute)
	}
	if e.inventory[route.ID] <= 0 {
		return nil, placeInput{}, fmt.Errorf("%s: %w", route.ID, models.ErrResourceExhausted)
	}

	desired := models.DayStart
	if desiredStart != nil {
		desired = timeline.SnapToGrid(*desiredStart)
	} else if n := len(day.segments); n > 0 {
		desired = day.segments[n-1].End
	}
	if delayed := e.delayedAirportLocked(); delayed != "" && (route.From == delayed || route.To == delayed) {
		desired += models.AirportDelay
	}

	return day, placeInput{
		aircraft: day.aircraft,
		existing: cloneSegments(day.segments),
		crew:     day.crew,
		route:    route,
		desired:  desired,
		charter:  e.charterLocked(day.aircraft.ID),
	}, nil
}

// Add places a round trip on an aircraft at or after desiredStart. A nil
// desiredStart continues from the end of the aircraft's last segment.
func (e *Engine) Add(aircraftID, routeID string, desiredStart *int) (Placement, error) {
	defer e.lockForUpdate()()

	day, in, err := e.prepareLocked(aircraftID, routeID, desiredStart)
	if err != nil {
		return Placement{}, err
	}
	p, segments, err := place(e.planner, in)
	if err != nil {
		e.logger.Info("placement rejected",
			zap.String("aircraft", in.aircraft.ID),
			zap.String("route", in.route.ID),
			zap.Int("desired", in.desired),
			zap.Error(err),
		)
		return Placement{}, err
	}

	day.crew.PendingChange = false
	day.crew.PendingCrewIndex = 0
	e.commitLocked(day, segments)
	e.inventory[in.route.ID]--
	p.Score = day.score

	if p.CrewChange {
		e.addEventLocked(fmt.Sprintf("%s: crew %d takes over at %s (%s)",
			in.aircraft.ID, p.CrewIndex, timeline.FormatClock(p.Trip.Start()), p.Reason))
	}
	e.addEventLocked(fmt.Sprintf("%s: %s-%s %s-%s",
		in.aircraft.ID, in.route.From, in.route.To,
		timeline.FormatClock(p.Trip.Start()), timeline.FormatClock(p.Trip.End())))
	e.logger.Debug("trip committed",
		zap.String("aircraft", in.aircraft.ID),
		zap.String("trip", p.Trip.ID),
		zap.Int("start", p.Trip.Start()),
		zap.Int("crew", p.CrewIndex),
	)
	return p, nil
}

// Preview simulates Add without committing anything. Identifiers are
// sequential per call, so identical inputs give identical previews.
func (e *Engine) Preview(aircraftID, routeID string, desiredStart *int) (Placement, error) {
	e.mu.Lock()
	_, in, err := e.prepareLocked(aircraftID, routeID, desiredStart)
	e.mu.Unlock()
	if err != nil {
		return Placement{}, err
	}

	n := 0
	pl := planner.NewWithIDs(func() string {
		n++
		return fmt.Sprintf("preview-%d", n)
	})
	p, _, err := place(pl, in)
	return p, err
}

// Delete removes the trip that segmentID belongs to and returns its route
// unit to the inventory. Deleting a crew-change gap removes only the gap.
func (e *Engine) Delete(aircraftID, segmentID string) error {
	defer e.lockForUpdate()()

	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return err
	}
	var target *models.Segment
	for i := range day.segments {
		if day.segments[i].ID == segmentID {
			target = &day.segments[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%s on %s: %w", segmentID, day.aircraft.ID, models.ErrSegmentNotFound)
	}

	if target.Kind == models.KindCrewChange {
		id := target.ID
		e.commitLocked(day, without(day.segments, func(s models.Segment) bool { return s.ID == id }))
		e.addEventLocked(fmt.Sprintf("%s: crew change marker removed", day.aircraft.ID))
		return nil
	}
	e.removeTripLocked(day, target.TripID)
	return nil
}

func (e *Engine) removeTripLocked(day *aircraftDay, tripID string) {
	var routeID, label string
	for _, s := range day.segments {
		if s.TripID == tripID && s.Kind == models.KindOutbound {
			routeID = s.RouteID
			label = fmt.Sprintf("%s-%s %s", s.From, s.To, timeline.FormatClock(s.Start))
		}
	}
	e.commitLocked(day, without(day.segments, func(s models.Segment) bool {
		return s.TripID == tripID && s.Kind != models.KindCrewChange
	}))
	if routeID != "" {
		e.inventory[routeID]++
	}
	e.addEventLocked(fmt.Sprintf("%s: %s removed", day.aircraft.ID, label))
}

// RescheduleTripStart moves a whole trip so its outbound leg departs at
// newStart, keeping every leg duration.
func (e *Engine) RescheduleTripStart(aircraftID, tripID string, newStart int) (models.Trip, error) {
	defer e.lockForUpdate()()

	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return models.Trip{}, err
	}
	trip, ok := tripOf(day.segments, tripID)
	if !ok {
		return models.Trip{}, fmt.Errorf("%s on %s: %w", tripID, day.aircraft.ID, models.ErrTripNotFound)
	}

	delta := newStart - trip.Start()
	moved := trip
	for _, s := range []*models.Segment{&moved.Outbound, &moved.Turnaround, &moved.Inbound} {
		s.Start += delta
		s.End += delta
	}
	if moved.Start() < models.DayStart || moved.End() > models.Curfew {
		return models.Trip{}, fmt.Errorf("%s to %s: %w", tripID, timeline.FormatClock(max(newStart, 0)), models.ErrInfeasible)
	}

	// the handover marker in front of the trip travels with it
	attached := func(s models.Segment) bool {
		return s.Kind == models.KindCrewChange && s.End == trip.Start()
	}
	others := without(day.segments, func(s models.Segment) bool {
		return (s.TripID == tripID && s.Kind != models.KindCrewChange) || attached(s)
	})
	for _, s := range others {
		if timeline.Overlaps(moved.Start(), moved.End(), s.Start, s.End) {
			return models.Trip{}, fmt.Errorf("%s at %s: %w", tripID, timeline.FormatClock(newStart), models.ErrOverlapDetected)
		}
	}

	next := append(others, moved.Segments()...)
	if delta == 0 {
		for _, s := range day.segments {
			if attached(s) {
				next = append(next, s)
			}
		}
	}
	e.commitLocked(day, next)
	e.addEventLocked(fmt.Sprintf("%s: trip moved to %s", day.aircraft.ID, timeline.FormatClock(newStart)))
	return moved, nil
}

// ArmCrewChange requests that the next placement on the aircraft hands over
// to crewIndex, clamped to the crews the aircraft may use.
func (e *Engine) ArmCrewChange(aircraftID string, crewIndex int) (models.CrewState, error) {
	defer e.lockForUpdate()()

	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return models.CrewState{}, err
	}
	target := crew.Clamp(crewIndex)
	if target <= day.crew.CrewIndex {
		return models.CrewState{}, fmt.Errorf("crew %d already on duty: %w", day.crew.CrewIndex, models.ErrCrewChangeInvalid)
	}
	day.crew.PendingChange = true
	day.crew.PendingCrewIndex = target
	e.addEventLocked(fmt.Sprintf("%s: crew change to crew %d armed", day.aircraft.ID, target))
	return day.crew, nil
}

// DisarmCrewChange cancels an armed crew change.
func (e *Engine) DisarmCrewChange(aircraftID string) (models.CrewState, error) {
	defer e.lockForUpdate()()

	day, err := e.dayLocked(aircraftID)
	if err != nil {
		return models.CrewState{}, err
	}
	day.crew.PendingChange = false
	day.crew.PendingCrewIndex = 0
	return day.crew, nil
}

func tripOf(segments []models.Segment, tripID string) (models.Trip, bool) {
	t := models.Trip{ID: tripID}
	found := 0
	for _, s := range segments {
		if s.TripID != tripID {
			continue
		}
		switch s.Kind {
		case models.KindOutbound:
			t.Outbound = s
		case models.KindTurnaround:
			t.Turnaround = s
		case models.KindInbound:
			t.Inbound = s
		default:
			continue
		}
		found++
	}
	return t, found == 3
}

func without(segments []models.Segment, drop func(models.Segment) bool) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, s := range segments {
		if !drop(s) {
			out = append(out, s)
		}
	}
	return out
}

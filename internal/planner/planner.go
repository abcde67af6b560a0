// Package planner places round trips into the free time of an aircraft day.
package planner

import (
	"fmt"

	"github.com/google/uuid"

	"schedule_mastery/internal/models"
	"schedule_mastery/internal/timeline"
)

// Request describes a trip to be placed on one aircraft.
type Request struct {
	Existing     []models.Segment
	Route        models.Route
	AircraftType string
	DesiredStart int
	// Lead keeps this many minutes free in front of the outbound leg, inside
	// the same window. Used to fit a crew-change gap.
	Lead int
}

// IDFunc generates trip and segment identifiers.
type IDFunc func() string

// Planner is stateless apart from its id source and safe for concurrent use.
type Planner struct {
	newID IDFunc
}

// New returns a planner that uses random UUIDs for ids.
func New() *Planner {
	return &Planner{newID: uuid.NewString}
}

// NewWithIDs returns a planner using ids for identifiers.
func NewWithIDs(ids IDFunc) *Planner {
	if ids == nil {
		ids = uuid.NewString
	}
	return &Planner{newID: ids}
}

// Span returns the minutes a trip on route needs: out, turn, back.
func Span(route models.Route, aircraftType string) int {
	return 2*route.BlockMinutes + route.TurnMinutes(aircraftType)
}

// Plan finds the earliest feasible start at or after the desired start and
// returns the three contiguous trip segments. It never mutates req.Existing.
func (p *Planner) Plan(req Request) (models.Trip, error) {
	block := req.Route.BlockMinutes
	if block <= 0 {
		return models.Trip{}, fmt.Errorf("route %s has no block time: %w", req.Route.ID, models.ErrInfeasible)
	}
	turn := req.Route.TurnMinutes(req.AircraftType)
	span := 2*block + turn
	lead := max(req.Lead, 0)

	for _, w := range timeline.FreeWindows(req.Existing) {
		if w.Len() < span+lead {
			continue
		}
		lower := max(w.Start+lead, req.DesiredStart)
		start := timeline.CeilToGrid(lower)
		end := start + span
		if end > w.End || end > models.Curfew {
			continue
		}
		return p.build(req.Route, start, block, turn), nil
	}
	return models.Trip{}, fmt.Errorf("%s at %s: %w", req.Route.ID, timeline.FormatClock(max(req.DesiredStart, 0)), models.ErrInfeasible)
}

// CrewChangeGap returns the handover marker that ends at end. Gaps carry
// their own trip id and no crew.
func (p *Planner) CrewChangeGap(end int) models.Segment {
	return models.Segment{
		ID:     p.newID(),
		TripID: p.newID(),
		Kind:   models.KindCrewChange,
		Start:  end - models.CrewChangeGap,
		End:    end,
	}
}

func (p *Planner) build(route models.Route, start, block, turn int) models.Trip {
	tripID := p.newID()
	outEnd := start + block
	inStart := outEnd + turn
	return models.Trip{
		ID: tripID,
		Outbound: models.Segment{
			ID:           p.newID(),
			TripID:       tripID,
			Kind:         models.KindOutbound,
			Start:        start,
			End:          outEnd,
			From:         route.From,
			To:           route.To,
			BlockMinutes: block,
			RouteType:    route.Type,
			RouteID:      route.ID,
		},
		Turnaround: models.Segment{
			ID:      p.newID(),
			TripID:  tripID,
			Kind:    models.KindTurnaround,
			Start:   outEnd,
			End:     inStart,
			From:    route.To,
			To:      route.To,
			RouteID: route.ID,
		},
		Inbound: models.Segment{
			ID:           p.newID(),
			TripID:       tripID,
			Kind:         models.KindInbound,
			Start:        inStart,
			End:          inStart + block,
			From:         route.To,
			To:           route.From,
			BlockMinutes: block,
			RouteType:    route.Type,
			RouteID:      route.ID,
		},
	}
}

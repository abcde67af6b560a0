// Package scoring turns a committed aircraft timeline into points and KPIs.
package scoring

import (
	"sort"

	"schedule_mastery/internal/crew"
	"schedule_mastery/internal/models"
)

// Scoring table.
const (
	MinLegPoints       = 2
	MaxLegPoints       = 8
	LegPointMinutes    = 30
	UtilizationMinutes = 480
	UtilizationBonus   = 10
	LateDutyPenalty    = 5
	CurfewPenalty      = 10
	IdleStepMinutes    = 30
	CharterBonus       = 3
)

var routeTypeBonus = map[models.RouteType]int{
	models.RouteDomestic: 0,
	models.RouteHolidays: 1,
	models.RouteLeisure:  2,
}

// LegPoints scores one flown sector.
func LegPoints(s models.Segment) int {
	block := s.Duration()
	if s.BlockMinutes > 0 {
		block = s.BlockMinutes
	}
	pts := min(max(block/LegPointMinutes, MinLegPoints), MaxLegPoints)
	pts += routeTypeBonus[s.RouteType]
	if s.Charter && s.Kind == models.KindOutbound {
		pts += CharterBonus
	}
	return pts
}

// Score computes points and KPIs for one aircraft.
func Score(segments []models.Segment) models.Score {
	var sc models.Score

	work := make([]models.Segment, 0, len(segments))
	trips := make(map[string]bool)
	for _, s := range segments {
		if s.Kind == models.KindCrewChange {
			continue
		}
		work = append(work, s)
		trips[s.TripID] = true
		sc.DutyMinutes += s.Duration()
		if s.Kind.IsFlight() {
			sc.FlightMinutes += s.Duration()
			sc.Points += LegPoints(s)
		}
	}
	sc.Trips = len(trips)
	sc.Crews = crew.KPIs(segments)
	if len(work) == 0 {
		return sc
	}
	sort.Slice(work, func(i, j int) bool { return work[i].Start < work[j].Start })

	if sc.FlightMinutes >= UtilizationMinutes {
		sc.Points += UtilizationBonus
	}

	lastArrival := 0
	curfew := false
	for i, s := range work {
		if s.Kind.IsFlight() && s.End > lastArrival {
			lastArrival = s.End
		}
		if s.Start < models.CurfewOpen || s.Start >= models.Curfew || s.End < models.CurfewOpen || s.End >= models.Curfew {
			curfew = true
		}
		if i > 0 && s.Start > work[i-1].End {
			sc.IdleMinutes += s.Start - work[i-1].End
		}
	}
	if lastArrival > models.LateArrival {
		sc.Points -= LateDutyPenalty
	}
	if curfew {
		sc.Points -= CurfewPenalty
	}
	sc.Points -= sc.IdleMinutes / IdleStepMinutes
	return sc
}

// Total sums fleet points.
func Total(scores ...models.Score) int {
	total := 0
	for _, s := range scores {
		total += s.Points
	}
	return total
}

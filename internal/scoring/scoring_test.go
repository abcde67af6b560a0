package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"schedule_mastery/internal/models"
)

func trip(id string, start, block, turn int, rt models.RouteType, crew int) []models.Segment {
	return []models.Segment{
		{TripID: id, Kind: models.KindOutbound, Start: start, End: start + block, BlockMinutes: block, RouteType: rt, CrewIndex: crew},
		{TripID: id, Kind: models.KindTurnaround, Start: start + block, End: start + block + turn, CrewIndex: crew},
		{TripID: id, Kind: models.KindInbound, Start: start + block + turn, End: start + 2*block + turn, BlockMinutes: block, RouteType: rt, CrewIndex: crew},
	}
}

func TestLegPoints(t *testing.T) {
	tests := []struct {
		name string
		seg  models.Segment
		want int
	}{
		{"short leg floors at two", models.Segment{Kind: models.KindOutbound, BlockMinutes: 40, RouteType: models.RouteDomestic}, 2},
		{"65 minutes", models.Segment{Kind: models.KindOutbound, BlockMinutes: 65, RouteType: models.RouteDomestic}, 2},
		{"105 minutes holidays", models.Segment{Kind: models.KindInbound, BlockMinutes: 105, RouteType: models.RouteHolidays}, 4},
		{"175 minutes leisure", models.Segment{Kind: models.KindOutbound, BlockMinutes: 175, RouteType: models.RouteLeisure}, 7},
		{"long leg caps at eight", models.Segment{Kind: models.KindOutbound, BlockMinutes: 400}, 8},
		{"charter outbound", models.Segment{Kind: models.KindOutbound, BlockMinutes: 65, Charter: true}, 5},
		{"charter counts once per trip", models.Segment{Kind: models.KindInbound, BlockMinutes: 65, Charter: true}, 2},
		{"falls back to duration", models.Segment{Kind: models.KindOutbound, Start: 360, End: 480}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LegPoints(tc.seg))
		})
	}
}

func TestScoreEmpty(t *testing.T) {
	sc := Score(nil)
	assert.Equal(t, 0, sc.Points)
	assert.Equal(t, 0, sc.Trips)
	assert.Empty(t, sc.Crews)
}

func TestScoreSingleTrip(t *testing.T) {
	sc := Score(trip("t1", 360, 65, 35, models.RouteDomestic, 1))
	assert.Equal(t, 4, sc.Points)
	assert.Equal(t, 130, sc.FlightMinutes)
	assert.Equal(t, 165, sc.DutyMinutes)
	assert.Equal(t, 1, sc.Trips)
	assert.Len(t, sc.Crews, 1)
}

func TestScoreIdlePenalty(t *testing.T) {
	segs := append(trip("t1", 360, 65, 35, models.RouteDomestic, 1), trip("t2", 600, 65, 35, models.RouteDomestic, 1)...)
	sc := Score(segs)
	// 525 -> 600 is 75 idle minutes: two full steps.
	assert.Equal(t, 75, sc.IdleMinutes)
	assert.Equal(t, 8-2, sc.Points)
}

func TestScoreIgnoresCrewChangeGapForIdle(t *testing.T) {
	segs := trip("t1", 360, 65, 35, models.RouteDomestic, 1)
	segs = append(segs, models.Segment{TripID: "gap", Kind: models.KindCrewChange, Start: 525, End: 535})
	segs = append(segs, trip("t2", 535, 65, 35, models.RouteDomestic, 2)...)
	sc := Score(segs)
	assert.Equal(t, 10, sc.IdleMinutes)
	assert.Equal(t, 8, sc.Points)
	assert.Equal(t, 2, sc.Trips)
	assert.Len(t, sc.Crews, 2)
}

func TestScoreUtilizationBonus(t *testing.T) {
	var segs []models.Segment
	// two LGW rotations: 4 x 175 = 700 flight minutes
	segs = append(segs, trip("t1", 360, 175, 35, models.RouteLeisure, 1)...)
	segs = append(segs, trip("t2", 745, 175, 35, models.RouteLeisure, 2)...)
	sc := Score(segs)
	assert.Equal(t, 700, sc.FlightMinutes)
	assert.Equal(t, 0, sc.IdleMinutes)
	// 4 legs x (5 + 2) + 10 utilization, last arrival 1130
	assert.Equal(t, 38, sc.Points)
}

func TestScoreLateAndCurfewPenalties(t *testing.T) {
	late := Score(trip("t1", 1200, 65, 35, models.RouteDomestic, 1)) // ends 1365
	assert.Equal(t, 4-LateDutyPenalty, late.Points)

	atCurfew := Score(trip("t1", 1215, 65, 35, models.RouteDomestic, 1)) // ends exactly 1380
	assert.Equal(t, 4-LateDutyPenalty-CurfewPenalty, atCurfew.Points)
	assert.Equal(t, -11, atCurfew.Points)

	beforeCurfew := Score(trip("t1", 1210, 65, 35, models.RouteDomestic, 1)) // ends 1375
	assert.Equal(t, 4-LateDutyPenalty, beforeCurfew.Points)

	past := Score(trip("t1", 1230, 65, 35, models.RouteDomestic, 1)) // ends 1395
	assert.Equal(t, 4-LateDutyPenalty-CurfewPenalty, past.Points)

	early := Score(trip("t1", 300, 65, 35, models.RouteDomestic, 1))
	assert.Equal(t, 4-CurfewPenalty, early.Points)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 7, Total(models.Score{Points: 4}, models.Score{Points: 3}))
	assert.Equal(t, 0, Total())
}

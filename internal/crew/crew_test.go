package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule_mastery/internal/models"
)

func leg(kind models.SegmentKind, start, end, crew int) models.Segment {
	return models.Segment{Kind: kind, Start: start, End: end, CrewIndex: crew}
}

func tripAt(start, block, turn int) models.Trip {
	return models.Trip{
		Outbound:   models.Segment{Kind: models.KindOutbound, Start: start, End: start + block},
		Turnaround: models.Segment{Kind: models.KindTurnaround, Start: start + block, End: start + block + turn},
		Inbound:    models.Segment{Kind: models.KindInbound, Start: start + block + turn, End: start + 2*block + turn},
	}
}

func TestRecomputeEmpty(t *testing.T) {
	st := Recompute(nil)
	assert.Equal(t, models.CrewState{CrewIndex: 1, DutyStart: -1}, st)
}

func TestRecomputeUsesHighestCrew(t *testing.T) {
	segments := []models.Segment{
		leg(models.KindOutbound, 360, 425, 1),
		leg(models.KindTurnaround, 425, 460, 1),
		leg(models.KindInbound, 460, 525, 1),
		{Kind: models.KindCrewChange, Start: 600, End: 610},
		leg(models.KindOutbound, 610, 675, 2),
		leg(models.KindTurnaround, 675, 710, 2),
		leg(models.KindInbound, 710, 775, 2),
	}
	st := Recompute(segments)
	assert.Equal(t, 2, st.CrewIndex)
	assert.Equal(t, 2, st.Sectors)
	assert.Equal(t, 610, st.DutyStart)
}

func TestRecomputeTreatsUntaggedLegsAsFirstCrew(t *testing.T) {
	st := Recompute([]models.Segment{
		leg(models.KindOutbound, 500, 560, 0),
		leg(models.KindInbound, 600, 660, 0),
	})
	assert.Equal(t, 1, st.CrewIndex)
	assert.Equal(t, 2, st.Sectors)
	assert.Equal(t, 500, st.DutyStart)
}

func TestDutyLimit(t *testing.T) {
	assert.Equal(t, 420, DutyLimit(360))
	assert.Equal(t, 420, DutyLimit(419))
	assert.Equal(t, 600, DutyLimit(420))
	assert.Equal(t, 600, DutyLimit(900))
}

func TestMandatory(t *testing.T) {
	tests := []struct {
		name   string
		state  models.CrewState
		trip   models.Trip
		want   bool
		reason string
	}{
		{
			name:  "fresh crew",
			state: models.CrewState{CrewIndex: 1, DutyStart: -1},
			trip:  tripAt(360, 65, 35),
		},
		{
			name:  "two sectors flown still fits",
			state: models.CrewState{CrewIndex: 1, Sectors: 2, DutyStart: 480},
			trip:  tripAt(700, 65, 35),
		},
		{
			name:   "sector cap",
			state:  models.CrewState{CrewIndex: 1, Sectors: 4, DutyStart: 480},
			trip:   tripAt(1000, 65, 35),
			want:   true,
			reason: ReasonSectors,
		},
		{
			name:   "early start limit",
			state:  models.CrewState{CrewIndex: 1, Sectors: 2, DutyStart: 360},
			trip:   tripAt(620, 65, 35), // ends 785, 425 after 360
			want:   true,
			reason: ReasonDuty,
		},
		{
			name:  "early start at limit",
			state: models.CrewState{CrewIndex: 1, Sectors: 2, DutyStart: 360},
			trip:  tripAt(615, 65, 35), // ends 780, exactly 420
		},
		{
			name:   "normal duty limit",
			state:  models.CrewState{CrewIndex: 1, Sectors: 2, DutyStart: 480},
			trip:   tripAt(920, 65, 35), // ends 1085, 605 after 480
			want:   true,
			reason: ReasonDuty,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Mandatory(tc.state, tc.trip)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestDecide(t *testing.T) {
	t.Run("automatic change to crew two", func(t *testing.T) {
		d, err := Decide(models.CrewState{CrewIndex: 1, Sectors: 4, DutyStart: 480}, tripAt(1000, 65, 35))
		require.NoError(t, err)
		assert.True(t, d.Change)
		assert.True(t, d.Automatic)
		assert.Equal(t, 2, d.Target)
		assert.Equal(t, ReasonSectors, d.Reason)
	})

	t.Run("third crew is refused", func(t *testing.T) {
		_, err := Decide(models.CrewState{CrewIndex: 2, Sectors: 4, DutyStart: 700}, tripAt(1000, 65, 35))
		assert.ErrorIs(t, err, models.ErrCrewLimitReached)
	})

	t.Run("manual change when nothing is mandatory", func(t *testing.T) {
		st := models.CrewState{CrewIndex: 1, Sectors: 2, DutyStart: 480, PendingChange: true, PendingCrewIndex: 2}
		d, err := Decide(st, tripAt(700, 65, 35))
		require.NoError(t, err)
		assert.True(t, d.Change)
		assert.False(t, d.Automatic)
		assert.Equal(t, 2, d.Target)
		assert.Equal(t, ReasonManual, d.Reason)
	})

	t.Run("manual target is clamped", func(t *testing.T) {
		st := models.CrewState{CrewIndex: 1, DutyStart: -1, PendingChange: true, PendingCrewIndex: 7}
		d, err := Decide(st, tripAt(700, 65, 35))
		require.NoError(t, err)
		assert.Equal(t, 2, d.Target)
	})

	t.Run("automatic wins over manual, one change only", func(t *testing.T) {
		st := models.CrewState{CrewIndex: 1, Sectors: 4, DutyStart: 480, PendingChange: true, PendingCrewIndex: 2}
		d, err := Decide(st, tripAt(1000, 65, 35))
		require.NoError(t, err)
		assert.True(t, d.Automatic)
		assert.Equal(t, 2, d.Target)
	})

	t.Run("manual target not above current crew is void", func(t *testing.T) {
		st := models.CrewState{CrewIndex: 2, Sectors: 2, DutyStart: 700, PendingChange: true, PendingCrewIndex: 2}
		d, err := Decide(st, tripAt(900, 65, 35))
		require.NoError(t, err)
		assert.False(t, d.Change)
		assert.Equal(t, 2, d.Target)
	})
}

func TestKPIs(t *testing.T) {
	segments := []models.Segment{
		leg(models.KindOutbound, 360, 425, 1),
		leg(models.KindTurnaround, 425, 460, 1),
		leg(models.KindInbound, 460, 525, 1),
		leg(models.KindOutbound, 560, 625, 1),
		leg(models.KindTurnaround, 625, 660, 1),
		leg(models.KindInbound, 660, 725, 1),
		leg(models.KindOutbound, 760, 825, 1),
		leg(models.KindInbound, 860, 925, 1),
		{Kind: models.KindCrewChange, Start: 1000, End: 1010},
		leg(models.KindOutbound, 1010, 1075, 2),
		leg(models.KindInbound, 1110, 1175, 2),
	}
	kpis := KPIs(segments)
	require.Len(t, kpis, 2)

	assert.Equal(t, 1, kpis[0].CrewIndex)
	assert.Equal(t, 6, kpis[0].Sectors)
	assert.Equal(t, 565, kpis[0].DutyMinutes)
	assert.Equal(t, 420, kpis[0].LimitMinutes)
	assert.Equal(t, 6*65, kpis[0].FlightMinutes)
	assert.True(t, kpis[0].SectorsOver)
	assert.True(t, kpis[0].DutyOver)

	assert.Equal(t, 2, kpis[1].CrewIndex)
	assert.Equal(t, 2, kpis[1].Sectors)
	assert.Equal(t, 165, kpis[1].DutyMinutes)
	assert.Equal(t, 600, kpis[1].LimitMinutes)
	assert.False(t, kpis[1].SectorsOver)
	assert.False(t, kpis[1].DutyOver)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3))
	assert.Equal(t, 1, Clamp(1))
	assert.Equal(t, 2, Clamp(2))
	assert.Equal(t, 2, Clamp(3))
}

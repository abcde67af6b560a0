package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule_mastery/internal/models"
)

func seg(start, end int) models.Segment {
	return models.Segment{Start: start, End: end}
}

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 360},
		{359, 360},
		{360, 360},
		{362, 360},
		{363, 365},
		{527, 525},
		{528, 530},
		{1000, 1000},
	}
	for _, tc := range tests {
		got := SnapToGrid(tc.in)
		assert.Equal(t, tc.want, got, "SnapToGrid(%d)", tc.in)
		assert.Equal(t, got, SnapToGrid(got), "SnapToGrid must be idempotent for %d", tc.in)
	}
}

func TestCeilToGrid(t *testing.T) {
	assert.Equal(t, 360, CeilToGrid(100))
	assert.Equal(t, 525, CeilToGrid(525))
	assert.Equal(t, 530, CeilToGrid(526))
	assert.Equal(t, 405, CeilToGrid(401))
}

func TestFreeWindows(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.Segment
		want     []Window
	}{
		{
			name: "empty day",
			want: []Window{{360, 1380}},
		},
		{
			name:     "single trip at day start",
			segments: []models.Segment{seg(360, 425), seg(425, 460), seg(460, 525)},
			want:     []Window{{525, 1380}},
		},
		{
			name:     "unsorted with gap",
			segments: []models.Segment{seg(700, 800), seg(400, 500), seg(500, 550)},
			want:     []Window{{360, 400}, {550, 700}, {800, 1380}},
		},
		{
			name:     "overlapping busy intervals merge",
			segments: []models.Segment{seg(400, 600), seg(450, 500), seg(590, 650)},
			want:     []Window{{360, 400}, {650, 1380}},
		},
		{
			name:     "busy until curfew",
			segments: []models.Segment{seg(360, 1380)},
			want:     nil,
		},
		{
			name:     "busy interval before day start is clipped",
			segments: []models.Segment{seg(330, 380)},
			want:     []Window{{380, 1380}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FreeWindows(tc.segments)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFreeWindowsPartitionOperatingDay(t *testing.T) {
	segments := []models.Segment{seg(365, 420), seg(600, 640), seg(640, 700), seg(1300, 1380)}
	free := FreeWindows(segments)

	covered := 0
	for i, w := range free {
		require.Greater(t, w.End, w.Start)
		if i > 0 {
			require.LessOrEqual(t, free[i-1].End, w.Start)
		}
		covered += w.Len()
	}
	for _, b := range Busy(segments) {
		covered += b.Len()
	}
	assert.Equal(t, models.Curfew-models.DayStart, covered)
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("01:05")
	require.NoError(t, err)
	assert.Equal(t, 65, got)

	got, err = ParseClock("6:00")
	require.NoError(t, err)
	assert.Equal(t, 360, got)

	for _, bad := range []string{"", "10", "aa:bb", "10:75", "-1:00"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, "ParseClock(%q)", bad)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "06:00", FormatClock(360))
	assert.Equal(t, "22:30", FormatClock(1350))
	assert.Equal(t, "7h 05m", FormatDuration(425))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(360, 425, 400, 500))
	assert.False(t, Overlaps(360, 425, 425, 460))
	assert.False(t, Overlaps(500, 600, 360, 500))
}

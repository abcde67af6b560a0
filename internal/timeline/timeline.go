// Package timeline holds minute-resolution time arithmetic for the operating
// day: grid snapping, clock parsing and free-window discovery.
package timeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"schedule_mastery/internal/models"
)

// Window is a half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) Len() int { return w.End - w.Start }

// SnapToGrid rounds minute to the nearest grid boundary, never earlier than
// the start of the operating day. Add applies it to an explicit drop minute.
func SnapToGrid(minute int) int {
	if minute < models.DayStart {
		return models.DayStart
	}
	snapped := ((minute + models.GridMinutes/2) / models.GridMinutes) * models.GridMinutes
	if snapped < models.DayStart {
		return models.DayStart
	}
	return snapped
}

// CeilToGrid returns the first grid boundary at or after minute. The planner
// searches with it so a trip never starts before the requested minute.
func CeilToGrid(minute int) int {
	if minute < models.DayStart {
		return models.DayStart
	}
	if rem := minute % models.GridMinutes; rem != 0 {
		return minute + models.GridMinutes - rem
	}
	return minute
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Busy merges segments into maximal busy intervals, sorted by start.
// Touching intervals are merged.
func Busy(segments []models.Segment) []Window {
	if len(segments) == 0 {
		return nil
	}
	sorted := make([]Window, 0, len(segments))
	for _, s := range segments {
		sorted = append(sorted, Window{Start: s.Start, End: s.End})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Window{sorted[0]}
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// FreeWindows returns the gaps between busy intervals inside the operating day
// [DayStart, Curfew). The windows are disjoint and ordered by start.
func FreeWindows(segments []models.Segment) []Window {
	var free []Window
	cursor := models.DayStart
	for _, b := range Busy(segments) {
		if b.End <= cursor {
			continue
		}
		if b.Start >= models.Curfew {
			break
		}
		if b.Start > cursor {
			free = append(free, Window{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor < models.Curfew {
		free = append(free, Window{Start: cursor, End: models.Curfew})
	}
	return free
}

// ParseClock parses "H:MM" or "HH:MM" into minutes.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if h < 0 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes as HH:MM.
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// FormatDuration renders minutes as "7h 05m".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

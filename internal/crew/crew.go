// Package crew derives crew duty state from a committed timeline and decides
// when a placement needs a crew change.
package crew

import (
	"fmt"
	"sort"

	"schedule_mastery/internal/models"
)

// Reasons reported with a crew change.
const (
	ReasonSectors = "sector cap"
	ReasonDuty    = "duty limit"
	ReasonManual  = "manual request"
)

// Decision is the outcome of evaluating a tentative trip against crew limits.
type Decision struct {
	Change    bool
	Automatic bool
	Target    int
	Reason    string
}

// DutyLimit returns the allowed duty span for a crew starting at dutyStart.
func DutyLimit(dutyStart int) int {
	if dutyStart < models.EarlyStartLimit {
		return models.EarlyDutyLimit
	}
	return models.DutyLimit
}

// Clamp bounds a requested crew index to the crews an aircraft may use.
func Clamp(index int) int {
	if index < 1 {
		return 1
	}
	if index > models.MaxCrews {
		return models.MaxCrews
	}
	return index
}

// Recompute derives the crew state from scratch. The current crew is the
// highest crew index that flies a sector; its sectors and duty start come from
// its own legs. Pending flags are left zero for the caller to restore.
func Recompute(segments []models.Segment) models.CrewState {
	st := models.CrewState{CrewIndex: 1, DutyStart: -1}
	for _, s := range segments {
		if s.Kind.IsFlight() && s.CrewIndex > st.CrewIndex {
			st.CrewIndex = s.CrewIndex
		}
	}
	for _, s := range segments {
		if !s.Kind.IsFlight() || crewOf(s) != st.CrewIndex {
			continue
		}
		st.Sectors++
		if st.DutyStart < 0 || s.Start < st.DutyStart {
			st.DutyStart = s.Start
		}
	}
	return st
}

// Mandatory reports whether flying trip with the current crew would break the
// sector cap or the duty limit, and which one.
func Mandatory(st models.CrewState, trip models.Trip) (bool, string) {
	if st.Sectors+2 > models.MaxSectors {
		return true, ReasonSectors
	}
	dutyStart := trip.Start()
	if st.DutyStart >= 0 && st.DutyStart < dutyStart {
		dutyStart = st.DutyStart
	}
	if trip.End()-dutyStart > DutyLimit(dutyStart) {
		return true, ReasonDuty
	}
	return false, ""
}

// Decide evaluates a tentatively planned trip. An automatic change takes
// precedence over an armed manual one; a placement gets at most one change.
func Decide(st models.CrewState, trip models.Trip) (Decision, error) {
	if must, reason := Mandatory(st, trip); must {
		if st.CrewIndex >= models.MaxCrews {
			return Decision{}, fmt.Errorf("crew %d: %s: %w", st.CrewIndex, reason, models.ErrCrewLimitReached)
		}
		return Decision{Change: true, Automatic: true, Target: st.CrewIndex + 1, Reason: reason}, nil
	}
	if st.PendingChange {
		target := Clamp(st.PendingCrewIndex)
		if target > st.CrewIndex {
			return Decision{Change: true, Target: target, Reason: ReasonManual}, nil
		}
	}
	return Decision{Target: st.CrewIndex}, nil
}

// KPIs reports duty figures per crew, ordered by crew index.
func KPIs(segments []models.Segment) []models.CrewKPI {
	byCrew := make(map[int]*models.CrewKPI)
	for _, s := range segments {
		if !s.Kind.IsFlight() {
			continue
		}
		idx := crewOf(s)
		k, ok := byCrew[idx]
		if !ok {
			k = &models.CrewKPI{CrewIndex: idx, DutyStart: s.Start, DutyEnd: s.End}
			byCrew[idx] = k
		}
		k.Sectors++
		k.FlightMinutes += s.Duration()
		if s.Start < k.DutyStart {
			k.DutyStart = s.Start
		}
		if s.End > k.DutyEnd {
			k.DutyEnd = s.End
		}
	}

	out := make([]models.CrewKPI, 0, len(byCrew))
	for _, k := range byCrew {
		k.DutyMinutes = k.DutyEnd - k.DutyStart
		k.LimitMinutes = DutyLimit(k.DutyStart)
		k.SectorsOver = k.Sectors > models.MaxSectors
		k.DutyOver = k.DutyMinutes > k.LimitMinutes
		out = append(out, *k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CrewIndex < out[j].CrewIndex })
	return out
}

// legs without a crew tag belong to the first crew
func crewOf(s models.Segment) int {
	if s.CrewIndex < 1 {
		return 1
	}
	return s.CrewIndex
}

package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"schedule_mastery/internal/disruption"
	"schedule_mastery/internal/models"
)

// ApplyDisruption applies ev and returns the token that reverts it. Crew
// illness cancels the aircraft's last trip, cannot be reverted and returns
// an empty token.
func (e *Engine) ApplyDisruption(ev disruption.Event) (disruption.Token, error) {
	defer e.lockForUpdate()()

	target := strings.ToUpper(strings.TrimSpace(ev.Target))
	switch ev.Kind {
	case disruption.Delay:
		if target == "" {
			return "", fmt.Errorf("delay without airport")
		}
	case disruption.Freeze, disruption.CharterBonus:
		if _, err := e.dayLocked(target); err != nil {
			return "", err
		}
	case disruption.CrewIllness:
		day, err := e.dayLocked(target)
		if err != nil {
			return "", err
		}
		e.addEventLocked(message(ev))
		if tripID := lastTripID(day.segments); tripID != "" {
			e.removeTripLocked(day, tripID)
		}
		return "", nil
	default:
		return "", fmt.Errorf("unknown disruption kind %q", ev.Kind)
	}

	ev.Target = target
	tok := disruption.Token(uuid.NewString())
	e.effects = append(e.effects, effect{token: tok, event: ev})
	e.addEventLocked(message(ev))
	return tok, nil
}

// RevertDisruption ends the effect behind tok. Unknown tokens are ignored.
func (e *Engine) RevertDisruption(tok disruption.Token) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, ef := range e.effects {
		if ef.token != tok {
			continue
		}
		e.effects = append(e.effects[:i], e.effects[i+1:]...)
		e.addEventLocked(fmt.Sprintf("%s on %s cleared", ef.event.Kind, ef.event.Target))
		e.logger.Debug("effect reverted", zap.String("token", string(tok)))
		return
	}
}

func message(ev disruption.Event) string {
	if ev.Message != "" {
		return ev.Message
	}
	return fmt.Sprintf("%s on %s", ev.Kind, ev.Target)
}

func lastTripID(segments []models.Segment) string {
	last, id := -1, ""
	for _, s := range segments {
		if s.Kind == models.KindOutbound && s.Start > last {
			last, id = s.Start, s.TripID
		}
	}
	return id
}

func (e *Engine) frozenLocked(aircraftID string) bool {
	return e.hasEffectLocked(disruption.Freeze, aircraftID)
}

func (e *Engine) charterLocked(aircraftID string) bool {
	return e.hasEffectLocked(disruption.CharterBonus, aircraftID)
}

func (e *Engine) hasEffectLocked(kind disruption.Kind, target string) bool {
	for _, ef := range e.effects {
		if ef.event.Kind == kind && strings.EqualFold(ef.event.Target, target) {
			return true
		}
	}
	return false
}

// delayedAirportLocked returns the most recently delayed airport.
func (e *Engine) delayedAirportLocked() string {
	for i := len(e.effects) - 1; i >= 0; i-- {
		if e.effects[i].event.Kind == disruption.Delay {
			return e.effects[i].event.Target
		}
	}
	return ""
}

func (e *Engine) disruptionsLocked() models.Disruptions {
	d := models.Disruptions{
		FrozenAircraft: []string{},
		DelayedAirport: e.delayedAirportLocked(),
		CharterBonus:   []string{},
	}
	seen := make(map[string]bool)
	for _, ef := range e.effects {
		key := string(ef.event.Kind) + "/" + ef.event.Target
		if seen[key] {
			continue
		}
		seen[key] = true
		switch ef.event.Kind {
		case disruption.Freeze:
			d.FrozenAircraft = append(d.FrozenAircraft, ef.event.Target)
		case disruption.CharterBonus:
			d.CharterBonus = append(d.CharterBonus, ef.event.Target)
		}
	}
	sort.Strings(d.FrozenAircraft)
	sort.Strings(d.CharterBonus)
	return d
}

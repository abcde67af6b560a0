// Package catalog loads the static route inventory, turnaround table and
// fleet that a scheduling day is played with.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"schedule_mastery/internal/models"
	"schedule_mastery/internal/timeline"
)

//go:embed default.yaml
var defaultYAML []byte

type file struct {
	Routes []struct {
		ID        string `yaml:"id"`
		From      string `yaml:"from"`
		To        string `yaml:"to"`
		Block     string `yaml:"block"`
		Type      string `yaml:"type"`
		Requested int    `yaml:"requested"`
	} `yaml:"routes"`
	TurnTimes map[string]map[string]int `yaml:"turn_times"`
	Fleet     []models.Aircraft         `yaml:"fleet"`
}

// Catalog is the read-only inventory for a day.
type Catalog struct {
	routes    []models.Route
	byID      map[string]models.Route
	turnTimes map[string]map[string]int
	fleet     []models.Aircraft
}

// Default returns the embedded Naples catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path yields Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("catalog: no routes")
	}
	if len(f.Fleet) == 0 {
		return nil, fmt.Errorf("catalog: no fleet")
	}

	c := &Catalog{
		byID:      make(map[string]models.Route, len(f.Routes)),
		turnTimes: make(map[string]map[string]int, len(f.TurnTimes)),
	}
	for ap, byType := range f.TurnTimes {
		c.turnTimes[strings.ToUpper(ap)] = byType
	}
	for _, r := range f.Routes {
		id := strings.ToUpper(strings.TrimSpace(r.ID))
		if id == "" {
			return nil, fmt.Errorf("catalog: route without id")
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog: duplicate route %s", id)
		}
		block, err := timeline.ParseClock(r.Block)
		if err != nil || block <= 0 {
			return nil, fmt.Errorf("catalog: route %s: bad block %q", id, r.Block)
		}
		to := strings.ToUpper(r.To)
		route := models.Route{
			ID:           id,
			From:         strings.ToUpper(r.From),
			To:           to,
			BlockMinutes: block,
			Type:         models.RouteType(r.Type),
			Requested:    r.Requested,
			TurnTimes:    c.turnTimes[to],
		}
		c.routes = append(c.routes, route)
		c.byID[id] = route
	}

	seen := make(map[string]bool, len(f.Fleet))
	for _, ac := range f.Fleet {
		ac.ID = strings.ToUpper(strings.TrimSpace(ac.ID))
		if ac.ID == "" || ac.Type == "" {
			return nil, fmt.Errorf("catalog: aircraft needs id and type")
		}
		if seen[ac.ID] {
			return nil, fmt.Errorf("catalog: duplicate aircraft %s", ac.ID)
		}
		seen[ac.ID] = true
		c.fleet = append(c.fleet, ac)
	}
	return c, nil
}

func (c *Catalog) Routes() []models.Route {
	out := make([]models.Route, len(c.routes))
	copy(out, c.routes)
	return out
}

func (c *Catalog) Route(id string) (models.Route, bool) {
	r, ok := c.byID[strings.ToUpper(strings.TrimSpace(id))]
	return r, ok
}

func (c *Catalog) Fleet() []models.Aircraft {
	out := make([]models.Aircraft, len(c.fleet))
	copy(out, c.fleet)
	return out
}

// TurnMinutes returns the minimum ground time at airport for aircraftType.
func (c *Catalog) TurnMinutes(airport, aircraftType string) int {
	if m, ok := c.turnTimes[strings.ToUpper(airport)][aircraftType]; ok && m > 0 {
		return m
	}
	return models.DefaultTurnMin
}

// Inventory returns a fresh remaining-count map keyed by route id.
func (c *Catalog) Inventory() map[string]int {
	inv := make(map[string]int, len(c.routes))
	for _, r := range c.routes {
		inv[r.ID] = r.Requested
	}
	return inv
}

// Airports lists every airport code used by the routes, sorted.
func (c *Catalog) Airports() []string {
	set := make(map[string]bool)
	for _, r := range c.routes {
		set[r.From] = true
		set[r.To] = true
	}
	out := make([]string, 0, len(set))
	for ap := range set {
		out = append(out, ap)
	}
	sort.Strings(out)
	return out
}

package models

// Operating-day constants, in minutes since midnight.
const (
	DayStart        = 360  // 06:00, earliest departure
	Curfew          = 1380 // 23:00, latest arrival
	CurfewOpen      = 330  // 05:30
	LateArrival     = 1350 // 22:30
	GridMinutes     = 5
	CrewChangeGap   = 10
	MaxSectors      = 4
	MaxCrews        = 2
	EarlyStartLimit = 420 // duty starting before 07:00 is an early start
	EarlyDutyLimit  = 420
	DutyLimit       = 600
	AircraftDutyCap = 720
	AirportDelay    = 15
	DefaultTurnMin  = 40
)

type SegmentKind string

const (
	KindOutbound   SegmentKind = "outbound"
	KindTurnaround SegmentKind = "turnaround"
	KindInbound    SegmentKind = "inbound"
	KindCrewChange SegmentKind = "crew_change"
)

// IsFlight reports whether the segment kind is a flown sector.
func (k SegmentKind) IsFlight() bool {
	return k == KindOutbound || k == KindInbound
}

type RouteType string

const (
	RouteDomestic RouteType = "Domestic"
	RouteHolidays RouteType = "Holidays"
	RouteLeisure  RouteType = "Leisure"
)

type Route struct {
	ID           string         `json:"id"`
	From         string         `json:"from"`
	To           string         `json:"to"`
	BlockMinutes int            `json:"block_minutes"`
	Type         RouteType      `json:"type"`
	Requested    int            `json:"requested"`
	TurnTimes    map[string]int `json:"turn_times"` // minimum ground time at To, by aircraft type
}

// TurnMinutes returns the turnaround for aircraftType at the destination.
func (r Route) TurnMinutes(aircraftType string) int {
	if m, ok := r.TurnTimes[aircraftType]; ok && m > 0 {
		return m
	}
	return DefaultTurnMin
}

type Aircraft struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"type" yaml:"type"`
}

type Segment struct {
	ID           string      `json:"id"`
	TripID       string      `json:"trip_id"`
	Kind         SegmentKind `json:"kind"`
	Start        int         `json:"start"`
	End          int         `json:"end"`
	From         string      `json:"from,omitempty"`
	To           string      `json:"to,omitempty"`
	BlockMinutes int         `json:"block_minutes,omitempty"`
	RouteType    RouteType   `json:"route_type,omitempty"`
	RouteID      string      `json:"route_id,omitempty"`
	CrewIndex    int         `json:"crew_index,omitempty"`
	Charter      bool        `json:"charter,omitempty"`
}

// Duration returns the segment length in minutes.
func (s Segment) Duration() int {
	return s.End - s.Start
}

// Trip is one out-and-back rotation: outbound, turnaround and inbound.
type Trip struct {
	ID         string  `json:"id"`
	Outbound   Segment `json:"outbound"`
	Turnaround Segment `json:"turnaround"`
	Inbound    Segment `json:"inbound"`
}

func (t Trip) Start() int { return t.Outbound.Start }
func (t Trip) End() int   { return t.Inbound.End }

// Segments returns the trip legs in chronological order.
func (t Trip) Segments() []Segment {
	return []Segment{t.Outbound, t.Turnaround, t.Inbound}
}

// WithCrew returns a copy of the trip with every leg assigned to crew.
func (t Trip) WithCrew(crew int) Trip {
	t.Outbound.CrewIndex = crew
	t.Turnaround.CrewIndex = crew
	t.Inbound.CrewIndex = crew
	return t
}

type CrewState struct {
	CrewIndex        int  `json:"crew_index"`
	Sectors          int  `json:"sectors"`
	DutyStart        int  `json:"duty_start"` // -1 when the crew has not flown
	PendingChange    bool `json:"pending_change"`
	PendingCrewIndex int  `json:"pending_crew_index,omitempty"`
}

type CrewKPI struct {
	CrewIndex     int  `json:"crew_index"`
	Sectors       int  `json:"sectors"`
	DutyStart     int  `json:"duty_start"`
	DutyEnd       int  `json:"duty_end"`
	DutyMinutes   int  `json:"duty_minutes"`
	LimitMinutes  int  `json:"limit_minutes"`
	FlightMinutes int  `json:"flight_minutes"`
	SectorsOver   bool `json:"sectors_over"`
	DutyOver      bool `json:"duty_over"`
}

type Score struct {
	Points        int       `json:"points"`
	FlightMinutes int       `json:"flight_minutes"`
	DutyMinutes   int       `json:"duty_minutes"`
	IdleMinutes   int       `json:"idle_minutes"`
	Trips         int       `json:"trips"`
	Crews         []CrewKPI `json:"crews"`
}

type Disruptions struct {
	FrozenAircraft []string `json:"frozen_aircraft"`
	DelayedAirport string   `json:"delayed_airport,omitempty"`
	CharterBonus   []string `json:"charter_bonus"`
}

type AircraftState struct {
	Aircraft Aircraft  `json:"aircraft"`
	Segments []Segment `json:"segments"`
	Crew     CrewState `json:"crew"`
	Score    Score     `json:"score"`
}

type GameState struct {
	Fleet        []AircraftState `json:"fleet"`
	Inventory    map[string]int  `json:"inventory"`
	Disruptions  Disruptions     `json:"disruptions"`
	TotalPoints  int             `json:"total_points"`
	IsRunning    bool            `json:"is_running"`
	RemainingSec int             `json:"remaining_seconds"`
	RecentEvents []string        `json:"recent_events"`
}

package models

import "errors"

// Placement and mutation outcomes. All of them leave the committed schedule
// untouched.
var (
	// ErrInfeasible is returned when no window before curfew can hold the trip.
	ErrInfeasible = errors.New("no space before curfew")

	// ErrResourceExhausted is returned when the route inventory is used up.
	ErrResourceExhausted = errors.New("route inventory exhausted")

	// ErrAircraftUnavailable is returned when the aircraft is frozen by a disruption.
	ErrAircraftUnavailable = errors.New("aircraft unavailable")

	// ErrCrewLimitReached is returned when a third crew would be needed.
	ErrCrewLimitReached = errors.New("crew limits reached")

	// ErrDutyCapExceeded is returned when the aircraft-day duty would pass the cap.
	ErrDutyCapExceeded = errors.New("aircraft duty cap exceeded")

	// ErrOverlapDetected is returned when a rescheduled trip collides with another.
	ErrOverlapDetected = errors.New("overlaps existing flight")

	ErrUnknownAircraft   = errors.New("unknown aircraft")
	ErrUnknownRoute      = errors.New("unknown route")
	ErrSegmentNotFound   = errors.New("segment not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrCrewChangeInvalid = errors.New("invalid crew change request")
)

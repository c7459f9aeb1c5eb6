package itinerary

import "time"

// TripSession is everything one user has built for one trip so far. It is the value
// stored by trip state repositories.
type TripSession struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId,omitempty"`
	Revision    int             `json:"revision"`
	Trip        Trip            `json:"trip"`
	Flights     FlightSelection `json:"flights"`
	Progress    TripProgress    `json:"progress"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

func NewTripSession(id, userID string, trip Trip, now time.Time) *TripSession {
	return &TripSession{
		ID:          id,
		UserID:      userID,
		Revision:    1,
		Trip:        trip,
		Progress:    NewTripProgress(),
		LastUpdated: now,
	}
}

// SelectFlights records the chosen flights and opens the preference step.
func (s *TripSession) SelectFlights(sel FlightSelection) {
	s.Flights = sel
	s.Trip.FlightCost = sel.TotalPrice()
	if s.Progress.CurrentStep == StepFlight || s.Progress.CurrentStep == "" {
		s.Progress.CurrentStep = StepPreferences
	}
}

// Invalidate bumps the revision so schedule generations started earlier are discarded.
func (s *TripSession) Invalidate() {
	s.Revision++
}

const ExportVersion = 1

type TripExport struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exportedAt"`
	Session    TripSession `json:"session"`
}

package response_models

import (
	"time"

	"tourplanner/internal/itinerary"
)

// TripResponse is a trip session plus the progress values the UI derives from it.
type TripResponse struct {
	ID                string                    `json:"id"`
	Revision          int                       `json:"revision"`
	Trip              itinerary.Trip            `json:"trip"`
	Flights           itinerary.FlightSelection `json:"flights"`
	Progress          itinerary.TripProgress    `json:"progress"`
	CompletedDays     []int                     `json:"completedDays"`
	AllDaysComplete   bool                      `json:"allDaysComplete"`
	HighestStartedDay int                       `json:"highestStartedDay"`
	LastUpdated       time.Time                 `json:"lastUpdated"`
}

func NewTripResponse(s *itinerary.TripSession) TripResponse {
	return TripResponse{
		ID:                s.ID,
		Revision:          s.Revision,
		Trip:              s.Trip,
		Flights:           s.Flights,
		Progress:          s.Progress,
		CompletedDays:     s.Progress.CompletedDays(),
		AllDaysComplete:   s.Progress.AllComplete(s.Trip.TotalDays),
		HighestStartedDay: s.Progress.HighestStartedDay(),
		LastUpdated:       s.LastUpdated,
	}
}

type CityResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	NameASCII string `json:"name_ascii,omitempty"`
	Country   string `json:"country,omitempty"`
}

type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Provider   map[string]any    `json:"provider,omitempty"`
}

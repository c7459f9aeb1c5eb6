package response_models

import (
	"tourplanner/internal/itinerary"
)

// Top-level payload of a stored tour
type TourResponse struct {
	ID        string              `json:"id"`
	TripID    string              `json:"trip_id"`
	Status    string              `json:"status"`
	CreatedAt int64               `json:"created_at"` // unix seconds
	Tour      itinerary.FinalTour `json:"tour"`
}

// One row of a user's tour list
type TourSummary struct {
	ID            string  `json:"id"`
	Departure     string  `json:"departure"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"` // YYYY-MM-DD
	TotalDays     int     `json:"total_days"`
	PartySize     int     `json:"party_size"`
	TotalCost     float64 `json:"total_cost"`
	Status        string  `json:"status"`
	CreatedAt     int64   `json:"created_at"`
}

type PaymentResponse struct {
	TourID   string  `json:"tour_id"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method,omitempty"`
	PaidAt   int64   `json:"paid_at,omitempty"`
}

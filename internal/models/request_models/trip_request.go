package request_models

import "tourplanner/internal/itinerary"

type CreateTripRequest struct {
	Departure     string  `json:"departure"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departureDate"`
	ArrivalDate   string  `json:"arrivalDate"`
	Budget        float64 `json:"budget"`
	Adults        int     `json:"adults"`
	Children      int     `json:"children"`
	Infants       int     `json:"infants"`
}

func (r CreateTripRequest) ToInput() itinerary.TripInput {
	return itinerary.TripInput{
		Departure:     r.Departure,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		ArrivalDate:   r.ArrivalDate,
		Budget:        r.Budget,
		Adults:        r.Adults,
		Children:      r.Children,
		Infants:       r.Infants,
	}
}

type SelectFlightsRequest struct {
	Departure *itinerary.Flight `json:"departure"`
	Return    *itinerary.Flight `json:"return"`
}

type SetCurrentDayRequest struct {
	Day int `json:"day" binding:"required,min=1"`
}

type FlightSearchRequest struct {
	DepartureCity string `form:"departure_city"`
	ArrivalCity   string `form:"arrival_city"`
	DepartureDate string `form:"departure_date"`
	ReturnDate    string `form:"return_date"`
}

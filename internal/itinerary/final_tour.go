package itinerary

import (
	"fmt"

	"tourplanner/pkg/utils"
)

type FinalTour struct {
	Schedules       []DaySchedule `json:"schedules"`
	DepartureFlight *Flight       `json:"selectedDepartureFlight,omitempty"`
	ReturnFlight    *Flight       `json:"selectedReturnFlight,omitempty"`
	Destination     string        `json:"destination"`
	Departure       string        `json:"departure"`
	TotalDays       int           `json:"totalDays"`
	Budget          float64       `json:"budget"`
	PartySize       int           `json:"partySize"`
	TotalCost       float64       `json:"totalCost"`
}

// IncompleteTripError names the first day that still needs a schedule.
type IncompleteTripError struct {
	MissingDay int
	TotalDays  int
}

func (e *IncompleteTripError) Error() string {
	return fmt.Sprintf("day %d of %d has no schedule", e.MissingDay, e.TotalDays)
}

func (e *IncompleteTripError) Details() any {
	return map[string]int{"missingDay": e.MissingDay, "totalDays": e.TotalDays}
}

func (e *IncompleteTripError) Is(target error) bool {
	return target == utils.ErrIncompleteTrip
}

// BuildFinalTour aggregates the schedules of days 1..TotalDays and the selected flights.
// Schedules beyond the trip length are ignored.
func BuildFinalTour(schedules map[int]*DaySchedule, trip Trip, flights FlightSelection) (FinalTour, error) {
	if len(schedules) == 0 {
		return FinalTour{}, utils.ErrNoSchedule
	}
	if trip.TotalDays < 1 {
		return FinalTour{}, fmt.Errorf("%w: trip has no days", utils.ErrInvalidInput)
	}

	out := make([]DaySchedule, 0, trip.TotalDays)
	total := 0.0
	for day := 1; day <= trip.TotalDays; day++ {
		s := schedules[day]
		if s == nil {
			return FinalTour{}, &IncompleteTripError{MissingDay: day, TotalDays: trip.TotalDays}
		}
		cp := *s
		cp.Items = append([]ScheduleItem(nil), s.Items...)
		out = append(out, cp)
		total += cp.TotalCost
	}

	return FinalTour{
		Schedules:       out,
		DepartureFlight: flights.Departure,
		ReturnFlight:    flights.Return,
		Destination:     trip.DestinationCity,
		Departure:       trip.DepartureCity,
		TotalDays:       trip.TotalDays,
		Budget:          trip.Budget,
		PartySize:       trip.PartySize(),
		TotalCost:       total + flights.TotalPrice(),
	}, nil
}

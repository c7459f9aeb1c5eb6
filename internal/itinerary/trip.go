package itinerary

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tourplanner/pkg/utils"
)

const (
	// DateLayout is the wire format of trip and flight dates.
	DateLayout = "2006-01-02"
	// DisplayDateLayout renders a schedule date, e.g. "Monday, January 6, 2025".
	DisplayDateLayout = "Monday, January 2, 2006"
)

type Trip struct {
	DepartureCity   string    `json:"departureCity"`
	DestinationCity string    `json:"destinationCity"`
	CityID          string    `json:"cityId"`
	DepartureDate   time.Time `json:"departureDate"`
	ArrivalDate     time.Time `json:"arrivalDate"`
	TotalDays       int       `json:"totalDays"`
	Budget          float64   `json:"budget"`
	Adults          int       `json:"adults"`
	Children        int       `json:"children"`
	Infants         int       `json:"infants"`
	FlightCost      float64   `json:"flightCost"`
}

func (t Trip) PartySize() int {
	return t.Adults + t.Children + t.Infants
}

// ContainsDay reports whether day is a valid 1-based index into the trip.
func (t Trip) ContainsDay(day int) bool {
	return day >= 1 && day <= t.TotalDays
}

// DateForDay returns the calendar date of a 1-based trip day.
func (t Trip) DateForDay(day int) time.Time {
	return dateOnly(t.DepartureDate).AddDate(0, 0, day-1)
}

// AvailableBudget is what is left for on-the-ground spending once flights are paid,
// never lower than floor.
func (t Trip) AvailableBudget(floor float64) float64 {
	return math.Max(t.Budget-t.FlightCost, floor)
}

// CountDays returns the inclusive number of days between two dates. Equal dates count
// as one day.
func CountDays(departure, arrival time.Time) int {
	d, a := dateOnly(departure), dateOnly(arrival)
	if d.Equal(a) {
		return 1
	}
	diff := a.Sub(d)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours()/24)) + 1
}

func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type TripInput struct {
	Departure     string
	Destination   string
	DepartureDate string
	ArrivalDate   string
	Budget        float64
	Adults        int
	Children      int
	Infants       int
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a submission. It matches
// utils.ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == utils.ErrInvalidInput
}

// Details is rendered as the data of an error response.
func (e *ValidationError) Details() any {
	return e.Fields
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// NewTrip validates a search form submission and derives the trip it describes.
// today is the current date in the caller's zone.
func NewTrip(in TripInput, today time.Time) (Trip, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Departure) == "" {
		verr.add("departure", "Departure city is required")
	}
	if strings.TrimSpace(in.Destination) == "" {
		verr.add("destination", "Destination is required")
	}
	if in.Budget <= 0 {
		verr.add("budget", "Budget must be greater than 0")
	}
	if in.Adults < 1 {
		verr.add("adults", "At least one adult is required")
	}
	if in.Children < 0 || in.Infants < 0 {
		verr.add("passengers", "Passenger counts cannot be negative")
	}

	dep, depErr := ParseDate(in.DepartureDate)
	if depErr != nil {
		verr.add("departureDate", "Departure date must use the YYYY-MM-DD format")
	}
	arr, arrErr := ParseDate(in.ArrivalDate)
	if arrErr != nil {
		verr.add("arrivalDate", "Arrival date must use the YYYY-MM-DD format")
	}

	days := 0
	if depErr == nil && arrErr == nil {
		switch {
		case dep.Before(dateOnly(today)):
			verr.add("departureDate", "Departure date cannot be in the past")
		case arr.Before(dep):
			verr.add("arrivalDate", "Arrival date must be on or after the departure date")
		default:
			days = CountDays(dep, arr)
			if days <= 1 {
				verr.add("arrivalDate", "Departure date and arrival date must be greater than 1 day")
			}
		}
	}

	if len(verr.Fields) > 0 {
		return Trip{}, verr
	}

	return Trip{
		DepartureCity:   strings.TrimSpace(in.Departure),
		DestinationCity: strings.TrimSpace(in.Destination),
		DepartureDate:   dep,
		ArrivalDate:     arr,
		TotalDays:       days,
		Budget:          in.Budget,
		Adults:          in.Adults,
		Children:        in.Children,
		Infants:         in.Infants,
	}, nil
}

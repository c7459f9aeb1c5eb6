package db_models

import (
	"time"

	"github.com/google/uuid"
)

type TourStatus string

const (
	TourStatusCreated TourStatus = "created"
	TourStatusPaid    TourStatus = "paid"
)

type Tour struct {
	BaseModel
	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	TripSessionID string     `gorm:"index"`
	Departure     string
	Destination   string
	CityID        string
	DepartureDate time.Time
	TotalDays     int
	Budget        float64
	PartySize     int
	TotalCost     float64
	Status        TourStatus `gorm:"index"`

	Flights []TourFlight
	Days    []TourDay
}

type TourFlight struct {
	BaseModel
	TourID     uuid.UUID `gorm:"type:uuid;index"`
	Direction  string
	FlightKey  string
	FlightCode string
	Airline    string
	DepIATA    string
	ArrIATA    string
	DepTime    time.Time
	ArrTime    time.Time
	Duration   string
	Stops      string
	Price      float64
}

type TourDay struct {
	BaseModel
	TourID         uuid.UUID `gorm:"type:uuid;index"`
	DayNumber      int
	Date           time.Time
	TotalCost      float64
	Source         string
	FallbackReason string

	Items []TourItem
}

type TourItem struct {
	BaseModel
	TourDayID     uuid.UUID `gorm:"type:uuid;index"`
	Position      int
	ItemKey       string
	ItemType      string
	StartTime     string
	EndTime       string
	Title         string
	Description   string
	Cost          float64
	TransportMode string
	Distance      string
	TravelTime    string
	PlaceID       string
}

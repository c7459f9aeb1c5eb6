package itinerary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenFlights(t *testing.T) {
	var groups map[string][]ProviderFlight
	require.NoError(t, json.Unmarshal([]byte(`{
		"Vietnam Airlines": [
			{"flight_code": "VN123", "airline": "Vietnam Airlines", "dep_time": "2025-01-06T08:00:00+07:00", "arr_time": "2025-01-06T09:25:00+07:00", "dep_iata": "HAN", "arr_iata": "DAD", "stops": [], "price": "120.5"}
		],
		"Bamboo": [
			{"flight_code": "QH101", "dep_time": "2025-01-06T06:00:00", "arr_time": "2025-01-06T10:05:00", "stops": [{"iata": "SGN"}, {"iata": "CXR"}], "price": 99}
		]
	}`), &groups))

	flights := FlattenFlights(groups)
	require.Len(t, flights, 2)

	qh := flights[0]
	assert.Equal(t, "QH101_0", qh.ID)
	assert.Equal(t, "Bamboo", qh.Airline)
	assert.Equal(t, "4h05m", qh.Duration)
	assert.Equal(t, "2 stops", qh.Stops)
	assert.Equal(t, 99.0, qh.Price)

	vn := flights[1]
	assert.Equal(t, "VN123_1", vn.ID)
	assert.Equal(t, "1h25m", vn.Duration)
	assert.Equal(t, "Direct", vn.Stops)
	assert.Equal(t, 120.5, vn.Price)
}

func TestFlightLabels(t *testing.T) {
	assert.Equal(t, "0h45m", DurationLabel(45*time.Minute))
	assert.Equal(t, "12h00m", DurationLabel(12*time.Hour))
	assert.Equal(t, "1 stop", StopsLabel(1))
}

func TestFlightSelectionTotal(t *testing.T) {
	assert.Zero(t, FlightSelection{}.TotalPrice())
	assert.Equal(t, 80.0, FlightSelection{Return: &Flight{Price: 80}}.TotalPrice())
}

func TestSessionSelectFlights(t *testing.T) {
	s := NewTripSession("trip-1", "", sampleTrip(t), time.Now())
	s.SelectFlights(FlightSelection{Departure: &Flight{Price: 100}, Return: &Flight{Price: 150}})

	assert.Equal(t, 250.0, s.Trip.FlightCost)
	assert.Equal(t, StepPreferences, s.Progress.CurrentStep)
}

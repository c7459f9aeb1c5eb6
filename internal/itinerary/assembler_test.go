package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourplanner/pkg/utils"
)

func decodeResponse(t *testing.T, raw string) *RecommendationResponse {
	t.Helper()
	var resp RecommendationResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func sampleTrip(t *testing.T) Trip {
	return Trip{
		DepartureCity:   "Hanoi",
		DestinationCity: "Da Nang",
		CityID:          "1704",
		DepartureDate:   mustDate(t, "2025-01-06"),
		ArrivalDate:     mustDate(t, "2025-01-08"),
		TotalDays:       3,
		Budget:          1000,
		Adults:          2,
	}
}

func TestAssembleSingleDay(t *testing.T) {
	resp := decodeResponse(t, `{
		"itinerary": [{
			"activities": [
				{"type": "meal", "start_time": "07:30", "end_time": "08:30", "place_name": "Pho 10", "cost": 6.5, "place_id": "ChIJ-r1"},
				{"type": "transfer", "start_time": "08:30", "end_time": "09:00", "transport_mode": "grab", "distance_km": 4.26, "travel_time_min": 18, "estimated_cost": 3},
				{"type": "activity", "start_time": "09:00", "end_time": "11:00", "place_name": "Marble Mountains", "estimated_cost": "12.5"}
			]
		}],
		"tour_info": {"city": "Da Nang"}
	}`)

	s, err := Assemble(resp, sampleTrip(t), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Day)
	assert.Equal(t, "Monday, January 6, 2025", s.DateLabel)
	assert.True(t, s.Completed)
	assert.Equal(t, SourceProvider, s.Source)
	require.Len(t, s.Items, 3)

	assert.Equal(t, "1", s.Items[0].ID)
	assert.Equal(t, ItemMeal, s.Items[0].Type)
	assert.Equal(t, "ChIJ-r1", s.Items[0].ExternalPlaceID)

	transfer := s.Items[1]
	assert.Equal(t, "grab", transfer.TransportMode)
	assert.Equal(t, "4.3km", transfer.DistanceLabel)
	assert.Equal(t, "18 min", transfer.TravelTimeLabel)
	assert.Equal(t, "Activity", transfer.Title)
	assert.Equal(t, 3.0, transfer.Cost)

	assert.Equal(t, 12.5, s.Items[2].Cost)
	assert.InDelta(t, 22.0, s.TotalCost, 1e-9)
	assert.Empty(t, s.Warnings)
}

func TestAssembleAppliesDefaultsToMalformedActivities(t *testing.T) {
	resp := decodeResponse(t, `{
		"itinerary": [{"activities": [
			{},
			{"type": "TRANSFER", "cost": "n/a", "distance_km": null},
			{"cost": -4, "place_id": 981}
		]}]
	}`)

	s, err := Assemble(resp, sampleTrip(t), 1)
	require.NoError(t, err)
	require.Len(t, s.Items, 3)

	first := s.Items[0]
	assert.Equal(t, ItemActivity, first.Type)
	assert.Equal(t, "09:00", first.StartTime)
	assert.Equal(t, "10:00", first.EndTime)
	assert.Equal(t, "Activity", first.Title)
	assert.Zero(t, first.Cost)

	second := s.Items[1]
	assert.Equal(t, ItemTransfer, second.Type)
	assert.Equal(t, "taxi", second.TransportMode)
	assert.Empty(t, second.DistanceLabel)
	assert.Zero(t, second.Cost)

	assert.Zero(t, s.Items[2].Cost)
	assert.Equal(t, "981", s.Items[2].ExternalPlaceID)
	assert.Zero(t, s.TotalCost)
	assert.NotEmpty(t, s.Warnings)
}

func TestAssembleFiltersMultiDayResponse(t *testing.T) {
	resp := decodeResponse(t, `{"itinerary": [
		{"activities": [{"place_name": "Day one", "cost": 1}]},
		{"activities": [{"place_name": "Day two A", "cost": 2}, {"place_name": "Day two B", "cost": 3}]},
		{"activities": [{"place_name": "Day three", "cost": 4}]}
	]}`)

	s, err := Assemble(resp, sampleTrip(t), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, s.Day)
	assert.Equal(t, "Tuesday, January 7, 2025", s.DateLabel)
	require.Len(t, s.Items, 2)
	assert.Equal(t, "Day two A", s.Items[0].Title)
	assert.Equal(t, "Day two B", s.Items[1].Title)
	assert.Equal(t, 5.0, s.TotalCost)
}

func TestAssemblePrefersDayNumbers(t *testing.T) {
	resp := decodeResponse(t, `{"itinerary": [
		{"day": 3, "activities": [{"place_name": "Third"}]},
		{"day": 1, "activities": [{"place_name": "First"}]},
		{"day": "2", "activities": [{"place_name": "Second"}]}
	]}`)

	s, err := Assemble(resp, sampleTrip(t), 2)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Second", s.Items[0].Title)
}

func TestAssembleIsDeterministic(t *testing.T) {
	raw := `{"itinerary": [{"activities": [
		{"type": "transfer", "distance_km": 2.04, "travel_time_min": 7.5},
		{"place_name": "Dragon Bridge", "estimated_cost": 0}
	]}]}`
	trip := sampleTrip(t)

	a, err := Assemble(decodeResponse(t, raw), trip, 1)
	require.NoError(t, err)
	b, err := Assemble(decodeResponse(t, raw), trip, 1)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestAssembleRejectsUnusableResponses(t *testing.T) {
	trip := sampleTrip(t)

	_, err := Assemble(nil, trip, 1)
	assert.ErrorIs(t, err, utils.ErrMalformedProviderResponse)

	_, err = Assemble(decodeResponse(t, `{"itinerary": []}`), trip, 1)
	assert.ErrorIs(t, err, utils.ErrMalformedProviderResponse)

	_, err = Assemble(decodeResponse(t, `{"itinerary": [{"activities": []}]}`), trip, 1)
	assert.ErrorIs(t, err, utils.ErrMalformedProviderResponse)

	_, err = Assemble(decodeResponse(t, `{"itinerary": [{"activities": [{}]}, {"activities": [{}]}]}`), trip, 3)
	assert.ErrorIs(t, err, utils.ErrMalformedProviderResponse)
}

func TestBuildRecommendationRequest(t *testing.T) {
	trip := sampleTrip(t)
	trip.FlightCost = 950
	trip.Children = 1

	prefs := samplePreferences()
	_, _ = prefs.Toggle(CategoryRestaurants, "r1", Like)
	_, _ = prefs.Toggle(CategoryRestaurants, "r2", Dislike)
	_, _ = prefs.Toggle(CategoryTransport, "1", Like)

	known := prefs.Liked()
	req := BuildRecommendationRequest(trip, 2, prefs, known, DefaultBudgetFloor)

	assert.Equal(t, "1704", req.DestinationCityID)
	assert.Equal(t, 3, req.GuestCount)
	assert.Equal(t, 1, req.DurationDays)
	assert.Equal(t, 100.0, req.TargetBudget)
	assert.Equal(t, 2, req.CurrentDay)
	assert.Equal(t, "2025-01-06", req.DepartureDate)

	assert.Equal(t, []string{"ChIJ-r1"}, req.LikedRestaurants)
	assert.Equal(t, []string{"ChIJ-r2"}, req.DislikedRestaurants)
	assert.Equal(t, []string{"Metro"}, req.LikedTransport)
	assert.Empty(t, req.LikedHotels)

	// r2 is referenced but was not passed as a known record.
	require.Len(t, req.Restaurants, 1)
	assert.Equal(t, "Pho 10", req.Restaurants[0].Name)
	require.Len(t, req.Transport, 1)
	assert.Equal(t, "Metro", req.Transport[0].Name)
	assert.Empty(t, req.Hotels)
}

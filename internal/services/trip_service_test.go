package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

func newTripFixture() (*TripService, repositories.TripStateRepository, *mockCities) {
	repo := repositories.NewMemoryTripStateRepository(time.Hour)
	cities := &mockCities{}
	return newTripService(repo, cities, zap.NewNop(), fixedNow), repo, cities
}

func validInput() itinerary.TripInput {
	return itinerary.TripInput{
		Departure:     "Hanoi",
		Destination:   "Đà Nẵng",
		DepartureDate: "2025-01-06",
		ArrivalDate:   "2025-01-08",
		Budget:        1000,
		Adults:        2,
		Children:      1,
	}
}

func TestTripCreateResolvesCity(t *testing.T) {
	svc, repo, cities := newTripFixture()
	cities.On("Resolve", mock.Anything, "Đà Nẵng").
		Return(CityResolution{CityID: "1704", Name: "Đà Nẵng", Match: CityMatchExact}, nil).Once()

	session, err := svc.Create(context.Background(), validInput(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "1704", session.Trip.CityID)
	assert.Equal(t, 3, session.Trip.TotalDays)
	assert.Equal(t, 3, session.Trip.PartySize())
	assert.Equal(t, 1, session.Revision)
	assert.Equal(t, itinerary.StepFlight, session.Progress.CurrentStep)

	stored, err := repo.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, session.Trip, stored.Trip)
	cities.AssertExpectations(t)
}

func TestTripCreateRejectsInvalidInput(t *testing.T) {
	svc, _, cities := newTripFixture()
	in := validInput()
	in.Budget = 0
	in.ArrivalDate = "2025-01-01"

	_, err := svc.Create(context.Background(), in, "")
	require.ErrorIs(t, err, utils.ErrInvalidInput)

	var verr *itinerary.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "budget")
	cities.AssertNumberOfCalls(t, "Resolve", 0)
}

func TestTripSelectFlightsOpensPreferences(t *testing.T) {
	svc, repo, _ := newTripFixture()
	seedSession(t, repo)

	session, err := svc.SelectFlights(context.Background(), "trip-1", itinerary.FlightSelection{
		Departure: &itinerary.Flight{ID: "VN123_0", Price: 120},
		Return:    &itinerary.Flight{ID: "VN124_0", Price: 130},
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, session.Trip.FlightCost)
	assert.Equal(t, itinerary.StepPreferences, session.Progress.CurrentStep)

	_, err = svc.SelectFlights(context.Background(), "trip-1", itinerary.FlightSelection{
		Departure: &itinerary.Flight{ID: "x", Price: -1},
	})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestTripSetCurrentDay(t *testing.T) {
	svc, repo, _ := newTripFixture()
	seedSession(t, repo, 1)

	session, err := svc.SetCurrentDay(context.Background(), "trip-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Progress.CurrentDay)

	_, err = svc.SetCurrentDay(context.Background(), "trip-1", 3)
	assert.ErrorIs(t, err, utils.ErrNavigationBlocked)

	_, err = svc.SetCurrentDay(context.Background(), "trip-1", 0)
	assert.ErrorIs(t, err, utils.ErrDayOutOfRange)

	_, err = svc.SetCurrentDay(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, utils.ErrTripNotFound)
}

func TestTripClearAllBumpsRevision(t *testing.T) {
	svc, repo, _ := newTripFixture()
	seedSession(t, repo, 1, 2)

	session, err := svc.ClearAll(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.Equal(t, 2, session.Revision)
	assert.Empty(t, session.Progress.Preferences)
	assert.Empty(t, session.Progress.Schedules)
	assert.Equal(t, 1, session.Progress.CurrentDay)
	assert.Equal(t, "Da Nang", session.Trip.DestinationCity)
}

func TestTripExportImportRoundTrip(t *testing.T) {
	svc, repo, _ := newTripFixture()
	session := seedSession(t, repo, 1, 2)
	day1 := itinerary.Fallback(session.Trip, 1, nil, itinerary.DefaultFallbackPrices(), "offline")
	require.NoError(t, session.Progress.RecordSchedule(day1, session.Trip.TotalDays))
	require.NoError(t, repo.Set(context.Background(), session))

	export, err := svc.Export(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.Equal(t, itinerary.ExportVersion, export.Version)

	// A tampered total and an out-of-range day must not survive the import.
	export.Session.Progress.Schedules[1].TotalCost = 999
	export.Session.Progress.Schedules[7] = &itinerary.DaySchedule{Day: 7}
	require.NoError(t, svc.Delete(context.Background(), "trip-1"))

	restored, err := svc.Import(context.Background(), export, "")
	require.NoError(t, err)
	assert.Equal(t, "trip-1", restored.ID)
	assert.Equal(t, 2, restored.Revision)
	assert.Equal(t, 23.0, restored.Progress.Schedules[1].TotalCost)
	assert.NotContains(t, restored.Progress.Schedules, 7)
	assert.Equal(t, 2, restored.Progress.CurrentDay)
	assert.Len(t, restored.Progress.Preferences, 2)

	_, err = svc.Import(context.Background(), itinerary.TripExport{Version: 99}, "")
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestTripImportKeepsNewerRevision(t *testing.T) {
	svc, repo, _ := newTripFixture()
	session := seedSession(t, repo)
	export, err := svc.Export(context.Background(), "trip-1")
	require.NoError(t, err)

	session.Revision = 5
	require.NoError(t, repo.Set(context.Background(), session))

	restored, err := svc.Import(context.Background(), export, "")
	require.NoError(t, err)
	assert.Equal(t, 6, restored.Revision)
}

func TestTripDelete(t *testing.T) {
	svc, repo, _ := newTripFixture()
	seedSession(t, repo)

	require.NoError(t, svc.Delete(context.Background(), "trip-1"))
	_, err := svc.Get(context.Background(), "trip-1")
	assert.ErrorIs(t, err, utils.ErrTripNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "trip-1"), utils.ErrTripNotFound)
}

func TestTripImportStopsAtFirstGap(t *testing.T) {
	svc, repo, _ := newTripFixture()
	seedSession(t, repo, 1)

	export, err := svc.Export(context.Background(), "trip-1")
	require.NoError(t, err)
	trip := export.Session.Trip
	export.Session.Progress.Preferences[3] = itinerary.NewDayPreferences(3, testCandidates(), itinerary.CacheKey(trip.CityID, 3))
	day3 := itinerary.Fallback(trip, 3, nil, itinerary.DefaultFallbackPrices(), "offline")
	export.Session.Progress.Schedules[3] = &day3

	restored, err := svc.Import(context.Background(), export, "")
	require.NoError(t, err)
	assert.Contains(t, restored.Progress.Preferences, 1)
	assert.NotContains(t, restored.Progress.Preferences, 3)
	assert.NotContains(t, restored.Progress.Schedules, 3)
	assert.Equal(t, 1, restored.Progress.CurrentDay)
	assert.False(t, restored.Progress.CanNavigate(3, trip.TotalDays))

	stored, err := repo.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.Len(t, stored.Progress.Preferences, 1)
	assert.Empty(t, stored.Progress.Schedules)
}

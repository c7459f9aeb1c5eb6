package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tourplanner/internal/itinerary"
	dbm "tourplanner/internal/models/db_models"
	"tourplanner/internal/models/response_models"
)

type mockProvider struct{ mock.Mock }

func (m *mockProvider) Recommend(ctx context.Context, req itinerary.RecommendationRequest) (*itinerary.RecommendationResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*itinerary.RecommendationResponse)
	return resp, args.Error(1)
}

func (m *mockProvider) Places(ctx context.Context, q CatalogQuery) (*itinerary.CatalogResponse, error) {
	args := m.Called(ctx, q)
	resp, _ := args.Get(0).(*itinerary.CatalogResponse)
	return resp, args.Error(1)
}

func (m *mockProvider) SearchFlights(ctx context.Context, q FlightQuery) (map[string][]itinerary.ProviderFlight, error) {
	args := m.Called(ctx, q)
	resp, _ := args.Get(0).(map[string][]itinerary.ProviderFlight)
	return resp, args.Error(1)
}

func (m *mockProvider) Cities(ctx context.Context, limit int) ([]ProviderCity, error) {
	args := m.Called(ctx, limit)
	resp, _ := args.Get(0).([]ProviderCity)
	return resp, args.Error(1)
}

func (m *mockProvider) Health(ctx context.Context) (map[string]any, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(map[string]any)
	return resp, args.Error(1)
}

type mockRecommender struct{ mock.Mock }

func (m *mockRecommender) RequestDaySchedule(
	ctx context.Context,
	trip itinerary.Trip,
	day int,
	prefs *itinerary.DayPreferences,
	known []itinerary.TaggedCandidate,
) (itinerary.RecommendationRequest, *itinerary.RecommendationResponse, error) {
	args := m.Called(ctx, trip, day, prefs, known)
	resp, _ := args.Get(0).(*itinerary.RecommendationResponse)
	return itinerary.RecommendationRequest{CurrentDay: day}, resp, args.Error(1)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) FetchCandidates(ctx context.Context, req CatalogRequest) (itinerary.CatalogCandidates, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(itinerary.CatalogCandidates), args.Error(1)
}

type mockCities struct{ mock.Mock }

func (m *mockCities) Resolve(ctx context.Context, name string) (CityResolution, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(CityResolution), args.Error(1)
}

func (m *mockCities) List(ctx context.Context, limit int) ([]response_models.CityResponse, error) {
	args := m.Called(ctx, limit)
	resp, _ := args.Get(0).([]response_models.CityResponse)
	return resp, args.Error(1)
}

func (m *mockCities) Sync(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

type mockCityRepo struct{ mock.Mock }

func (m *mockCityRepo) FindExact(ctx context.Context, name string) (*dbm.City, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*dbm.City)
	return c, args.Error(1)
}

func (m *mockCityRepo) FindByNameLike(ctx context.Context, fragment string) (*dbm.City, error) {
	args := m.Called(ctx, fragment)
	c, _ := args.Get(0).(*dbm.City)
	return c, args.Error(1)
}

func (m *mockCityRepo) FindByASCIILike(ctx context.Context, fragment string) (*dbm.City, error) {
	args := m.Called(ctx, fragment)
	c, _ := args.Get(0).(*dbm.City)
	return c, args.Error(1)
}

func (m *mockCityRepo) List(ctx context.Context, page int, pageSize int) ([]dbm.City, error) {
	args := m.Called(ctx, page, pageSize)
	c, _ := args.Get(0).([]dbm.City)
	return c, args.Error(1)
}

func (m *mockCityRepo) UpsertMany(ctx context.Context, cities []dbm.City) error {
	return m.Called(ctx, cities).Error(0)
}

type mockUserPrefs struct{ mock.Mock }

func (m *mockUserPrefs) Get(ctx context.Context, userID uuid.UUID, cityKey string) (*dbm.UserPreference, error) {
	args := m.Called(ctx, userID, cityKey)
	p, _ := args.Get(0).(*dbm.UserPreference)
	return p, args.Error(1)
}

func (m *mockUserPrefs) Upsert(ctx context.Context, pref *dbm.UserPreference) error {
	return m.Called(ctx, pref).Error(0)
}

type mockTourRepo struct{ mock.Mock }

func (m *mockTourRepo) Create(ctx context.Context, tour *dbm.Tour) (uuid.UUID, error) {
	args := m.Called(ctx, tour)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockTourRepo) GetByID(ctx context.Context, tourID uuid.UUID) (*dbm.Tour, error) {
	args := m.Called(ctx, tourID)
	t, _ := args.Get(0).(*dbm.Tour)
	return t, args.Error(1)
}

func (m *mockTourRepo) ListByUser(ctx context.Context, userID uuid.UUID, page int, pageSize int) ([]dbm.Tour, error) {
	args := m.Called(ctx, userID, page, pageSize)
	t, _ := args.Get(0).([]dbm.Tour)
	return t, args.Error(1)
}

func (m *mockTourRepo) UpdateStatus(ctx context.Context, tourID uuid.UUID, status dbm.TourStatus) error {
	return m.Called(ctx, tourID, status).Error(0)
}

type mockPaymentRepo struct{ mock.Mock }

func (m *mockPaymentRepo) GetByTourID(ctx context.Context, tourID uuid.UUID) (*dbm.Payment, error) {
	args := m.Called(ctx, tourID)
	p, _ := args.Get(0).(*dbm.Payment)
	return p, args.Error(1)
}

func (m *mockPaymentRepo) RecordPaid(ctx context.Context, payment *dbm.Payment) (*dbm.Payment, bool, error) {
	args := m.Called(ctx, payment)
	p, _ := args.Get(0).(*dbm.Payment)
	return p, args.Bool(1), args.Error(2)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, key, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

var testNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testTrip() itinerary.Trip {
	return itinerary.Trip{
		DepartureCity:   "Hanoi",
		DestinationCity: "Da Nang",
		CityID:          "1704",
		DepartureDate:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		ArrivalDate:     time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		TotalDays:       3,
		Budget:          1000,
		Adults:          2,
	}
}

func testCandidates() itinerary.CatalogCandidates {
	return itinerary.CatalogCandidates{
		Restaurants: []itinerary.PlaceCandidate{{ID: "r1", ExternalPlaceID: "place-r1", Name: "Madame Lan"}},
		Hotels:      []itinerary.PlaceCandidate{{ID: "h1", ExternalPlaceID: "place-h1", Name: "Sea View"}},
		Attractions: []itinerary.PlaceCandidate{
			{ID: "a1", ExternalPlaceID: "place-a1", Name: "Marble Mountains"},
			{ID: "a2", ExternalPlaceID: "place-a2", Name: "Dragon Bridge"},
		},
		Transport: itinerary.StaticTransportOptions(),
	}
}

// seedSession stores a trip session whose days listed in prefsFor have candidates.
func seedSession(t *testing.T, repo interface {
	Set(context.Context, *itinerary.TripSession) error
}, prefsFor ...int) *itinerary.TripSession {
	t.Helper()
	trip := testTrip()
	session := itinerary.NewTripSession("trip-1", "", trip, testNow)
	for _, day := range prefsFor {
		prefs := itinerary.NewDayPreferences(day, testCandidates(), itinerary.CacheKey(trip.CityID, day))
		require.NoError(t, session.Progress.SavePreferences(prefs, trip.TotalDays))
	}
	require.NoError(t, repo.Set(context.Background(), session))
	return session
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	"tourplanner/pkg/utils"
)

func newFlightFixture() (*FlightService, *mockProvider) {
	provider := &mockProvider{}
	return &FlightService{provider: provider, now: fixedNow, logger: zap.NewNop()}, provider
}

func TestFlightSearchBothLegs(t *testing.T) {
	svc, provider := newFlightFixture()
	provider.On("SearchFlights", mock.Anything, FlightQuery{DepartureCity: "Hanoi", ArrivalCity: "Da Nang", DepartureDate: "2025-01-06"}).
		Return(map[string][]itinerary.ProviderFlight{
			"Vietnam Airlines": {{FlightCode: "VN123", DepTime: "2025-01-06T08:00:00", ArrTime: "2025-01-06T09:20:00", Price: itinerary.Float(120)}},
			"Bamboo":           {{FlightCode: "QH101", Price: itinerary.Float(90)}},
		}, nil).Once()
	provider.On("SearchFlights", mock.Anything, FlightQuery{DepartureCity: "Da Nang", ArrivalCity: "Hanoi", DepartureDate: "2025-01-08"}).
		Return(map[string][]itinerary.ProviderFlight{}, nil).Once()

	res, err := svc.Search(context.Background(), FlightSearchInput{
		DepartureCity: "Hanoi",
		ArrivalCity:   "Da Nang",
		DepartureDate: "2025-01-06",
		ReturnDate:    "2025-01-08",
	})
	require.NoError(t, err)

	require.Len(t, res.Outbound, 2)
	assert.Equal(t, "QH101_0", res.Outbound[0].ID)
	assert.Equal(t, "Bamboo", res.Outbound[0].Airline)
	assert.Equal(t, "1h20m", res.Outbound[1].Duration)
	assert.NotNil(t, res.Return)
	assert.Empty(t, res.Return)
	provider.AssertExpectations(t)
}

func TestFlightSearchOneWaySkipsReturn(t *testing.T) {
	svc, provider := newFlightFixture()
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(nil, nil).Once()

	res, err := svc.Search(context.Background(), FlightSearchInput{DepartureCity: "Hanoi", ArrivalCity: "Hue", DepartureDate: "2025-01-06"})
	require.NoError(t, err)
	assert.Empty(t, res.Outbound)
	provider.AssertNumberOfCalls(t, "SearchFlights", 1)
}

func TestFlightSearchValidation(t *testing.T) {
	svc, provider := newFlightFixture()

	_, err := svc.Search(context.Background(), FlightSearchInput{
		DepartureCity: "Hanoi",
		DepartureDate: "2024-12-31",
		ReturnDate:    "2024-12-30",
	})
	require.ErrorIs(t, err, utils.ErrInvalidInput)

	var verr *itinerary.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["arrival_city"])
	assert.True(t, fields["departure_date"])
	assert.True(t, fields["return_date"])
	provider.AssertNumberOfCalls(t, "SearchFlights", 0)
}

func TestFlightSearchProviderFailure(t *testing.T) {
	svc, provider := newFlightFixture()
	provider.On("SearchFlights", mock.Anything, mock.Anything).Return(nil, utils.ErrProviderUnavailable)

	_, err := svc.Search(context.Background(), FlightSearchInput{
		DepartureCity: "Hanoi",
		ArrivalCity:   "Da Nang",
		DepartureDate: "2025-01-06",
		ReturnDate:    "2025-01-08",
	})
	assert.ErrorIs(t, err, utils.ErrProviderUnavailable)
}

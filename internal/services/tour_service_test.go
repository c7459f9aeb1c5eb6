package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	dbm "tourplanner/internal/models/db_models"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

type tourFixture struct {
	repo      repositories.TripStateRepository
	tours     *mockTourRepo
	payments  *mockPaymentRepo
	publisher *mockPublisher
	svc       *TourService
}

func newTourFixture() *tourFixture {
	f := &tourFixture{
		repo:      repositories.NewMemoryTripStateRepository(time.Hour),
		tours:     &mockTourRepo{},
		payments:  &mockPaymentRepo{},
		publisher: &mockPublisher{},
	}
	f.svc = newTourService(f.repo, f.tours, f.payments, f.publisher, nil, nil, zap.NewNop(), fixedNow)
	return f
}

// completeSession stores a trip whose days all have a fallback schedule (23 each).
func completeSession(t *testing.T, repo repositories.TripStateRepository) *itinerary.TripSession {
	t.Helper()
	session := seedSession(t, repo, 1, 2, 3)
	session.SelectFlights(itinerary.FlightSelection{Departure: &itinerary.Flight{ID: "VN1_0", FlightCode: "VN1", Price: 100}})
	for day := 1; day <= 3; day++ {
		s := itinerary.Fallback(session.Trip, day, nil, itinerary.DefaultFallbackPrices(), "offline")
		require.NoError(t, session.Progress.RecordSchedule(s, 3))
	}
	require.NoError(t, repo.Set(context.Background(), session))
	return session
}

func TestFinalizeRequiresEveryDay(t *testing.T) {
	f := newTourFixture()
	seedSession(t, f.repo, 1)

	_, err := f.svc.Finalize(context.Background(), "trip-1", "")
	assert.ErrorIs(t, err, utils.ErrNoSchedule)

	session, err := f.repo.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	s := itinerary.Fallback(session.Trip, 1, nil, itinerary.DefaultFallbackPrices(), "")
	require.NoError(t, session.Progress.RecordSchedule(s, 3))
	require.NoError(t, f.repo.Set(context.Background(), session))

	_, err = f.svc.Finalize(context.Background(), "trip-1", "")
	require.ErrorIs(t, err, utils.ErrIncompleteTrip)
	var incomplete *itinerary.IncompleteTripError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, 2, incomplete.MissingDay)
	f.tours.AssertNumberOfCalls(t, "Create", 0)
}

func TestFinalizeStoresPublishesAndClears(t *testing.T) {
	f := newTourFixture()
	completeSession(t, f.repo)
	userID := uuid.New()
	tourID := uuid.New()

	var stored *dbm.Tour
	f.tours.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dbm.Tour) }).
		Return(tourID, nil).Once()

	var event TourFinalizedEvent
	f.publisher.On("Publish", mock.Anything, []byte(tourID.String()), mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &event))
		}).
		Return(nil).Once()

	res, err := f.svc.Finalize(context.Background(), "trip-1", userID.String())
	require.NoError(t, err)

	assert.Equal(t, tourID.String(), res.ID)
	assert.Equal(t, testNow.Unix(), res.CreatedAt)
	assert.Equal(t, 169.0, res.Tour.TotalCost)
	assert.Len(t, res.Tour.Schedules, 3)

	require.NotNil(t, stored)
	assert.Equal(t, &userID, stored.UserID)
	assert.Len(t, stored.Days, 3)
	assert.Len(t, stored.Days[0].Items, 2)
	require.Len(t, stored.Flights, 1)
	assert.Equal(t, "departure", stored.Flights[0].Direction)

	assert.Equal(t, "trip-1", event.TripID)
	assert.Equal(t, 169.0, event.TotalCost)

	session, err := f.repo.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.Empty(t, session.Progress.Schedules)
	assert.Equal(t, 2, session.Revision)
}

func TestFinalizeSurvivesPublishFailure(t *testing.T) {
	f := newTourFixture()
	completeSession(t, f.repo)
	f.tours.On("Create", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := f.svc.Finalize(context.Background(), "trip-1", "")
	require.NoError(t, err)
}

func TestFinalizeRejectsConcurrentRequests(t *testing.T) {
	f := newTourFixture()
	completeSession(t, f.repo)

	started := make(chan struct{})
	release := make(chan struct{})
	f.tours.On("Create", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(uuid.New(), nil).Once()
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Finalize(context.Background(), "trip-1", "")
		done <- err
	}()
	<-started

	_, err := f.svc.Finalize(context.Background(), "trip-1", "")
	assert.ErrorIs(t, err, utils.ErrFinalizeInProgress)

	close(release)
	require.NoError(t, <-done)

	// The first finalize cleared the days, so a retry has nothing to build.
	_, err = f.svc.Finalize(context.Background(), "trip-1", "")
	assert.ErrorIs(t, err, utils.ErrNoSchedule)
	f.tours.AssertNumberOfCalls(t, "Create", 1)
}

func storedTour(owner *uuid.UUID) *dbm.Tour {
	tour := &dbm.Tour{
		UserID:      owner,
		Departure:   "Hanoi",
		Destination: "Da Nang",
		TotalDays:   1,
		TotalCost:   355.5,
		Status:      dbm.TourStatusCreated,
		Days: []dbm.TourDay{{
			DayNumber: 1,
			TotalCost: 355.5,
			Source:    string(itinerary.SourceProvider),
			Items:     []dbm.TourItem{{ItemKey: "1", ItemType: "activity", Title: "Ba Na Hills", Cost: 355.5}},
		}},
	}
	tour.ID = uuid.New()
	return tour
}

func TestRecordPaymentIsIdempotent(t *testing.T) {
	f := newTourFixture()
	owner := uuid.New()
	tour := storedTour(&owner)
	f.tours.On("GetByID", mock.Anything, tour.ID).Return(tour, nil)

	paidAt := testNow.Unix()
	paid := &dbm.Payment{TourID: tour.ID, UserID: &owner, AmountMinor: 35550, Currency: "USD", Status: dbm.PaymentStatusPaid, Method: "card", PaidAt: &paidAt}
	f.payments.On("RecordPaid", mock.Anything, mock.MatchedBy(func(p *dbm.Payment) bool {
		return p.AmountMinor == 35550 && p.TourID == tour.ID
	})).Return(paid, true, nil).Once()
	f.payments.On("RecordPaid", mock.Anything, mock.Anything).Return(paid, false, nil).Once()

	res, already, err := f.svc.RecordPayment(context.Background(), tour.ID.String(), owner.String(), "card")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, 355.5, res.Amount)
	assert.Equal(t, "paid", res.Status)

	_, already, err = f.svc.RecordPayment(context.Background(), tour.ID.String(), owner.String(), "card")
	require.NoError(t, err)
	assert.True(t, already)
}

func TestRecordPaymentChecksOwner(t *testing.T) {
	f := newTourFixture()
	owner := uuid.New()
	tour := storedTour(&owner)
	f.tours.On("GetByID", mock.Anything, tour.ID).Return(tour, nil)

	_, _, err := f.svc.RecordPayment(context.Background(), tour.ID.String(), uuid.NewString(), "card")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
	_, _, err = f.svc.RecordPayment(context.Background(), tour.ID.String(), "", "card")
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
	_, _, err = f.svc.RecordPayment(context.Background(), "not-a-uuid", owner.String(), "card")
	assert.ErrorIs(t, err, utils.ErrTourNotFound)
	f.payments.AssertNumberOfCalls(t, "RecordPaid", 0)
}

func TestGetPaymentDefaultsToPending(t *testing.T) {
	f := newTourFixture()
	tour := storedTour(nil)
	f.tours.On("GetByID", mock.Anything, tour.ID).Return(tour, nil)
	f.payments.On("GetByTourID", mock.Anything, tour.ID).Return(nil, nil).Once()

	res, err := f.svc.GetPayment(context.Background(), tour.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)
	assert.Equal(t, 355.5, res.Amount)
}

func TestGetTourAndPDF(t *testing.T) {
	f := newTourFixture()
	tour := storedTour(nil)
	f.tours.On("GetByID", mock.Anything, tour.ID).Return(tour, nil)
	missing := uuid.New()
	f.tours.On("GetByID", mock.Anything, missing).Return(nil, nil)

	res, err := f.svc.GetTour(context.Background(), tour.ID.String())
	require.NoError(t, err)
	require.Len(t, res.Tour.Schedules, 1)
	assert.Equal(t, "Ba Na Hills", res.Tour.Schedules[0].Items[0].Title)

	raw, err := f.svc.ExportPDF(context.Background(), tour.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(raw[:4]))

	_, err = f.svc.GetTour(context.Background(), missing.String())
	assert.ErrorIs(t, err, utils.ErrTourNotFound)
}

func TestListToursValidatesPaging(t *testing.T) {
	f := newTourFixture()
	owner := uuid.New()
	f.tours.On("ListByUser", mock.Anything, owner, 1, 10).Return([]dbm.Tour{*storedTour(&owner)}, nil).Once()

	list, err := f.svc.ListTours(context.Background(), owner.String(), 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Da Nang", list[0].Destination)

	_, err = f.svc.ListTours(context.Background(), owner.String(), 0, 10)
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
	_, err = f.svc.ListTours(context.Background(), "anonymous", 1, 10)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/repositories"
	mem "tourplanner/pkg/memcache"
	"tourplanner/pkg/utils"
)

type scheduleFixture struct {
	repo        repositories.TripStateRepository
	recommender *mockRecommender
	leases      *mem.Leases
	svc         *ScheduleService
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	f := &scheduleFixture{
		repo:        repositories.NewMemoryTripStateRepository(time.Hour),
		recommender: &mockRecommender{},
		leases:      mem.NewLeases(),
	}
	f.svc = newScheduleService(ScheduleServiceParams{
		Repo:        f.repo,
		Recommender: f.recommender,
		Leases:      f.leases,
		Prices:      itinerary.DefaultFallbackPrices(),
		Logger:      zap.NewNop(),
		Now:         fixedNow,
	})
	return f
}

func providerDay(costs ...float64) *itinerary.RecommendationResponse {
	ok := true
	acts := make([]itinerary.ProviderActivity, 0, len(costs))
	for _, c := range costs {
		acts = append(acts, itinerary.ProviderActivity{Type: "activity", PlaceName: "Stop", Cost: itinerary.Float(c)})
	}
	return &itinerary.RecommendationResponse{
		Success:   &ok,
		Itinerary: []itinerary.ProviderDay{{Activities: acts}},
	}
}

func TestGenerateDayScheduleFromProvider(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo, 1)
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Return(providerDay(20, 25.5), nil).Once()

	res, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)

	assert.Equal(t, itinerary.SourceProvider, res.Schedule.Source)
	assert.Equal(t, 45.5, res.Schedule.TotalCost)
	assert.Equal(t, 2, res.CurrentDay)
	assert.Equal(t, []int{1}, res.CompletedDays)
	assert.False(t, res.AllComplete)

	stored, err := f.repo.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.True(t, stored.Progress.IsDayComplete(1))
	assert.False(t, f.leases.Held(leaseKey("trip-1", 1)))
	f.recommender.AssertExpectations(t)
}

func TestGenerateDayScheduleFallsBackOnProviderError(t *testing.T) {
	f := newScheduleFixture(t)
	session := seedSession(t, f.repo, 1)
	prefs := session.Progress.Preferences[1]
	_, err := prefs.Toggle(itinerary.CategoryActivities, "a1", itinerary.Like)
	require.NoError(t, err)
	require.NoError(t, f.repo.Set(context.Background(), session))

	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Return(nil, errors.New("provider returned status 500: boom")).Once()

	res, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)

	assert.Equal(t, itinerary.SourceFallback, res.Schedule.Source)
	assert.Contains(t, res.Schedule.FallbackReason, "status 500")
	require.Len(t, res.Schedule.Items, 4)
	assert.Equal(t, "Marble Mountains", res.Schedule.Items[3].Title)
	assert.Equal(t, 41.0, res.Schedule.TotalCost)
}

func TestGenerateDayScheduleFallsBackOnMalformedResponse(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo, 1)
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Return(&itinerary.RecommendationResponse{}, nil).Once()

	res, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)
	assert.Equal(t, itinerary.SourceFallback, res.Schedule.Source)
	assert.GreaterOrEqual(t, len(res.Schedule.Items), 2)
}

func TestGenerateDayScheduleNeedsPreferences(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo)

	_, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	assert.ErrorIs(t, err, utils.ErrNoPreferences)

	_, err = f.svc.GenerateDaySchedule(context.Background(), "trip-1", 3)
	assert.ErrorIs(t, err, utils.ErrNavigationBlocked)

	_, err = f.svc.GenerateDaySchedule(context.Background(), "trip-1", 9)
	assert.ErrorIs(t, err, utils.ErrDayOutOfRange)

	_, err = f.svc.GenerateDaySchedule(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, utils.ErrTripNotFound)
	f.recommender.AssertNumberOfCalls(t, "RequestDaySchedule", 0)
}

func TestGenerateDayScheduleRejectsConcurrentRequests(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo, 1)

	started := make(chan struct{})
	release := make(chan struct{})
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(providerDay(10), nil).Once()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	}()

	<-started
	_, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	assert.ErrorIs(t, err, utils.ErrGenerationInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	f.recommender.AssertNumberOfCalls(t, "RequestDaySchedule", 1)
}

func TestGenerateDayScheduleDiscardsStaleResult(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo, 1)

	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			s, err := f.repo.Get(context.Background(), "trip-1")
			require.NoError(t, err)
			s.Progress.ClearAll()
			s.Invalidate()
			require.NoError(t, f.repo.Set(context.Background(), s))
		}).
		Return(providerDay(10), nil).Once()

	_, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	assert.ErrorIs(t, err, utils.ErrStaleGeneration)

	stored, err := f.repo.Get(context.Background(), "trip-1")
	require.NoError(t, err)
	assert.False(t, stored.Progress.IsDayComplete(1))
}

func TestGenerateDayScheduleReadsSnapshotAtSubmit(t *testing.T) {
	f := newScheduleFixture(t)
	session := seedSession(t, f.repo, 1)
	_, err := session.Progress.Preferences[1].Toggle(itinerary.CategoryRestaurants, "r1", itinerary.Like)
	require.NoError(t, err)
	require.NoError(t, f.repo.Set(context.Background(), session))

	var sent *itinerary.DayPreferences
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(3).(*itinerary.DayPreferences)
			s, err := f.repo.Get(context.Background(), "trip-1")
			require.NoError(t, err)
			_, err = s.Progress.Preferences[1].Toggle(itinerary.CategoryRestaurants, "r1", itinerary.Like)
			require.NoError(t, err)
			require.NoError(t, f.repo.Set(context.Background(), s))
		}).
		Return(providerDay(10), nil).Once()

	_, err = f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)
	require.NotNil(t, sent)
	require.Len(t, sent.Liked(), 1)
	assert.Equal(t, "r1", sent.Liked()[0].ID)
}

func TestEditDaySchedule(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo, 1)
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Return(providerDay(20, 30, 40), nil).Once()
	_, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)

	s, err := f.svc.DeleteItem(context.Background(), "trip-1", 1, "2")
	require.NoError(t, err)
	assert.Equal(t, 60.0, s.TotalCost)

	s, err = f.svc.ReplaceItem(context.Background(), "trip-1", 1, "3", itinerary.Replacement{
		PlaceID: "place-a2",
		Name:    "Dragon Bridge",
		Price:   itinerary.Float(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.TotalCost)
	assert.Equal(t, "Dragon Bridge", s.Items[1].Title)

	stored, err := f.svc.GetDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, stored.TotalCost)

	_, err = f.svc.DeleteItem(context.Background(), "trip-1", 1, "nope")
	assert.ErrorIs(t, err, utils.ErrItemNotFound)
	_, err = f.svc.GetDaySchedule(context.Background(), "trip-1", 2)
	assert.ErrorIs(t, err, utils.ErrNoSchedule)
}

type memArchive struct {
	mu      sync.Mutex
	entries []repositories.ProviderArchiveEntry
}

func (a *memArchive) Save(_ context.Context, e repositories.ProviderArchiveEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *memArchive) ListForTrip(_ context.Context, tripID string) ([]repositories.ProviderArchiveEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []repositories.ProviderArchiveEntry
	for _, e := range a.entries {
		if e.TripID == tripID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestGenerationIsArchived(t *testing.T) {
	f := newScheduleFixture(t)
	archive := &memArchive{}
	f.svc.archive = archive
	seedSession(t, f.repo, 1)
	f.recommender.On("RequestDaySchedule", mock.Anything, mock.Anything, 1, mock.Anything, mock.Anything).
		Return(nil, utils.ErrProviderUnavailable).Once()

	_, err := f.svc.GenerateDaySchedule(context.Background(), "trip-1", 1)
	require.NoError(t, err)

	history, err := f.svc.ProviderHistory(context.Background(), "trip-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(itinerary.SourceFallback), history[0].Source)
	assert.Equal(t, 1, history[0].Revision)
	assert.NotEmpty(t, history[0].Error)

	empty, err := f.svc.ProviderHistory(context.Background(), "trip-2")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGenerateDayScheduleAfterBlockedSave(t *testing.T) {
	f := newScheduleFixture(t)
	seedSession(t, f.repo)
	prefsSvc := newPreferenceService(f.repo, &mockCatalog{}, nil, zap.NewNop(), fixedNow)

	_, err := prefsSvc.SaveDayPreferences(context.Background(), "trip-1", itinerary.NewDayPreferences(3, testCandidates(), ""))
	require.ErrorIs(t, err, utils.ErrNavigationBlocked)

	_, err = f.svc.GenerateDaySchedule(context.Background(), "trip-1", 3)
	assert.ErrorIs(t, err, utils.ErrNavigationBlocked)
	f.recommender.AssertNumberOfCalls(t, "RequestDaySchedule", 0)
}

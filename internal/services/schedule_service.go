package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"tourplanner/internal/infra"
	"tourplanner/internal/itinerary"
	"tourplanner/internal/repositories"
	mem "tourplanner/pkg/memcache"
	"tourplanner/pkg/utils"
)

// ScheduleResult is a generated day together with the progress it led to.
type ScheduleResult struct {
	Schedule      itinerary.DaySchedule `json:"schedule"`
	CurrentDay    int                   `json:"currentDay"`
	CurrentStep   itinerary.Step        `json:"currentStep"`
	AllComplete   bool                  `json:"allComplete"`
	CompletedDays []int                 `json:"completedDays"`
}

type ScheduleServiceInterface interface {
	GenerateDaySchedule(ctx context.Context, tripID string, day int) (*ScheduleResult, error)
	GetDaySchedule(ctx context.Context, tripID string, day int) (*itinerary.DaySchedule, error)
	DeleteItem(ctx context.Context, tripID string, day int, itemID string) (*itinerary.DaySchedule, error)
	ReplaceItem(ctx context.Context, tripID string, day int, itemID string, r itinerary.Replacement) (*itinerary.DaySchedule, error)
	ProviderHistory(ctx context.Context, tripID string) ([]repositories.ProviderArchiveEntry, error)
}

type ScheduleService struct {
	sessions    sessionStore
	recommender RecommendationServiceInterface
	leases      mem.LeaseStore
	leaseTTL    time.Duration
	archive     repositories.ProviderArchive
	prices      itinerary.FallbackPrices
	metrics     *infra.AppMetrics
	logger      *zap.Logger
}

type ScheduleServiceParams struct {
	Repo        repositories.TripStateRepository
	Recommender RecommendationServiceInterface
	Leases      mem.LeaseStore
	// LeaseTTL bounds how long a crashed generation can block its day.
	LeaseTTL time.Duration
	Archive  repositories.ProviderArchive
	Prices   itinerary.FallbackPrices
	Metrics  *infra.AppMetrics
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewScheduleService(p ScheduleServiceParams) ScheduleServiceInterface {
	return newScheduleService(p)
}

func newScheduleService(p ScheduleServiceParams) *ScheduleService {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.LeaseTTL <= 0 {
		p.LeaseTTL = 6 * time.Minute
	}
	if p.Metrics == nil {
		p.Metrics = infra.NoopMetrics()
	}
	if p.Archive == nil {
		p.Archive = repositories.NewProviderArchive(nil, "", "")
	}
	if p.Leases == nil {
		p.Leases = mem.NewLeases()
	}
	logger := p.Logger.Named("schedule")
	return &ScheduleService{
		sessions:    sessionStore{repo: p.Repo, now: p.Now, logger: logger},
		recommender: p.Recommender,
		leases:      p.Leases,
		leaseTTL:    p.LeaseTTL,
		archive:     p.Archive,
		prices:      p.Prices,
		metrics:     p.Metrics,
		logger:      logger,
	}
}

func leaseKey(tripID string, day int) string {
	return tripID + ":" + strconv.Itoa(day)
}

// GenerateDaySchedule runs one provider round trip for a day. Only one generation per
// (trip, day) runs at a time. The preferences are read once, before the call; a result
// is applied only if the trip's revision and destination are unchanged when it arrives.
// Provider failures produce a fallback schedule instead of an error.
func (s *ScheduleService) GenerateDaySchedule(ctx context.Context, tripID string, day int) (*ScheduleResult, error) {
	ctx, span := tracer.Start(ctx, "schedule.GenerateDaySchedule")
	defer span.End()
	span.SetAttributes(attribute.String("trip_id", tripID), attribute.Int("day", day))

	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	trip := session.Trip
	if !trip.ContainsDay(day) {
		return nil, fmt.Errorf("%w: day %d not in 1..%d", utils.ErrDayOutOfRange, day, trip.TotalDays)
	}
	if !session.Progress.CanNavigate(day, trip.TotalDays) {
		return nil, fmt.Errorf("%w: day %d", utils.ErrNavigationBlocked, day)
	}
	prefs := session.Progress.Preferences[day].Clone()
	if prefs == nil {
		return nil, utils.ErrNoPreferences
	}

	key := leaseKey(tripID, day)
	token, err := s.leases.Acquire(ctx, key, s.leaseTTL)
	if err != nil {
		s.logger.Error("Acquiring generation lease failed", zap.String("lease", key), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if token == "" {
		return nil, utils.ErrGenerationInProgress
	}
	defer func() {
		if err := s.leases.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Releasing generation lease failed", zap.String("lease", key), zap.Error(err))
		}
	}()

	revision := session.Revision
	cacheKey := itinerary.CacheKey(trip.CityID, day)

	req, resp, callErr := s.recommender.RequestDaySchedule(ctx, trip, day, prefs, knownPlaces(prefs))
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logger.Info("Generation abandoned by caller", zap.String("trip_id", tripID), zap.Int("day", day))
		return nil, ctxErr
	}

	var schedule itinerary.DaySchedule
	if callErr == nil {
		schedule, callErr = itinerary.Assemble(resp, trip, day)
	}
	if callErr != nil {
		s.logger.Warn("Using fallback schedule",
			zap.String("trip_id", tripID),
			zap.Int("day", day),
			zap.Error(callErr))
		schedule = itinerary.Fallback(trip, day, prefs.Liked(), s.prices, callErr.Error())
	}

	entry := repositories.ProviderArchiveEntry{
		TripID:    tripID,
		Day:       day,
		Revision:  revision,
		Source:    string(schedule.Source),
		Request:   repositories.ToDocument(req),
		CreatedAt: s.sessions.now().UTC(),
	}
	if resp != nil {
		entry.Response = repositories.ToDocument(resp)
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := s.archive.Save(ctx, entry); err != nil {
		s.logger.Warn("Archiving provider exchange failed", zap.Error(err))
	}

	current, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if current.Revision != revision || itinerary.CacheKey(current.Trip.CityID, day) != cacheKey {
		s.logger.Info("Discarding stale schedule",
			zap.String("trip_id", tripID),
			zap.Int("day", day),
			zap.Int("started_revision", revision),
			zap.Int("current_revision", current.Revision))
		return nil, utils.ErrStaleGeneration
	}

	if err := current.Progress.RecordSchedule(schedule, current.Trip.TotalDays); err != nil {
		return nil, err
	}
	if err := s.sessions.save(ctx, current); err != nil {
		return nil, err
	}
	s.metrics.ScheduleGenerated(ctx, string(schedule.Source))
	span.SetAttributes(attribute.String("source", string(schedule.Source)))

	return &ScheduleResult{
		Schedule:      schedule,
		CurrentDay:    current.Progress.CurrentDay,
		CurrentStep:   current.Progress.CurrentStep,
		AllComplete:   current.Progress.AllComplete(current.Trip.TotalDays),
		CompletedDays: current.Progress.CompletedDays(),
	}, nil
}

func (s *ScheduleService) GetDaySchedule(ctx context.Context, tripID string, day int) (*itinerary.DaySchedule, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	schedule, err := daySchedule(session, day)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) DeleteItem(ctx context.Context, tripID string, day int, itemID string) (*itinerary.DaySchedule, error) {
	return s.edit(ctx, tripID, day, func(schedule *itinerary.DaySchedule) error {
		return schedule.DeleteItem(itemID)
	})
}

func (s *ScheduleService) ReplaceItem(ctx context.Context, tripID string, day int, itemID string, r itinerary.Replacement) (*itinerary.DaySchedule, error) {
	return s.edit(ctx, tripID, day, func(schedule *itinerary.DaySchedule) error {
		_, err := schedule.ReplaceItem(itemID, r, s.sessions.now())
		return err
	})
}

func (s *ScheduleService) edit(ctx context.Context, tripID string, day int, apply func(*itinerary.DaySchedule) error) (*itinerary.DaySchedule, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	schedule, err := daySchedule(session, day)
	if err != nil {
		return nil, err
	}
	if err := apply(schedule); err != nil {
		return nil, err
	}
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	return schedule, nil
}

func daySchedule(session *itinerary.TripSession, day int) (*itinerary.DaySchedule, error) {
	if !session.Trip.ContainsDay(day) {
		return nil, fmt.Errorf("%w: day %d not in 1..%d", utils.ErrDayOutOfRange, day, session.Trip.TotalDays)
	}
	schedule := session.Progress.Schedules[day]
	if schedule == nil {
		return nil, fmt.Errorf("%w: day %d", utils.ErrNoSchedule, day)
	}
	return schedule, nil
}

// ProviderHistory returns the archived provider exchanges of a trip, oldest day first.
func (s *ScheduleService) ProviderHistory(ctx context.Context, tripID string) ([]repositories.ProviderArchiveEntry, error) {
	entries, err := s.archive.ListForTrip(ctx, tripID)
	if err != nil {
		s.logger.Error("Failed to read provider archive", zap.String("trip_id", tripID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if entries == nil {
		entries = []repositories.ProviderArchiveEntry{}
	}
	return entries, nil
}

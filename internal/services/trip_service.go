package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

type TripServiceInterface interface {
	Create(ctx context.Context, in itinerary.TripInput, userID string) (*itinerary.TripSession, error)
	Get(ctx context.Context, tripID string) (*itinerary.TripSession, error)
	SelectFlights(ctx context.Context, tripID string, sel itinerary.FlightSelection) (*itinerary.TripSession, error)
	SetCurrentDay(ctx context.Context, tripID string, day int) (*itinerary.TripSession, error)
	ClearAll(ctx context.Context, tripID string) (*itinerary.TripSession, error)
	Export(ctx context.Context, tripID string) (itinerary.TripExport, error)
	Import(ctx context.Context, export itinerary.TripExport, userID string) (*itinerary.TripSession, error)
	Delete(ctx context.Context, tripID string) error
}

// sessionStore loads and saves trip sessions, translating a missing session into
// utils.ErrTripNotFound and storage failures into utils.ErrDatabaseError.
type sessionStore struct {
	repo   repositories.TripStateRepository
	now    func() time.Time
	logger *zap.Logger
}

func (s sessionStore) load(ctx context.Context, tripID string) (*itinerary.TripSession, error) {
	if tripID == "" {
		return nil, utils.ErrTripNotFound
	}
	session, err := s.repo.Get(ctx, tripID)
	if err != nil {
		s.logger.Error("Loading trip session failed", zap.String("trip_id", tripID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if session == nil {
		return nil, utils.ErrTripNotFound
	}
	return session, nil
}

func (s sessionStore) save(ctx context.Context, session *itinerary.TripSession) error {
	session.LastUpdated = s.now().UTC()
	if err := s.repo.Set(ctx, session); err != nil {
		s.logger.Error("Saving trip session failed", zap.String("trip_id", session.ID), zap.Error(err))
		return utils.ErrDatabaseError
	}
	return nil
}

type TripService struct {
	sessions sessionStore
	cities   CityServiceInterface
	logger   *zap.Logger
}

func NewTripService(repo repositories.TripStateRepository, cities CityServiceInterface, logger *zap.Logger) TripServiceInterface {
	return newTripService(repo, cities, logger, time.Now)
}

func newTripService(repo repositories.TripStateRepository, cities CityServiceInterface, logger *zap.Logger, now func() time.Time) *TripService {
	logger = logger.Named("trip")
	return &TripService{
		sessions: sessionStore{repo: repo, now: now, logger: logger},
		cities:   cities,
		logger:   logger,
	}
}

func (s *TripService) Create(ctx context.Context, in itinerary.TripInput, userID string) (*itinerary.TripSession, error) {
	trip, err := itinerary.NewTrip(in, utils.LocalTime(s.sessions.now()))
	if err != nil {
		return nil, err
	}

	if trip.CityID == "" {
		resolved, err := s.cities.Resolve(ctx, trip.DestinationCity)
		if err != nil {
			return nil, err
		}
		trip.CityID = resolved.CityID
	}

	session := itinerary.NewTripSession(uuid.NewString(), userID, trip, s.sessions.now().UTC())
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Trip created",
		zap.String("trip_id", session.ID),
		zap.String("destination", trip.DestinationCity),
		zap.String("city_id", trip.CityID),
		zap.Int("total_days", trip.TotalDays))
	return session, nil
}

func (s *TripService) Get(ctx context.Context, tripID string) (*itinerary.TripSession, error) {
	return s.sessions.load(ctx, tripID)
}

func (s *TripService) SelectFlights(ctx context.Context, tripID string, sel itinerary.FlightSelection) (*itinerary.TripSession, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for _, f := range []*itinerary.Flight{sel.Departure, sel.Return} {
		if f != nil && f.Price < 0 {
			return nil, fmt.Errorf("%w: flight price must not be negative", utils.ErrInvalidInput)
		}
	}

	session.SelectFlights(sel)
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *TripService) SetCurrentDay(ctx context.Context, tripID string, day int) (*itinerary.TripSession, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := session.Progress.Navigate(day, session.Trip.TotalDays); err != nil {
		return nil, err
	}
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClearAll keeps the trip itself and drops every day's preferences and schedule.
// Generations still running for the old revision are discarded when they finish.
func (s *TripService) ClearAll(ctx context.Context, tripID string) (*itinerary.TripSession, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	session.Progress.ClearAll()
	session.Invalidate()
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("Trip progress cleared", zap.String("trip_id", tripID), zap.Int("revision", session.Revision))
	return session, nil
}

func (s *TripService) Export(ctx context.Context, tripID string) (itinerary.TripExport, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return itinerary.TripExport{}, err
	}
	return itinerary.TripExport{
		Version:    itinerary.ExportVersion,
		ExportedAt: s.sessions.now().UTC(),
		Session:    *session,
	}, nil
}

// Import restores an exported session under its original id. Schedules outside the trip
// are dropped and totals are recomputed from the items.
func (s *TripService) Import(ctx context.Context, export itinerary.TripExport, userID string) (*itinerary.TripSession, error) {
	if export.Version != itinerary.ExportVersion {
		return nil, fmt.Errorf("%w: unsupported export version %d", utils.ErrInvalidInput, export.Version)
	}
	session := export.Session
	if session.Trip.TotalDays < 1 || session.Trip.DestinationCity == "" {
		return nil, fmt.Errorf("%w: export has no trip", utils.ErrInvalidInput)
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if userID != "" {
		session.UserID = userID
	}

	existing, err := s.sessions.repo.Get(ctx, session.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil && existing.Revision >= session.Revision {
		session.Revision = existing.Revision
	}
	session.Invalidate()

	totalDays := session.Trip.TotalDays
	progress := itinerary.NewTripProgress()
	progress.CurrentStep = session.Progress.CurrentStep
	// Days are restored in order up to the first day with nothing saved.
	restored := 0
	for day := 1; day <= totalDays; day++ {
		prefs := session.Progress.Preferences[day]
		schedule := session.Progress.Schedules[day]
		if prefs == nil && schedule == nil {
			break
		}
		if prefs != nil {
			prefs.Day = day
			if err := progress.SavePreferences(prefs, totalDays); err != nil {
				s.logger.Warn("Dropping imported preferences", zap.String("trip_id", session.ID), zap.Int("day", day), zap.Error(err))
			}
		}
		if schedule != nil {
			schedule.Day = day
			schedule.Recalculate()
			if err := progress.RecordSchedule(*schedule, totalDays); err != nil {
				s.logger.Warn("Dropping imported schedule", zap.String("trip_id", session.ID), zap.Int("day", day), zap.Error(err))
			}
		}
		restored = day
	}
	if dropped := droppedDays(session.Progress, restored); len(dropped) > 0 {
		s.logger.Warn("Dropping imported days past the first gap", zap.String("trip_id", session.ID), zap.Ints("dropped_days", dropped))
	}
	progress.CurrentDay = itinerary.FirstIncompleteDay(progress.Schedules, totalDays)
	if progress.CurrentStep == "" {
		progress.CurrentStep = itinerary.StepPreferences
	}
	session.Progress = progress

	if err := s.sessions.save(ctx, &session); err != nil {
		return nil, err
	}
	s.logger.Info("Trip imported", zap.String("trip_id", session.ID), zap.Ints("completed_days", progress.CompletedDays()))
	return &session, nil
}

// droppedDays lists, in order, every day in progress after the last restored one.
func droppedDays(progress itinerary.TripProgress, restored int) []int {
	seen := map[int]bool{}
	for day, prefs := range progress.Preferences {
		if prefs != nil && day > restored {
			seen[day] = true
		}
	}
	for day, schedule := range progress.Schedules {
		if schedule != nil && day > restored {
			seen[day] = true
		}
	}
	days := make([]int, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

func (s *TripService) Delete(ctx context.Context, tripID string) error {
	if _, err := s.sessions.load(ctx, tripID); err != nil {
		return err
	}
	if err := s.sessions.repo.Delete(ctx, tripID); err != nil {
		return utils.ErrDatabaseError
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
	dbm "tourplanner/internal/models/db_models"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

type PreferenceServiceInterface interface {
	// DayCandidates returns the day's saved candidates when they were fetched for the
	// trip's current destination, and otherwise fetches and stores a fresh set.
	DayCandidates(ctx context.Context, tripID string, day int) (*itinerary.DayPreferences, error)
	GetDayPreferences(ctx context.Context, tripID string, day int) (*itinerary.DayPreferences, error)
	SaveDayPreferences(ctx context.Context, tripID string, prefs *itinerary.DayPreferences) (*itinerary.DayPreferences, error)
	TogglePreference(ctx context.Context, tripID string, day int, category itinerary.Category, itemID string, kind itinerary.PreferenceKind) (itinerary.PlaceCandidate, error)
}

type PreferenceService struct {
	sessions  sessionStore
	catalog   PlaceCatalogInterface
	userPrefs repositories.UserPreferenceRepository
	logger    *zap.Logger
}

func NewPreferenceService(
	repo repositories.TripStateRepository,
	catalog PlaceCatalogInterface,
	userPrefs repositories.UserPreferenceRepository,
	logger *zap.Logger,
) PreferenceServiceInterface {
	return newPreferenceService(repo, catalog, userPrefs, logger, time.Now)
}

func newPreferenceService(
	repo repositories.TripStateRepository,
	catalog PlaceCatalogInterface,
	userPrefs repositories.UserPreferenceRepository,
	logger *zap.Logger,
	now func() time.Time,
) *PreferenceService {
	logger = logger.Named("preferences")
	return &PreferenceService{
		sessions:  sessionStore{repo: repo, now: now, logger: logger},
		catalog:   catalog,
		userPrefs: userPrefs,
		logger:    logger,
	}
}

func (s *PreferenceService) DayCandidates(ctx context.Context, tripID string, day int) (*itinerary.DayPreferences, error) {
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

	key := itinerary.CacheKey(trip.CityID, day)
	if saved := session.Progress.Preferences[day]; saved != nil && saved.CacheKey == key {
		return saved, nil
	}

	candidates, err := s.catalog.FetchCandidates(ctx, CatalogRequest{
		CityID:      trip.CityID,
		Destination: trip.DestinationCity,
		Days:        trip.TotalDays,
		Budget:      trip.AvailableBudget(itinerary.DefaultBudgetFloor),
		PartySize:   trip.PartySize(),
		UserID:      session.UserID,
	})
	if err != nil {
		return nil, err
	}

	prefs := itinerary.NewDayPreferences(day, candidates, key)
	prefs.UpdatedAt = s.sessions.now().UTC()
	if err := session.Progress.SavePreferences(prefs, trip.TotalDays); err != nil {
		return nil, err
	}
	session.Progress.CurrentDay = day
	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (s *PreferenceService) GetDayPreferences(ctx context.Context, tripID string, day int) (*itinerary.DayPreferences, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !session.Trip.ContainsDay(day) {
		return nil, fmt.Errorf("%w: day %d not in 1..%d", utils.ErrDayOutOfRange, day, session.Trip.TotalDays)
	}
	prefs := session.Progress.Preferences[day]
	if prefs == nil {
		return nil, utils.ErrNoPreferences
	}
	return prefs, nil
}

// SaveDayPreferences overwrites the whole snapshot of one day.
func (s *PreferenceService) SaveDayPreferences(ctx context.Context, tripID string, prefs *itinerary.DayPreferences) (*itinerary.DayPreferences, error) {
	if prefs == nil {
		return nil, fmt.Errorf("%w: preferences are required", utils.ErrInvalidInput)
	}
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}

	prefs = normalizePreferences(prefs)
	if err := session.Progress.Navigate(prefs.Day, session.Trip.TotalDays); err != nil {
		return nil, err
	}
	prefs.CacheKey = itinerary.CacheKey(session.Trip.CityID, prefs.Day)
	prefs.UpdatedAt = s.sessions.now().UTC()
	if err := session.Progress.SavePreferences(prefs, session.Trip.TotalDays); err != nil {
		return nil, err
	}
	session.Progress.CurrentStep = itinerary.StepPreferences

	if err := s.sessions.save(ctx, session); err != nil {
		return nil, err
	}
	s.remember(ctx, session, prefs)
	return prefs, nil
}

// TogglePreference persists the session before returning, one toggle per write.
func (s *PreferenceService) TogglePreference(
	ctx context.Context,
	tripID string,
	day int,
	category itinerary.Category,
	itemID string,
	kind itinerary.PreferenceKind,
) (itinerary.PlaceCandidate, error) {
	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return itinerary.PlaceCandidate{}, err
	}
	if !session.Trip.ContainsDay(day) {
		return itinerary.PlaceCandidate{}, fmt.Errorf("%w: day %d not in 1..%d", utils.ErrDayOutOfRange, day, session.Trip.TotalDays)
	}
	prefs := session.Progress.Preferences[day]
	if prefs == nil {
		return itinerary.PlaceCandidate{}, utils.ErrNoPreferences
	}

	updated, err := prefs.Toggle(category, itemID, kind)
	if err != nil {
		return itinerary.PlaceCandidate{}, err
	}
	prefs.UpdatedAt = s.sessions.now().UTC()

	if err := s.sessions.save(ctx, session); err != nil {
		return itinerary.PlaceCandidate{}, err
	}
	s.remember(ctx, session, prefs)
	return updated, nil
}

// remember stores the user's latest likes for the city. Failures are logged only: the
// trip session already holds the preferences.
func (s *PreferenceService) remember(ctx context.Context, session *itinerary.TripSession, prefs *itinerary.DayPreferences) {
	if session.UserID == "" || s.userPrefs == nil {
		return
	}
	uid, err := uuid.Parse(session.UserID)
	if err != nil {
		return
	}

	row := &dbm.UserPreference{
		UserID:   uid,
		CityKey:  session.Trip.CityID,
		CityName: session.Trip.DestinationCity,
	}
	liked := refsByCategory(prefs.Liked())
	disliked := refsByCategory(prefs.Disliked())
	row.LikedRestaurants = liked[itinerary.CategoryRestaurants]
	row.LikedHotels = liked[itinerary.CategoryHotels]
	row.LikedActivities = liked[itinerary.CategoryActivities]
	row.LikedTransport = liked[itinerary.CategoryTransport]
	row.DislikedRestaurants = disliked[itinerary.CategoryRestaurants]
	row.DislikedHotels = disliked[itinerary.CategoryHotels]
	row.DislikedActivities = disliked[itinerary.CategoryActivities]
	row.DislikedTransport = disliked[itinerary.CategoryTransport]

	if err := s.userPrefs.Upsert(ctx, row); err != nil {
		s.logger.Warn("Persisting user preferences failed",
			zap.String("user_id", session.UserID),
			zap.String("city_id", session.Trip.CityID),
			zap.Error(err))
	}
}

func refsByCategory(items []itinerary.TaggedCandidate) map[itinerary.Category][]string {
	out := map[itinerary.Category][]string{}
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it.Reference(it.Category))
	}
	for _, c := range itinerary.Categories {
		if out[c] == nil {
			out[c] = []string{}
		}
	}
	return out
}

// normalizePreferences re-applies the like/dislike exclusion to submitted data.
func normalizePreferences(in *itinerary.DayPreferences) *itinerary.DayPreferences {
	prefs := in.Clone()
	if prefs.Candidates == nil {
		prefs.Candidates = map[itinerary.Category][]itinerary.PlaceCandidate{}
	}
	for _, items := range prefs.Candidates {
		for i := range items {
			if items[i].Liked && items[i].Disliked {
				items[i].Disliked = false
			}
		}
	}
	return prefs
}

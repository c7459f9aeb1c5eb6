package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tourplanner/internal/itinerary"
	dbm "tourplanner/internal/models/db_models"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

type CatalogRequest struct {
	CityID      string
	Destination string
	Days        int
	Budget      float64
	PartySize   int
	UserID      string
}

type PlaceCatalogInterface interface {
	// FetchCandidates makes at most one provider call. A provider failure is returned,
	// never swallowed, so callers can show an empty state.
	FetchCandidates(ctx context.Context, req CatalogRequest) (itinerary.CatalogCandidates, error)
}

type PlaceCatalogService struct {
	provider  ProviderClient
	cities    CityServiceInterface
	userPrefs repositories.UserPreferenceRepository
	cache     *cache.Cache
	group     singleflight.Group
	logger    *zap.Logger
}

func NewPlaceCatalogService(
	provider ProviderClient,
	cities CityServiceInterface,
	userPrefs repositories.UserPreferenceRepository,
	ttl time.Duration,
	logger *zap.Logger,
) PlaceCatalogInterface {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PlaceCatalogService{
		provider:  provider,
		cities:    cities,
		userPrefs: userPrefs,
		cache:     cache.New(ttl, 2*ttl),
		logger:    logger.Named("catalog"),
	}
}

func (s *PlaceCatalogService) FetchCandidates(ctx context.Context, req CatalogRequest) (itinerary.CatalogCandidates, error) {
	ctx, span := tracer.Start(ctx, "catalog.FetchCandidates")
	defer span.End()

	if req.CityID == "" {
		if req.Destination == "" {
			return itinerary.CatalogCandidates{}, fmt.Errorf("%w: destination is required", utils.ErrInvalidInput)
		}
		resolved, err := s.cities.Resolve(ctx, req.Destination)
		if err != nil {
			return itinerary.CatalogCandidates{}, err
		}
		req.CityID = resolved.CityID
	}
	span.SetAttributes(attribute.String("city_id", req.CityID), attribute.Int("days", req.Days))

	places, hotels := itinerary.CatalogLimits(req.Days)
	key := fmt.Sprintf("%s|%d|%d", req.CityID, places, hotels)

	// The shared fetch outlives any single caller; each caller stops waiting on its own
	// context.
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
		resp, err := s.provider.Places(fetchCtx, CatalogQuery{
			CityID:      req.CityID,
			Destination: req.Destination,
			Days:        req.Days,
			Budget:      req.Budget,
			Passengers:  req.PartySize,
			Limit:       places,
			HotelLimit:  hotels,
		})
		if err != nil {
			return nil, err
		}
		normalized := itinerary.NormalizeCatalog(resp.Data)
		s.cache.SetDefault(key, normalized)
		return normalized, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return itinerary.CatalogCandidates{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.logger.Warn("Catalog fetch failed", zap.String("city_id", req.CityID), zap.Error(res.Err))
		return itinerary.CatalogCandidates{}, res.Err
	}

	out := copyCandidates(res.Val.(itinerary.CatalogCandidates))
	if saved := s.savedFor(ctx, req.UserID, req.CityID); saved != nil {
		out.ApplySaved(*saved)
	}
	return out, nil
}

// savedFor is best effort: a lookup failure only loses the pre-marking.
func (s *PlaceCatalogService) savedFor(ctx context.Context, userID, cityID string) *itinerary.SavedPreferences {
	if userID == "" || s.userPrefs == nil {
		return nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	row, err := s.userPrefs.Get(ctx, uid, cityID)
	if err != nil {
		s.logger.Warn("Loading saved preferences failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if row == nil {
		return nil
	}
	saved := SavedFromRow(row)
	return &saved
}

func SavedFromRow(row *dbm.UserPreference) itinerary.SavedPreferences {
	return itinerary.SavedPreferences{
		Liked: map[itinerary.Category][]string{
			itinerary.CategoryRestaurants: row.LikedRestaurants,
			itinerary.CategoryHotels:      row.LikedHotels,
			itinerary.CategoryActivities:  row.LikedActivities,
			itinerary.CategoryTransport:   row.LikedTransport,
		},
		Disliked: map[itinerary.Category][]string{
			itinerary.CategoryRestaurants: row.DislikedRestaurants,
			itinerary.CategoryHotels:      row.DislikedHotels,
			itinerary.CategoryActivities:  row.DislikedActivities,
			itinerary.CategoryTransport:   row.DislikedTransport,
		},
	}
}

func copyCandidates(c itinerary.CatalogCandidates) itinerary.CatalogCandidates {
	return itinerary.CatalogCandidates{
		Restaurants: append([]itinerary.PlaceCandidate(nil), c.Restaurants...),
		Hotels:      append([]itinerary.PlaceCandidate(nil), c.Hotels...),
		Attractions: append([]itinerary.PlaceCandidate(nil), c.Attractions...),
		Transport:   append([]itinerary.PlaceCandidate(nil), c.Transport...),
	}
}

package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"tourplanner/internal/itinerary"
)

type RecommendationServiceInterface interface {
	// RequestDaySchedule asks the provider for one day. The request is returned with the
	// response so callers can archive the exact payload sent.
	RequestDaySchedule(
		ctx context.Context,
		trip itinerary.Trip,
		day int,
		prefs *itinerary.DayPreferences,
		known []itinerary.TaggedCandidate,
	) (itinerary.RecommendationRequest, *itinerary.RecommendationResponse, error)
}

type RecommendationService struct {
	provider    ProviderClient
	budgetFloor float64
	logger      *zap.Logger
}

func NewRecommendationService(provider ProviderClient, budgetFloor float64, logger *zap.Logger) RecommendationServiceInterface {
	if budgetFloor <= 0 {
		budgetFloor = itinerary.DefaultBudgetFloor
	}
	return &RecommendationService{
		provider:    provider,
		budgetFloor: budgetFloor,
		logger:      logger.Named("recommendation"),
	}
}

func (s *RecommendationService) RequestDaySchedule(
	ctx context.Context,
	trip itinerary.Trip,
	day int,
	prefs *itinerary.DayPreferences,
	known []itinerary.TaggedCandidate,
) (itinerary.RecommendationRequest, *itinerary.RecommendationResponse, error) {
	ctx, span := tracer.Start(ctx, "recommendation.RequestDaySchedule")
	defer span.End()

	req := itinerary.BuildRecommendationRequest(trip, day, prefs, known, s.budgetFloor)
	span.SetAttributes(
		attribute.String("city_id", req.DestinationCityID),
		attribute.Int("day", day),
		attribute.Float64("target_budget", req.TargetBudget),
	)

	s.logger.Info("Requesting day schedule",
		zap.String("city_id", req.DestinationCityID),
		zap.Int("day", day),
		zap.Int("guests", req.GuestCount),
		zap.Float64("target_budget", req.TargetBudget),
		zap.Int("liked_activities", len(req.LikedActivities)),
		zap.Int("liked_restaurants", len(req.LikedRestaurants)),
		zap.Int("liked_hotels", len(req.LikedHotels)))

	resp, err := s.provider.Recommend(ctx, req)
	if err != nil {
		return req, nil, err
	}
	return req, resp, nil
}

// knownPlaces lists every candidate of a day so liked and disliked references can be
// sent with their full records.
func knownPlaces(prefs *itinerary.DayPreferences) []itinerary.TaggedCandidate {
	if prefs == nil {
		return nil
	}
	var out []itinerary.TaggedCandidate
	for _, c := range itinerary.Categories {
		for _, p := range prefs.Candidates[c] {
			out = append(out, itinerary.TaggedCandidate{Category: c, PlaceCandidate: p})
		}
	}
	return out
}

package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tourplanner/internal/itinerary"
	"tourplanner/pkg/utils"
)

type FlightSearchInput struct {
	DepartureCity string
	ArrivalCity   string
	DepartureDate string
	ReturnDate    string
}

type FlightSearchResult struct {
	Outbound []itinerary.Flight `json:"outbound"`
	Return   []itinerary.Flight `json:"return"`
}

type FlightServiceInterface interface {
	Search(ctx context.Context, in FlightSearchInput) (FlightSearchResult, error)
}

type FlightService struct {
	provider ProviderClient
	now      func() time.Time
	logger   *zap.Logger
}

func NewFlightService(provider ProviderClient, logger *zap.Logger) FlightServiceInterface {
	return &FlightService{provider: provider, now: time.Now, logger: logger.Named("flight")}
}

// Search looks up the outbound leg and, when a return date is given, the return leg in
// parallel. Either leg failing fails the search.
func (s *FlightService) Search(ctx context.Context, in FlightSearchInput) (FlightSearchResult, error) {
	verr := &itinerary.ValidationError{}
	if strings.TrimSpace(in.DepartureCity) == "" {
		verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "departure_city", Message: "Departure city is required"})
	}
	if strings.TrimSpace(in.ArrivalCity) == "" {
		verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "arrival_city", Message: "Arrival city is required"})
	}
	dep, err := itinerary.ParseDate(in.DepartureDate)
	switch {
	case err != nil:
		verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "departure_date", Message: "Departure date must use the YYYY-MM-DD format"})
	case dep.Before(truncateDay(utils.LocalTime(s.now()))):
		verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "departure_date", Message: "Departure date cannot be in the past"})
	}
	if in.ReturnDate != "" {
		ret, retErr := itinerary.ParseDate(in.ReturnDate)
		switch {
		case retErr != nil:
			verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "return_date", Message: "Return date must use the YYYY-MM-DD format"})
		case err == nil && !ret.After(dep):
			verr.Fields = append(verr.Fields, itinerary.FieldError{Field: "return_date", Message: "Return date must be after the departure date"})
		}
	}
	if len(verr.Fields) > 0 {
		return FlightSearchResult{}, verr
	}

	var result FlightSearchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		groups, err := s.provider.SearchFlights(gctx, FlightQuery{
			DepartureCity: in.DepartureCity,
			ArrivalCity:   in.ArrivalCity,
			DepartureDate: in.DepartureDate,
		})
		if err != nil {
			return err
		}
		result.Outbound = itinerary.FlattenFlights(groups)
		return nil
	})
	if in.ReturnDate != "" {
		g.Go(func() error {
			groups, err := s.provider.SearchFlights(gctx, FlightQuery{
				DepartureCity: in.ArrivalCity,
				ArrivalCity:   in.DepartureCity,
				DepartureDate: in.ReturnDate,
			})
			if err != nil {
				return err
			}
			result.Return = itinerary.FlattenFlights(groups)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("Flight search failed",
			zap.String("from", in.DepartureCity),
			zap.String("to", in.ArrivalCity),
			zap.Error(err))
		return FlightSearchResult{}, err
	}

	if result.Outbound == nil {
		result.Outbound = []itinerary.Flight{}
	}
	if result.Return == nil {
		result.Return = []itinerary.Flight{}
	}
	return result, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

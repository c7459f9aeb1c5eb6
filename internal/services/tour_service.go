package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tourplanner/internal/infra"
	"tourplanner/internal/itinerary"
	dbm "tourplanner/internal/models/db_models"
	"tourplanner/internal/models/response_models"
	"tourplanner/internal/repositories"
	mem "tourplanner/pkg/memcache"
	"tourplanner/pkg/utils"
)

const finalizeLeaseTTL = 2 * time.Minute

type TourServiceInterface interface {
	// Finalize builds the final tour of a trip, stores it, announces it to the booking
	// side and clears the trip's day progress.
	Finalize(ctx context.Context, tripID string, userID string) (*response_models.TourResponse, error)
	GetTour(ctx context.Context, tourID string) (*response_models.TourResponse, error)
	ListTours(ctx context.Context, userID string, page int, pageSize int) ([]response_models.TourSummary, error)
	ExportPDF(ctx context.Context, tourID string) ([]byte, error)
	// RecordPayment marks a tour paid. Repeating it returns the stored payment and true.
	RecordPayment(ctx context.Context, tourID string, userID string, method string) (*response_models.PaymentResponse, bool, error)
	GetPayment(ctx context.Context, tourID string) (*response_models.PaymentResponse, error)
}

// TourFinalizedEvent is published for every stored tour.
type TourFinalizedEvent struct {
	TourID      string    `json:"tour_id"`
	TripID      string    `json:"trip_id"`
	UserID      string    `json:"user_id,omitempty"`
	Departure   string    `json:"departure"`
	Destination string    `json:"destination"`
	TotalDays   int       `json:"total_days"`
	PartySize   int       `json:"party_size"`
	TotalCost   float64   `json:"total_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

type TourService struct {
	sessions  sessionStore
	tours     repositories.TourRepository
	payments  repositories.PaymentRepository
	publisher infra.EventPublisher
	leases    mem.LeaseStore
	metrics   *infra.AppMetrics
	currency  string
	logger    *zap.Logger
}

func NewTourService(
	repo repositories.TripStateRepository,
	tours repositories.TourRepository,
	payments repositories.PaymentRepository,
	publisher infra.EventPublisher,
	leases mem.LeaseStore,
	metrics *infra.AppMetrics,
	logger *zap.Logger,
) TourServiceInterface {
	return newTourService(repo, tours, payments, publisher, leases, metrics, logger, time.Now)
}

func newTourService(
	repo repositories.TripStateRepository,
	tours repositories.TourRepository,
	payments repositories.PaymentRepository,
	publisher infra.EventPublisher,
	leases mem.LeaseStore,
	metrics *infra.AppMetrics,
	logger *zap.Logger,
	now func() time.Time,
) *TourService {
	if metrics == nil {
		metrics = infra.NoopMetrics()
	}
	if leases == nil {
		leases = mem.NewLeases()
	}
	logger = logger.Named("tour")
	return &TourService{
		sessions:  sessionStore{repo: repo, now: now, logger: logger},
		tours:     tours,
		payments:  payments,
		publisher: publisher,
		leases:    leases,
		metrics:   metrics,
		currency:  "USD",
		logger:    logger,
	}
}

func (s *TourService) Finalize(ctx context.Context, tripID string, userID string) (*response_models.TourResponse, error) {
	ctx, span := tracer.Start(ctx, "tour.Finalize")
	defer span.End()

	// One finalize per trip at a time.
	key := tripID + ":finalize"
	token, err := s.leases.Acquire(ctx, key, finalizeLeaseTTL)
	if err != nil {
		s.logger.Error("Acquiring finalize lease failed", zap.String("lease", key), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if token == "" {
		return nil, utils.ErrFinalizeInProgress
	}
	defer func() {
		if err := s.leases.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn("Releasing finalize lease failed", zap.String("lease", key), zap.Error(err))
		}
	}()

	session, err := s.sessions.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	final, err := itinerary.BuildFinalTour(session.Progress.Schedules, session.Trip, session.Flights)
	if err != nil {
		return nil, err
	}

	if userID == "" {
		userID = session.UserID
	}
	model := toTourModel(final, session, userID)
	model.Stamp(s.sessions.now())
	tourID, err := s.tours.Create(ctx, model)
	if err != nil {
		s.logger.Error("Storing tour failed", zap.String("trip_id", tripID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	s.metrics.TourBuilt(ctx)

	s.publish(ctx, TourFinalizedEvent{
		TourID:      tourID.String(),
		TripID:      tripID,
		UserID:      userID,
		Departure:   final.Departure,
		Destination: final.Destination,
		TotalDays:   final.TotalDays,
		PartySize:   final.PartySize,
		TotalCost:   final.TotalCost,
		CreatedAt:   s.sessions.now().UTC(),
	})

	session.Progress.ClearAll()
	session.Invalidate()
	if err := s.sessions.save(ctx, session); err != nil {
		s.logger.Warn("Clearing finalized trip failed", zap.String("trip_id", tripID), zap.Error(err))
	}

	s.logger.Info("Tour finalized",
		zap.String("tour_id", tourID.String()),
		zap.String("trip_id", tripID),
		zap.Float64("total_cost", final.TotalCost))
	return &response_models.TourResponse{
		ID:        tourID.String(),
		TripID:    tripID,
		Status:    string(model.Status),
		CreatedAt: model.CreatedAt,
		Tour:      final,
	}, nil
}

// publish is best effort: the tour is already stored.
func (s *TourService) publish(ctx context.Context, event TourFinalizedEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Encoding tour event failed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(event.TourID), payload); err != nil {
		s.logger.Warn("Publishing tour event failed", zap.String("tour_id", event.TourID), zap.Error(err))
	}
}

func (s *TourService) GetTour(ctx context.Context, tourID string) (*response_models.TourResponse, error) {
	tour, err := s.loadTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return &response_models.TourResponse{
		ID:        tour.ID.String(),
		TripID:    tour.TripSessionID,
		Status:    string(tour.Status),
		CreatedAt: tour.CreatedAt,
		Tour:      fromTourModel(tour),
	}, nil
}

func (s *TourService) loadTour(ctx context.Context, tourID string) (*dbm.Tour, error) {
	id, err := uuid.Parse(tourID)
	if err != nil {
		return nil, utils.ErrTourNotFound
	}
	tour, err := s.tours.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Loading tour failed", zap.String("tour_id", tourID), zap.Error(err))
		return nil, utils.ErrDatabaseError
	}
	if tour == nil {
		return nil, utils.ErrTourNotFound
	}
	return tour, nil
}

func (s *TourService) ListTours(ctx context.Context, userID string, page int, pageSize int) ([]response_models.TourSummary, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, utils.ErrUnauthorized
	}
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidInput
	}

	tours, err := s.tours.ListByUser(ctx, uid, page, pageSize)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	out := make([]response_models.TourSummary, 0, len(tours))
	for _, t := range tours {
		out = append(out, response_models.TourSummary{
			ID:            t.ID.String(),
			Departure:     t.Departure,
			Destination:   t.Destination,
			DepartureDate: t.DepartureDate.Format(itinerary.DateLayout),
			TotalDays:     t.TotalDays,
			PartySize:     t.PartySize,
			TotalCost:     t.TotalCost,
			Status:        string(t.Status),
			CreatedAt:     t.CreatedAt,
		})
	}
	return out, nil
}

func (s *TourService) ExportPDF(ctx context.Context, tourID string) ([]byte, error) {
	tour, err := s.loadTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	raw, err := RenderTourPDF(tour.ID.String(), tour.CreatedAt, fromTourModel(tour))
	if err != nil {
		s.logger.Error("Rendering tour PDF failed", zap.String("tour_id", tourID), zap.Error(err))
		return nil, err
	}
	return raw, nil
}

func (s *TourService) RecordPayment(ctx context.Context, tourID string, userID string, method string) (*response_models.PaymentResponse, bool, error) {
	tour, err := s.loadTour(ctx, tourID)
	if err != nil {
		return nil, false, err
	}

	var payer *uuid.UUID
	if userID != "" {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return nil, false, utils.ErrUnauthorized
		}
		payer = &uid
	}
	if tour.UserID != nil && (payer == nil || *payer != *tour.UserID) {
		return nil, false, utils.ErrUnauthorized
	}

	paidAt := s.sessions.now().Unix()
	stored, created, err := s.payments.RecordPaid(ctx, &dbm.Payment{
		TourID:      tour.ID,
		UserID:      payer,
		AmountMinor: int64(math.Round(tour.TotalCost * 100)),
		Currency:    s.currency,
		Method:      method,
		PaidAt:      &paidAt,
	})
	if err != nil {
		s.logger.Error("Recording payment failed", zap.String("tour_id", tourID), zap.Error(err))
		return nil, false, utils.ErrDatabaseError
	}
	if created {
		s.logger.Info("Tour paid", zap.String("tour_id", tourID), zap.Int64("amount_minor", stored.AmountMinor))
	}
	return toPaymentResponse(stored), !created, nil
}

func (s *TourService) GetPayment(ctx context.Context, tourID string) (*response_models.PaymentResponse, error) {
	tour, err := s.loadTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	payment, err := s.payments.GetByTourID(ctx, tour.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if payment == nil {
		return &response_models.PaymentResponse{
			TourID:   tour.ID.String(),
			Status:   string(dbm.PaymentStatusPending),
			Amount:   tour.TotalCost,
			Currency: s.currency,
		}, nil
	}
	return toPaymentResponse(payment), nil
}

func toPaymentResponse(p *dbm.Payment) *response_models.PaymentResponse {
	out := &response_models.PaymentResponse{
		TourID:   p.TourID.String(),
		Status:   string(p.Status),
		Amount:   float64(p.AmountMinor) / 100,
		Currency: p.Currency,
		Method:   p.Method,
	}
	if p.PaidAt != nil {
		out.PaidAt = *p.PaidAt
	}
	return out
}

func toTourModel(final itinerary.FinalTour, session *itinerary.TripSession, userID string) *dbm.Tour {
	tour := &dbm.Tour{
		TripSessionID: session.ID,
		Departure:     final.Departure,
		Destination:   final.Destination,
		CityID:        session.Trip.CityID,
		DepartureDate: session.Trip.DepartureDate,
		TotalDays:     final.TotalDays,
		Budget:        final.Budget,
		PartySize:     final.PartySize,
		TotalCost:     final.TotalCost,
		Status:        dbm.TourStatusCreated,
	}
	if uid, err := uuid.Parse(userID); err == nil {
		tour.UserID = &uid
	}

	for direction, f := range map[string]*itinerary.Flight{"departure": final.DepartureFlight, "return": final.ReturnFlight} {
		if f == nil {
			continue
		}
		tour.Flights = append(tour.Flights, dbm.TourFlight{
			Direction:  direction,
			FlightKey:  f.ID,
			FlightCode: f.FlightCode,
			Airline:    f.Airline,
			DepIATA:    f.DepIATA,
			ArrIATA:    f.ArrIATA,
			DepTime:    f.DepTime,
			ArrTime:    f.ArrTime,
			Duration:   f.Duration,
			Stops:      f.Stops,
			Price:      f.Price,
		})
	}

	for _, d := range final.Schedules {
		day := dbm.TourDay{
			DayNumber:      d.Day,
			Date:           d.Date,
			TotalCost:      d.TotalCost,
			Source:         string(d.Source),
			FallbackReason: d.FallbackReason,
		}
		for i, it := range d.Items {
			day.Items = append(day.Items, dbm.TourItem{
				Position:      i,
				ItemKey:       it.ID,
				ItemType:      string(it.Type),
				StartTime:     it.StartTime,
				EndTime:       it.EndTime,
				Title:         it.Title,
				Description:   it.Description,
				Cost:          it.Cost,
				TransportMode: it.TransportMode,
				Distance:      it.DistanceLabel,
				TravelTime:    it.TravelTimeLabel,
				PlaceID:       it.ExternalPlaceID,
			})
		}
		tour.Days = append(tour.Days, day)
	}
	return tour
}

func fromTourModel(t *dbm.Tour) itinerary.FinalTour {
	out := itinerary.FinalTour{
		Schedules:   make([]itinerary.DaySchedule, 0, len(t.Days)),
		Destination: t.Destination,
		Departure:   t.Departure,
		TotalDays:   t.TotalDays,
		Budget:      t.Budget,
		PartySize:   t.PartySize,
		TotalCost:   t.TotalCost,
	}

	for _, f := range t.Flights {
		flight := &itinerary.Flight{
			ID:         f.FlightKey,
			FlightCode: f.FlightCode,
			Airline:    f.Airline,
			DepTime:    f.DepTime,
			ArrTime:    f.ArrTime,
			DepIATA:    f.DepIATA,
			ArrIATA:    f.ArrIATA,
			Duration:   f.Duration,
			Stops:      f.Stops,
			Price:      f.Price,
		}
		if f.Direction == "return" {
			out.ReturnFlight = flight
		} else {
			out.DepartureFlight = flight
		}
	}

	for _, d := range t.Days {
		schedule := itinerary.DaySchedule{
			Day:            d.DayNumber,
			Date:           d.Date,
			DateLabel:      d.Date.Format(itinerary.DisplayDateLayout),
			Completed:      true,
			Items:          make([]itinerary.ScheduleItem, 0, len(d.Items)),
			Source:         itinerary.ScheduleSource(d.Source),
			FallbackReason: d.FallbackReason,
		}
		for _, it := range d.Items {
			schedule.Items = append(schedule.Items, itinerary.ScheduleItem{
				ID:              it.ItemKey,
				Type:            itinerary.ItemType(it.ItemType),
				StartTime:       it.StartTime,
				EndTime:         it.EndTime,
				Title:           it.Title,
				Description:     it.Description,
				Cost:            it.Cost,
				TransportMode:   it.TransportMode,
				DistanceLabel:   it.Distance,
				TravelTimeLabel: it.TravelTime,
				ExternalPlaceID: it.PlaceID,
			})
		}
		schedule.Recalculate()
		out.Schedules = append(out.Schedules, schedule)
	}
	return out
}

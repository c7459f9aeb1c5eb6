package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
	"tourplanner/internal/itinerary"
	"tourplanner/pkg/utils"
)

const (
	recommendationsPath = "/api/recommendations"
	placesPath          = "/api/places"
	flightSearchPath    = "/api/flight-search"
	citiesPath          = "/api/cities"
	healthPath          = "/health"

	maxErrorBody = 2048
)

var tracer = otel.Tracer("tourplanner/services")

type CatalogQuery struct {
	CityID      string  `json:"city_id"`
	Destination string  `json:"destination"`
	Days        int     `json:"days"`
	Budget      float64 `json:"budget"`
	Passengers  int     `json:"passengers"`
	Limit       int     `json:"limit"`
	HotelLimit  int     `json:"hotel_limit"`
}

type FlightQuery struct {
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	DepartureDate string `json:"departure_date"`
}

type FlightSearchResponse struct {
	Success *bool                                 `json:"success,omitempty"`
	Error   string                                `json:"error,omitempty"`
	Data    map[string][]itinerary.ProviderFlight `json:"data"`
}

type ProviderCity struct {
	ID        itinerary.FlexString `json:"id"`
	City      string               `json:"city"`
	CityASCII string               `json:"city_ascii"`
	Country   string               `json:"country"`
}

type CitiesResponse struct {
	Success *bool          `json:"success,omitempty"`
	Error   string         `json:"error,omitempty"`
	Cities  []ProviderCity `json:"cities"`
}

// ProviderClient talks to the external recommendation service. Each call is made exactly
// once. Transport failures, non-2xx statuses and {success:false} bodies all come back
// wrapping utils.ErrProviderUnavailable.
type ProviderClient interface {
	Recommend(ctx context.Context, req itinerary.RecommendationRequest) (*itinerary.RecommendationResponse, error)
	Places(ctx context.Context, q CatalogQuery) (*itinerary.CatalogResponse, error)
	SearchFlights(ctx context.Context, q FlightQuery) (map[string][]itinerary.ProviderFlight, error)
	Cities(ctx context.Context, limit int) ([]ProviderCity, error)
	Health(ctx context.Context) (map[string]any, error)
}

type providerClient struct {
	http          *http.Client
	baseURL       string
	apiKey        string
	healthTimeout time.Duration
	logger        *zap.Logger
	metrics       *infra.AppMetrics
}

func NewProviderClient(cfg config.ProviderConfig, logger *zap.Logger, metrics *infra.AppMetrics) ProviderClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = 10 * time.Second
	}
	if metrics == nil {
		metrics = infra.NoopMetrics()
	}
	return &providerClient{
		http:          &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		healthTimeout: healthTimeout,
		logger:        logger.Named("provider"),
		metrics:       metrics,
	}
}

func (c *providerClient) Recommend(ctx context.Context, req itinerary.RecommendationRequest) (*itinerary.RecommendationResponse, error) {
	var out itinerary.RecommendationResponse
	if err := c.do(ctx, http.MethodPost, recommendationsPath, nil, req, &out); err != nil {
		return nil, err
	}
	if out.Failed() {
		return nil, c.rejected(recommendationsPath, out.Error)
	}
	return &out, nil
}

func (c *providerClient) Places(ctx context.Context, q CatalogQuery) (*itinerary.CatalogResponse, error) {
	var out itinerary.CatalogResponse
	if err := c.do(ctx, http.MethodPost, placesPath, nil, q, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, c.rejected(placesPath, out.Error)
	}
	return &out, nil
}

func (c *providerClient) SearchFlights(ctx context.Context, q FlightQuery) (map[string][]itinerary.ProviderFlight, error) {
	var out FlightSearchResponse
	if err := c.do(ctx, http.MethodPost, flightSearchPath, nil, q, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, c.rejected(flightSearchPath, out.Error)
	}
	return out.Data, nil
}

func (c *providerClient) Cities(ctx context.Context, limit int) ([]ProviderCity, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var out CitiesResponse
	if err := c.do(ctx, http.MethodGet, citiesPath, query, nil, &out); err != nil {
		return nil, err
	}
	if out.Success != nil && !*out.Success {
		return nil, c.rejected(citiesPath, out.Error)
	}
	return out.Cities, nil
}

func (c *providerClient) Health(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, healthPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *providerClient) rejected(endpoint, message string) error {
	if message == "" {
		message = "provider reported failure"
	}
	c.logger.Warn("Provider rejected request", zap.String("endpoint", endpoint), zap.String("error", message))
	return errors.Wrap(utils.ErrProviderUnavailable, message)
}

func (c *providerClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) (err error) {
	ctx, span := tracer.Start(ctx, "provider "+path)
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method), attribute.String("provider.endpoint", path))

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		c.metrics.ProviderCall(ctx, path, outcome, time.Since(start).Seconds())
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, encErr := json.Marshal(body)
		if encErr != nil {
			outcome = "encode_error"
			return fmt.Errorf("encode %s request: %w", path, encErr)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		outcome = "request_error"
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		c.logger.Error("Provider call failed", zap.String("endpoint", path), zap.Error(err))
		return errors.Wrap(utils.ErrProviderUnavailable, err.Error())
	}
	defer res.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		outcome = "status_" + strconv.Itoa(res.StatusCode)
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		c.logger.Error("Provider returned error status",
			zap.String("endpoint", path),
			zap.Int("status", res.StatusCode),
			zap.ByteString("body", snippet))
		return errors.Wrapf(utils.ErrProviderUnavailable, "provider returned status %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return errors.Wrapf(utils.ErrMalformedProviderResponse, "decode %s response: %v", path, err)
	}
	return nil
}

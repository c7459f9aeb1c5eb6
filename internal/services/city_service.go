package services

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tourplanner/internal/models/db_models"
	"tourplanner/internal/models/response_models"
	"tourplanner/internal/repositories"
	"tourplanner/pkg/utils"
)

type CityMatch string

const (
	CityMatchExact CityMatch = "exact"
	CityMatchName  CityMatch = "name"
	CityMatchASCII CityMatch = "ascii"
	CityMatchRaw   CityMatch = "raw"
)

type CityResolution struct {
	CityID string    `json:"cityId"`
	Name   string    `json:"name"`
	Match  CityMatch `json:"match"`
}

type CityServiceInterface interface {
	// Resolve never fails on an unknown city: the raw name comes back as the id.
	Resolve(ctx context.Context, name string) (CityResolution, error)
	List(ctx context.Context, limit int) ([]response_models.CityResponse, error)
	Sync(ctx context.Context, limit int) (int, error)
}

type CityService struct {
	cityRepo repositories.CityRepository
	provider ProviderClient
	cache    *cache.Cache
	logger   *zap.Logger
}

func NewCityService(cityRepo repositories.CityRepository, provider ProviderClient, ttl time.Duration, logger *zap.Logger) CityServiceInterface {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CityService{
		cityRepo: cityRepo,
		provider: provider,
		cache:    cache.New(ttl, 2*ttl),
		logger:   logger.Named("city"),
	}
}

func (s *CityService) Resolve(ctx context.Context, name string) (CityResolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return CityResolution{}, utils.ErrInvalidInput
	}
	key := strings.ToLower(name)
	if v, ok := s.cache.Get(key); ok {
		return v.(CityResolution), nil
	}

	lookups := []struct {
		match CityMatch
		find  func(context.Context, string) (*db_models.City, error)
		arg   string
	}{
		{CityMatchExact, s.cityRepo.FindExact, name},
		{CityMatchName, s.cityRepo.FindByNameLike, name},
		{CityMatchASCII, s.cityRepo.FindByASCIILike, FoldASCII(name)},
	}

	for _, l := range lookups {
		city, err := l.find(ctx, l.arg)
		if err != nil {
			s.logger.Error("City lookup failed", zap.String("city", name), zap.String("match", string(l.match)), zap.Error(err))
			return CityResolution{}, utils.ErrDatabaseError
		}
		if city != nil {
			res := CityResolution{CityID: city.ProviderID(), Name: city.Name, Match: l.match}
			s.cache.SetDefault(key, res)
			return res, nil
		}
	}

	s.logger.Warn("City not found, using raw name as identifier", zap.String("city", name))
	res := CityResolution{CityID: name, Name: name, Match: CityMatchRaw}
	s.cache.SetDefault(key, res)
	return res, nil
}

func (s *CityService) List(ctx context.Context, limit int) ([]response_models.CityResponse, error) {
	if limit <= 0 || limit > 500 {
		return nil, utils.ErrInvalidInput
	}

	cities, err := s.provider.Cities(ctx, limit)
	if err != nil {
		s.logger.Warn("Provider cities unavailable, serving stored cities", zap.Error(err))
		stored, dbErr := s.cityRepo.List(ctx, 1, limit)
		if dbErr != nil {
			return nil, utils.ErrDatabaseError
		}
		if len(stored) == 0 {
			return nil, err
		}
		out := make([]response_models.CityResponse, 0, len(stored))
		for _, c := range stored {
			out = append(out, response_models.CityResponse{
				ID:        c.ProviderID(),
				Name:      c.Name,
				NameASCII: c.NameASCII,
				Country:   c.Country,
			})
		}
		return out, nil
	}

	out := make([]response_models.CityResponse, 0, len(cities))
	for _, c := range cities {
		out = append(out, response_models.CityResponse{
			ID:        c.ID.String(),
			Name:      c.City,
			NameASCII: c.CityASCII,
			Country:   c.Country,
		})
	}
	return out, nil
}

// Sync copies the provider's city list into the database so resolution works offline.
func (s *CityService) Sync(ctx context.Context, limit int) (int, error) {
	cities, err := s.provider.Cities(ctx, limit)
	if err != nil {
		return 0, err
	}

	rows := make([]db_models.City, 0, len(cities))
	for _, c := range cities {
		if c.ID == "" || c.City == "" {
			continue
		}
		ascii := c.CityASCII
		if ascii == "" {
			ascii = FoldASCII(c.City)
		}
		rows = append(rows, db_models.City{
			ExternalID: c.ID.String(),
			Name:       c.City,
			NameASCII:  ascii,
			Country:    c.Country,
		})
	}

	if err := s.cityRepo.UpsertMany(ctx, rows); err != nil {
		s.logger.Error("City sync failed", zap.Error(err))
		return 0, utils.ErrDatabaseError
	}
	s.cache.Flush()
	return len(rows), nil
}

var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII strips diacritics: "Đà Nẵng" becomes "Da Nang".
func FoldASCII(s string) string {
	s = strings.NewReplacer("Đ", "D", "đ", "d").Replace(s)
	out, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return out
}

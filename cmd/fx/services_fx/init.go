package services_fx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
	"tourplanner/internal/repositories"
	"tourplanner/internal/services"
	mem "tourplanner/pkg/memcache"
)

var Module = fx.Provide(
	provideProviderClient,
	provideCityService,
	provideCatalogService,
	provideRecommendationService,
	provideScheduleService,
	services.NewTripService,
	services.NewPreferenceService,
	services.NewFlightService,
	services.NewTourService,
	services.NewHealthService,
)

func provideProviderClient(cfg config.Config, logger *zap.Logger, metrics *infra.AppMetrics) services.ProviderClient {
	return services.NewProviderClient(cfg.Provider, logger, metrics)
}

func provideCityService(
	cfg config.Config,
	cityRepo repositories.CityRepository,
	provider services.ProviderClient,
	logger *zap.Logger,
) services.CityServiceInterface {
	return services.NewCityService(cityRepo, provider, cfg.Catalog.CityCacheTTL, logger)
}

func provideCatalogService(
	cfg config.Config,
	provider services.ProviderClient,
	cities services.CityServiceInterface,
	userPrefs repositories.UserPreferenceRepository,
	logger *zap.Logger,
) services.PlaceCatalogInterface {
	return services.NewPlaceCatalogService(provider, cities, userPrefs, cfg.Catalog.CacheTTL, logger)
}

func provideRecommendationService(cfg config.Config, provider services.ProviderClient, logger *zap.Logger) services.RecommendationServiceInterface {
	return services.NewRecommendationService(provider, cfg.Provider.BudgetFloor, logger)
}

func provideScheduleService(
	cfg config.Config,
	repo repositories.TripStateRepository,
	recommender services.RecommendationServiceInterface,
	leases mem.LeaseStore,
	archive repositories.ProviderArchive,
	metrics *infra.AppMetrics,
	logger *zap.Logger,
) services.ScheduleServiceInterface {
	return services.NewScheduleService(services.ScheduleServiceParams{
		Repo:        repo,
		Recommender: recommender,
		Leases:      leases,
		// A lease outlives the slowest provider call it guards.
		LeaseTTL: cfg.Provider.Timeout + time.Minute,
		Archive:  archive,
		Prices:   cfg.Fallback,
		Metrics:  metrics,
		Logger:   logger,
	})
}

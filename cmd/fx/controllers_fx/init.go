package controllers_fx

import (
	"go.uber.org/fx"

	"tourplanner/internal/api"
	"tourplanner/internal/api/controllers"
	"tourplanner/internal/config"
	"tourplanner/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(controllers.NewTripController),
	fx.Provide(controllers.NewPreferenceController),
	fx.Provide(controllers.NewScheduleController),
	fx.Provide(controllers.NewFlightController),
	fx.Provide(controllers.NewCityController),
	fx.Provide(controllers.NewTourController),
	fx.Provide(controllers.NewHealthController),
	fx.Provide(provideTokenManager),
	fx.Provide(api.NewRouter))

func provideTokenManager(cfg config.Config) *utils.TokenManager {
	return utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
}

package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tourplanner/cmd/fx/config_fx"
	"tourplanner/cmd/fx/controllers_fx"
	"tourplanner/cmd/fx/db_fx"
	"tourplanner/cmd/fx/memcache_fx"
	"tourplanner/cmd/fx/messaging_fx"
	"tourplanner/cmd/fx/services_fx"
	"tourplanner/cmd/fx/telemetry_fx"
	"tourplanner/internal/config"
)

func main() {
	app := fx.New(
		config_fx.Module,
		telemetry_fx.Module,
		db_fx.Module,
		memcache_fx.Module,
		messaging_fx.Module,
		services_fx.Module,
		controllers_fx.Module,

		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

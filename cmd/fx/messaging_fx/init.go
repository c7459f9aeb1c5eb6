package messaging_fx

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"

	"tourplanner/internal/config"
	"tourplanner/internal/infra"
	"tourplanner/internal/repositories"
)

var Module = fx.Provide(provideMongo, provideArchive, providePublisher)

func provideMongo(lc fx.Lifecycle, cfg config.Config) (*mongo.Client, error) {
	client, err := infra.NewMongoClient(context.Background(), cfg)
	if err != nil || client == nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
	return client, nil
}

func provideArchive(cfg config.Config, client *mongo.Client) repositories.ProviderArchive {
	return repositories.NewProviderArchive(client, cfg.Mongo.Database, cfg.Mongo.Collection)
}

func providePublisher(lc fx.Lifecycle, cfg config.Config) infra.EventPublisher {
	publisher := infra.NewEventPublisher(cfg)
	lc.Append(fx.StopHook(publisher.Close))
	return publisher
}

package server

import (
	"context"
	"fmt"
	"net"

	"video-fetcher/domain/repository"
	"video-fetcher/infrastructure/cache"
	youtubeclient "video-fetcher/infrastructure/clients/youtube"
	"video-fetcher/infrastructure/configuration"
	"video-fetcher/infrastructure/logger"
	"video-fetcher/infrastructure/persistence"
	"video-fetcher/infrastructure/pubsub"
	"video-fetcher/infrastructure/realtime"
	"video-fetcher/infrastructure/servicebus"
	"video-fetcher/usecase"
)

// App holds the process-scoped components built from configuration
type App struct {
	Videos      repository.IVideo
	ResultCache repository.IResultCache
	Fetcher     usecase.IFetcherUsecase
	VideoUC     usecase.IVideoUsecase
	Hub         *realtime.Hub

	closers []func(context.Context) error
}

// Close releases connections in reverse order of creation
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while closing resource")
		}
	}
}

// Bootstrap connects the record store and builds every component. Only a store
// connection failure is fatal; optional backends fall back with a warning.
func Bootstrap(ctx context.Context, cfg configuration.Config) (*App, error) {
	app := &App{}

	videos, err := app.openStore(ctx, cfg.Database)
	if err != nil {
		app.Close(context.Background())
		return nil, err
	}
	app.Videos = videos
	app.ResultCache = app.openCache(ctx, cfg)
	app.Hub = realtime.NewIngestHub()

	notifiers := []repository.IIngestNotifier{app.Hub}
	notifiers = append(notifiers, app.openNotifiers(ctx, cfg)...)

	yt, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKeys:        cfg.YouTube.APIKeys,
		Endpoint:       cfg.YouTube.Endpoint,
		RequestTimeout: cfg.YouTube.RequestTimeout(),
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("YouTube API keys not configured - ingestion disabled")
	} else {
		app.Fetcher = usecase.NewFetcherUsecase(yt, videos, app.ResultCache, usecase.FetcherConfig{
			SearchQuery:        cfg.YouTube.SearchQuery,
			MaxResults:         int64(cfg.YouTube.MaxResults),
			Interval:           cfg.YouTube.FetchInterval(),
			InvalidateOnIngest: cfg.Cache.InvalidateOnIngest,
		}, notifiers...)
	}

	analytics := usecase.NewVideoAnalytics(
		cfg.Analytics.StopWords,
		cfg.Analytics.TrendingLimit,
		cfg.Analytics.TopChannelsLimit,
		cfg.Analytics.TrendDays,
	)
	app.VideoUC = usecase.NewVideoUsecase(videos, app.ResultCache, analytics, usecase.VideoUsecaseConfig{
		SearchQuery:    cfg.YouTube.SearchQuery,
		ListTTL:        cfg.Cache.ListTTL(),
		SearchTTL:      cfg.Cache.SearchTTL(),
		StatsTTL:       cfg.Cache.StatsTTL(),
		StatsBatchSize: int64(cfg.Analytics.BatchSize),
	})
	return app, nil
}

func (a *App) openStore(ctx context.Context, db configuration.Database) (repository.IVideo, error) {
	switch db.Vendor {
	case "memory":
		logger.GetLogger().Warn("Using in-memory video store; records are lost on restart")
		return persistence.NewVideoMemoryRepository(), nil
	case "postgres":
		psqlDb, err := persistence.NewPostgreSQLDB(db.Psql)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to postgres: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return psqlDb.Close() })
		if err := persistence.EnsureVideoSchema(ctx, psqlDb); err != nil {
			return nil, err
		}
		logger.GetLogger().Info("PostgreSQL connected successfully")
		return persistence.NewVideoPostgresRepository(psqlDb), nil
	default:
		client, err := persistence.NewMongoDb(ctx, db.Mongo)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to mongo: %w", err)
		}
		a.closers = append(a.closers, client.Disconnect)
		mongoDb := client.Database(db.Mongo.Name)
		if err := persistence.EnsureVideoIndexes(ctx, mongoDb); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed ensuring video indexes")
		}
		logger.GetLogger().Info("MongoDB connected successfully")
		return persistence.NewVideoMongoRepository(mongoDb), nil
	}
}

func (a *App) openCache(ctx context.Context, cfg configuration.Config) repository.IResultCache {
	if cfg.Cache.Backend == "redis" {
		addr := net.JoinHostPort(cfg.RedisClient.Host, cfg.RedisClient.Port)
		redisClient, err := cache.NewCache(ctx, addr, cfg.RedisClient.Username, cfg.RedisClient.Password)
		if err == nil {
			a.closers = append(a.closers, func(context.Context) error { return redisClient.Close() })
			logger.GetLogger().WithField("addr", addr).Info("Redis result cache initialized")
			return cache.NewRedisResultCache(redisClient, cfg.RedisClient.KeyPrefix, cfg.Cache.DefaultTTL())
		}
		logger.GetLogger().WithField("error", err).Warn("Redis not available - using in-memory result cache")
	}
	return cache.NewResultCache(cfg.Cache.DefaultTTL(), cfg.Cache.CheckPeriod())
}

func (a *App) openNotifiers(ctx context.Context, cfg configuration.Config) []repository.IIngestNotifier {
	var out []repository.IIngestNotifier
	if cfg.Pubsub.ProjectID != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PubSub not available - ingest events will not be published")
		} else {
			a.closers = append(a.closers, func(context.Context) error { return client.Close() })
			out = append(out, pubsub.NewIngestPublisher(client, cfg.Pubsub.Topic))
		}
	}
	if cfg.ServiceBus.Namespace != "" {
		client, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - ingest events will not be sent")
		} else {
			a.closers = append(a.closers, client.Close)
			out = append(out, servicebus.NewIngestSender(client, cfg.ServiceBus.Queue))
		}
	}
	return out
}

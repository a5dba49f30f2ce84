package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"citizens-connect/internal/channel"
	"citizens-connect/internal/config"
	"citizens-connect/internal/handler"
	"citizens-connect/internal/models"
	"citizens-connect/internal/repository"
	"citizens-connect/internal/services"
	"citizens-connect/internal/source"
	"citizens-connect/internal/utils"
	"citizens-connect/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		bootLog := logger.New("")
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Env)

	// 1. Base context and shutdown manager
	ctx, shutdownManager := utils.NewShutdownManager(context.Background(), log)
	shutdownManager.StartListening()

	// 2. Redis: cache storage and realtime transport
	rdb, err := utils.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	shutdownManager.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	// 3. Persisted online issue cache
	var cacheRepo repository.IssueCacheRepository
	switch cfg.Cache.Backend {
	case config.CacheBackendMongo:
		mongoClient, err := utils.NewMongoClient(ctx, cfg.Mongo.URI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		shutdownManager.Register("mongo", func(ctx context.Context) error {
			return mongoClient.Disconnect(ctx)
		})
		cacheRepo = repository.NewMongoIssueCache(mongoClient.Database(cfg.Mongo.Database))
	default:
		cacheRepo = repository.NewRedisIssueCache(rdb, cfg.Redis.KeyPrefix, log)
	}

	// 4. External issue feeds
	feeds := []source.Feed{source.NewGovernmentFeed(), source.NewSocialFeed()}
	if cfg.NewsAPI.Key != "" {
		feeds = append(feeds, source.NewNewsAPIFeed(source.NewsAPIConfig{
			URL:     cfg.NewsAPI.URL,
			Key:     cfg.NewsAPI.Key,
			Query:   cfg.NewsAPI.Query,
			Timeout: cfg.NewsAPI.Timeout,
		}))
	} else {
		log.Warn().Msg("NEWS_API_KEY not set, news feed disabled")
	}
	aggregator := source.NewAggregator(feeds, cfg.Cache.OnlineLimit, log)

	// 5. Sessions
	sessions := services.NewSessionManager(ctx, redisChannelFactory(rdb, cfg.Redis, log), aggregator, cacheRepo, services.SessionManagerConfig{
		FreshnessWindow: cfg.Cache.FreshnessWindow,
		RefreshInterval: cfg.Cache.CheckInterval,
		IdleTTL:         cfg.Sessions.IdleTTL,
		SweepInterval:   cfg.Sessions.SweepInterval,
	}, log)
	sessions.StartJanitor(ctx)
	shutdownManager.Register("sessions", sessions.CloseAll)

	// 6. Router
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Len()})
	})

	var verifier utils.TokenVerifier = utils.NewRemoteVerifier(cfg.Auth.ServiceURL)
	if cfg.Auth.JWTSecret != "" {
		verifier = utils.NewJWTVerifier(cfg.Auth.JWTSecret)
	}
	api := router.Group("/api")
	api.Use(utils.AuthMiddleware(verifier))
	handler.RegisterRoutes(api, sessions, log)

	// 7. Server
	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("citizens connect sync service running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			shutdownManager.Shutdown()
		}
	}()

	shutdownManager.Register("http", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	shutdownManager.Wait()
}

// redisChannelFactory subscribes each session to its realtime channels. A failed first subscribe
// yields an offline channel that comes online once go-redis manages to resubscribe.
func redisChannelFactory(rdb *redis.Client, cfg config.RedisConfig, log zerolog.Logger) services.ChannelFactory {
	chCfg := channel.RedisConfig{
		ServerChannel:     cfg.ServerChannel,
		BroadcastChannel:  cfg.BroadcastChannel,
		UserChannelPrefix: cfg.UserChannelPrefix,
	}
	return func(ctx context.Context, identity models.Identity) (channel.Channel, error) {
		ch := channel.NewRedisChannel(rdb, chCfg, identity.UserID, log)
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := ch.Connect(connectCtx); err != nil {
			log.Warn().Err(err).Str("user_id", identity.UserID).Msg("realtime subscribe failed, session starts offline and keeps retrying")
		}
		return ch, nil
	}
}

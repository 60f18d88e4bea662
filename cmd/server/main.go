package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/yourorg/kap-news/internal/assets"
	"github.com/yourorg/kap-news/internal/client"
	"github.com/yourorg/kap-news/internal/config"
	"github.com/yourorg/kap-news/internal/events"
	"github.com/yourorg/kap-news/internal/handler"
	"github.com/yourorg/kap-news/internal/middleware"
	"github.com/yourorg/kap-news/internal/proxy"
	"github.com/yourorg/kap-news/internal/repository"
	"github.com/yourorg/kap-news/internal/scheduler"
	"github.com/yourorg/kap-news/internal/service"
	"github.com/yourorg/kap-news/internal/storage"
	"github.com/yourorg/kap-news/internal/stream"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err), zap.String("timezone", cfg.Server.Timezone))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoClient, err := repository.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	// Create repositories
	newsRepo := repository.NewNewsRepository(db.Collection(cfg.Mongo.NewsCollection), cfg.Mongo.QueryTimeout, logger)
	priceRepo := repository.NewPriceRepository(db.Collection(cfg.Mongo.PricesCollection), cfg.Mongo.QueryTimeout, logger)
	indexRepo := repository.NewPriceRepository(db.Collection(cfg.Mongo.IndicesCollection), cfg.Mongo.QueryTimeout, logger)
	tickerRepo := repository.NewTickerRepository(db.Collection(cfg.Mongo.TickersCollection), cfg.Mongo.QueryTimeout, logger)

	// Asset storage and index
	assetStorage, err := storage.NewStorage(&cfg.Assets)
	if err != nil {
		logger.Fatal("Failed to create asset storage", zap.Error(err))
	}
	assetStore := assets.NewStore(assets.NewBuilder(assetStorage, cfg.Assets, cfg.Categories, logger), logger)
	if _, err := assetStore.Reindex(ctx); err != nil {
		// Serve default banners until the next scheduled rebuild
		logger.Error("Initial asset index build failed", zap.Error(err))
	}
	imageResolver := assets.NewImageResolver(assetStore, cfg.Assets, cfg.Categories)

	// Create services
	newsService := service.NewNewsService(newsRepo, imageResolver, cfg.Pagination, location, logger)
	priceService := service.NewPriceService(priceRepo, indexRepo, logger)
	chartService := service.NewChartService(client.NewMidasClient(cfg.Midas, logger), location, logger)
	companyService := service.NewCompanyService(tickerRepo, assetStore, assetStorage, cfg.Assets.FinancialsDir, logger)
	sitemapService := service.NewSitemapService(newsRepo, priceRepo, cfg.Sitemap, logger)
	authService := service.NewAuthService(cfg.Admin, logger)

	processManager, err := proxy.NewServiceProxy(cfg.ProcessManager.URL, cfg.ProcessManager.Timeout, logger)
	if err != nil {
		logger.Fatal("Failed to create process manager proxy", zap.Error(err))
	}

	publisher := events.NewPublisher(cfg.Kafka.BrokerList(), cfg.Kafka.ClientID, cfg.Kafka.Topics["adminevents"], logger)
	defer publisher.Close()

	// Background jobs
	jobs := scheduler.NewScheduler(ctx, assetStore, logger)
	if err := jobs.Register(cfg.Scheduler.AssetReindex); err != nil {
		logger.Fatal("Failed to register scheduled jobs", zap.Error(err))
	}
	jobs.Start()
	defer jobs.Stop()

	hub := stream.NewHub(priceRepo, cfg.Stream.Interval, logger)
	go hub.Run(ctx)

	// Optional response cache
	opts := handler.RouterOptions{Auth: authService}
	opts.RateLimit.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
	opts.RateLimit.Burst = cfg.RateLimit.Burst

	redisClient := setupRedis(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
		opts.Cache = middleware.RedisCache(redisClient, middleware.CacheConfig{
			Enabled:         true,
			DefaultDuration: cfg.Redis.TTL,
			PrefixKey:       cfg.Redis.Prefix,
		}, logger)
	}

	router := handler.SetupRouter(handler.Handlers{
		News:    handler.NewNewsHandler(newsService, logger),
		Price:   handler.NewPriceHandler(priceService, logger),
		Chart:   handler.NewChartHandler(chartService, logger),
		Company: handler.NewCompanyHandler(companyService, logger),
		Sitemap: handler.NewSitemapHandler(sitemapService, logger),
		Admin:   handler.NewAdminHandler(authService, processManager, assetStore, publisher, logger),
		Stream:  handler.NewStreamHandler(hub),
	}, opts, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting KAP news API",
			zap.String("port", cfg.Server.Port),
			zap.String("assets", assetStorage.Kind()),
			zap.Bool("cache", redisClient != nil))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

// setupRedis connects the response cache, nil when disabled or unreachable
func setupRedis(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if !cfg.Enabled() {
		logger.Info("Redis cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Error("Failed to connect to Redis, continuing without cache", zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return client
}

func createLogger(level, format string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}


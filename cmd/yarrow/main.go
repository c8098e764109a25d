package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/Ramsey-B/yarrow/config"
	"github.com/Ramsey-B/yarrow/internal/repositories/mergedlead"
	"github.com/Ramsey-B/yarrow/internal/repositories/rawlead"
	"github.com/Ramsey-B/yarrow/pkg/database"
	"github.com/Ramsey-B/yarrow/pkg/graph"
	"github.com/Ramsey-B/yarrow/pkg/kafka"
	"github.com/Ramsey-B/yarrow/pkg/matching"
	"github.com/Ramsey-B/yarrow/pkg/merging"
	"github.com/Ramsey-B/yarrow/pkg/middleware"
	"github.com/Ramsey-B/yarrow/pkg/pipeline"
	"github.com/Ramsey-B/yarrow/pkg/processor"
	"github.com/Ramsey-B/yarrow/pkg/redis"
	batchroutes "github.com/Ramsey-B/yarrow/pkg/routes/batch"
	healthroutes "github.com/Ramsey-B/yarrow/pkg/routes/health"
	ingestroutes "github.com/Ramsey-B/yarrow/pkg/routes/ingest"
	leadroutes "github.com/Ramsey-B/yarrow/pkg/routes/lead"
	rubricroutes "github.com/Ramsey-B/yarrow/pkg/routes/rubric"
	"github.com/Ramsey-B/yarrow/pkg/scoring"
	"github.com/Ramsey-B/yarrow/pkg/startup"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (ectologger.Logger, error) {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

func run(cfg config.Config, log ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.AppName, cfg.TracingEndpoint, cfg.TracingEnabled)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shut down tracing")
		}
	}()

	// Database
	db, err := database.Connect(database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		Username:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, log)
	if err != nil {
		return err
	}
	defer db.Close()

	instance, ok := db.(*database.DatabaseInstance)
	if !ok {
		return fmt.Errorf("unexpected database instance type %T", db)
	}
	driver, err := migratepg.WithInstance(instance.DB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	migrations := database.NewMigrationService(log, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	rawLeadRepo := rawlead.NewRepository(db, log)
	mergedLeadRepo := mergedlead.NewRepository(db, log)

	// Pipeline engines
	matchCfg := matching.DefaultConfig()
	matchCfg.NameWeight = cfg.NameWeight
	matchCfg.InstitutionWeight = cfg.InstitutionWeight
	matchCfg.EmailWeight = cfg.EmailWeight
	matchCfg.KeywordWeight = cfg.KeywordWeight
	matchCfg.Workers = cfg.MatchWorkerCount
	matchEngine, err := matching.NewEngine(matchCfg, log)
	if err != nil {
		return err
	}

	resolver, err := merging.NewResolver(merging.Config{MergeThreshold: cfg.MergeThreshold}, log)
	if err != nil {
		return err
	}

	rubric := scoring.DefaultRubric()
	if cfg.RubricConfigPath != "" {
		data, err := os.ReadFile(cfg.RubricConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read rubric config: %w", err)
		}
		if err := json.Unmarshal(data, &rubric); err != nil {
			return fmt.Errorf("failed to parse rubric config: %w", err)
		}
	}
	if len(cfg.TargetKeywords) > 0 {
		rubric.TargetKeywords = cfg.TargetKeywords
	}
	scoreEngine, err := scoring.NewEngine(rubric, log)
	if err != nil {
		return err
	}

	coordinator, err := pipeline.NewCoordinator(pipeline.Config{MaxBatchSize: cfg.MaxBatchSize}, matchEngine, resolver, scoreEngine, log)
	if err != nil {
		return err
	}

	// Optional infrastructure
	var redisClient *redis.Client
	var summaryCache *redis.SummaryCache
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		summaryCache = redis.NewSummaryCache(redisClient, cfg.RedisSummaryTTL)
	}

	var graphClient *graph.Client
	var graphSyncer *graph.Syncer
	if cfg.GraphDBEnabled {
		graphClient, err = graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, log)
		if err != nil {
			return err
		}
		defer graphClient.Close(context.Background())
		graphSyncer = graph.NewSyncer(graphClient, log)
	}

	var producer *kafka.Producer
	if cfg.KafkaProducerEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, log)
		defer producer.Close()
	}

	// The interface-typed fan-out targets must stay nil unless configured
	var publisher pipeline.EventPublisher
	if producer != nil {
		publisher = producer
	}
	var syncTarget pipeline.GraphSyncer
	if graphSyncer != nil {
		syncTarget = graphSyncer
	}
	var summaryStore pipeline.SummaryStore
	if summaryCache != nil {
		summaryStore = summaryCache
	}

	batchService := pipeline.NewBatchService(coordinator, rawLeadRepo, mergedLeadRepo, publisher, syncTarget, summaryStore, log)
	leadProcessor := processor.NewLeadProcessor(log, rawLeadRepo)

	// Dependency injection container for route handlers
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}
	if err := registerDependencies(container, log, rawLeadRepo, mergedLeadRepo, batchService, scoreEngine, summaryCache, graphSyncer); err != nil {
		return err
	}

	// Startup orchestration: connectivity checks and the ingest consumer
	boot := startup.New(log, cfg.StartupMaxAttempts)
	if graphClient != nil {
		boot.AddDependency(&startup.Func{
			Name:      "graph",
			StartFunc: graphClient.VerifyConnectivity,
			StopFunc:  func(ctx context.Context) error { return nil },
		})
	}
	if cfg.KafkaConsumerEnabled {
		consumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaInputTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
		}, log, leadProcessor.ProcessMessage)
		boot.AddDependency(&startup.Func{
			Name:      "kafka-consumer",
			Deps:      []string{},
			StartFunc: consumer.Start,
			StopFunc:  func(ctx context.Context) error { return consumer.Stop() },
		})
	}
	if err := boot.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := boot.Stop(stopCtx); err != nil {
			log.WithError(err).Error("Failed to stop dependencies")
		}
	}()

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(log)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Logger(log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(containerMiddleware(container))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var redisCheck healthroutes.ContextPinger
	if redisClient != nil {
		redisCheck = redisClient
	}
	var graphCheck healthroutes.ConnectivityVerifier
	if graphClient != nil {
		graphCheck = graphClient
	}
	checker := healthroutes.NewChecker(db, redisCheck, graphCheck, cfg.Version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	ingestroutes.Register(api.Group("/ingest"))
	leadroutes.Register(api.Group("/leads"))
	batchroutes.Register(api.Group("/batches"))
	rubricroutes.Register(api.Group("/rubric"))

	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(fmt.Sprintf(":%d", cfg.Port))
	}()
	checker.SetReady(true)
	log.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	checker.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}

func registerDependencies(
	container ectocontainer.DIContainer,
	log ectologger.Logger,
	rawLeadRepo *rawlead.Repository,
	mergedLeadRepo *mergedlead.Repository,
	batchService *pipeline.BatchService,
	scoreEngine *scoring.Engine,
	summaryCache *redis.SummaryCache,
	graphSyncer *graph.Syncer,
) error {
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, log); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*rawlead.Repository](container, rawLeadRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*mergedlead.Repository](container, mergedLeadRepo); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*pipeline.BatchService](container, batchService); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*scoring.Engine](container, scoreEngine); err != nil {
		return err
	}
	if summaryCache != nil {
		if err := ectoinject.RegisterInstance[*redis.SummaryCache](container, summaryCache); err != nil {
			return err
		}
	}
	if graphSyncer != nil {
		if err := ectoinject.RegisterInstance[*graph.Syncer](container, graphSyncer); err != nil {
			return err
		}
	}
	return nil
}

// containerMiddleware scopes request contexts to the DI container so handlers
// can resolve dependencies with ectoinject.GetContext.
func containerMiddleware(container ectocontainer.DIContainer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, err := ectoinject.SetActiveContainer(c.Request().Context(), container.GetContainerID())
			if err != nil {
				return err
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

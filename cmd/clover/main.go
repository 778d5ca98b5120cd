// Clover watches Debezium CDC streams for the friend_requests and contacts
// tables, classifies each mutation into a friendship lifecycle transition,
// and delivers push notifications for the fresh ones.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/go-playground/validator/v10"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	contactrepo "github.com/Ramsey-B/clover/internal/repositories/contact"
	friendrequestrepo "github.com/Ramsey-B/clover/internal/repositories/friendrequest"
	userrepo "github.com/Ramsey-B/clover/internal/repositories/user"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/lifecycle"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/notify"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/push"
	"github.com/Ramsey-B/clover/pkg/redis"
	friendrequestroutes "github.com/Ramsey-B/clover/pkg/routes/friendrequest"
	"github.com/Ramsey-B/clover/pkg/routes/health"
	"github.com/Ramsey-B/clover/pkg/startup"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerShutdown, err := initTracing(ctx, &cfg)
	if err != nil {
		log.WithError(err).Error("Failed to initialize tracing")
		os.Exit(1)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)
	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	db := database.NewDatabaseInstance(sqlxDB, log)
	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	if cfg.DatabaseMigrationEnabled {
		if err := runMigrations(&cfg, sqlxDB, log); err != nil {
			log.WithError(err).Error("Failed to run migrations")
			os.Exit(1)
		}
	}

	var cache *redis.Client
	if cfg.RedisEnabled {
		cache, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
		if err != nil {
			log.WithError(err).Error("Failed to connect to Redis")
			os.Exit(1)
		}
	}

	contacts := contactrepo.NewRepository(db, log)
	requests := friendrequestrepo.NewRepository(db, log)

	baseUsers := userrepo.NewRepository(db, log)
	var users notify.UserGetter = baseUsers
	if cache != nil {
		users = userrepo.NewCachedRepository(baseUsers, cache, cfg.UserCacheTTL, log)
	}

	resolver := lifecycle.NewResolver(contacts, log)
	fcm := push.NewFCMClient(push.FCMConfig{
		Endpoint:  cfg.FCMEndpoint,
		ServerKey: cfg.FCMServerKey,
		Timeout:   cfg.FCMTimeout,
	}, log)
	dispatcher := notify.NewDispatcher(users, fcm, log)

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, log)
	emitter := events.NewEmitter(producer, log)

	requestProcessor := processor.NewRequestProcessor(log, resolver, dispatcher, emitter)
	contactProcessor := processor.NewContactProcessor(log, resolver, dispatcher, emitter)

	consumers := map[string]health.ConsumerHealth{}
	boot := startup.NewStartup(log, cfg.StartupMaxAttempts)

	if cfg.KafkaConsumerEnabled {
		requestConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaFriendRequestsTopic,
			ConsumerGroup: cfg.KafkaRequestConsumerGroup,
		}, log, requestProcessor.ProcessMessage)
		contactConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaContactsTopic,
			ConsumerGroup: cfg.KafkaContactConsumerGroup,
		}, log, contactProcessor.ProcessMessage)

		consumers["request-consumer"] = requestConsumer
		consumers["contact-consumer"] = contactConsumer

		boot.AddDependency(&dependency{
			name:  "request-consumer",
			start: requestConsumer.Start,
			stop:  func(context.Context) error { return requestConsumer.Stop() },
		})
		boot.AddDependency(&dependency{
			name:  "contact-consumer",
			start: contactConsumer.Start,
			stop:  func(context.Context) error { return contactConsumer.Stop() },
		})
	}

	checker := health.NewChecker(db, pinger(cache), consumers, version)

	e := newServer(&cfg, log)
	checker.RegisterRoutes(e)
	friendrequestroutes.NewHandler(requests, contacts).Register(e.Group("/api/v1"))

	boot.AddDependency(&dependency{
		name: "http-server",
		start: func(context.Context) error {
			go func() {
				addr := fmt.Sprintf(":%d", cfg.Port)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Error("HTTP server failed")
					os.Exit(1)
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error { return e.Shutdown(ctx) },
	})

	if err := boot.Start(ctx); err != nil {
		log.WithError(err).Error("Startup failed")
		os.Exit(1)
	}
	checker.SetReady(true)
	log.WithFields(map[string]any{"app": cfg.AppName, "port": cfg.Port}).Info("Clover started")

	<-ctx.Done()
	checker.SetReady(false)
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := boot.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	if err := producer.Close(); err != nil {
		log.WithError(err).Error("Failed to close producer")
	}
	if cache != nil {
		if err := cache.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis client")
		}
	}
	if err := sqlxDB.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to shut down tracer")
		}
	}
}

func newLogger(cfg *config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func newServer(cfg *config.Config, log ectologger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = cfg.MaxHeaderBytes

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(log))
	e.HTTPErrorHandler = middleware.Error(log)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

func initTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		return nil, nil
	}

	exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
		Endpoint: cfg.OTLPEndpoint,
		Protocol: cfg.OTLPProtocol,
		Insecure: cfg.OTLPInsecure,
		Timeout:  10 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.AppName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}

func runMigrations(cfg *config.Config, sqlxDB *sqlx.DB, log ectologger.Logger) error {
	driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return err
	}
	service := database.NewMigrationService(log, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	return service.Migrate(cfg.DatabaseName, driver)
}

// pinger avoids handing the health checker a non-nil interface wrapping a nil
// client when caching is disabled.
func pinger(cache *redis.Client) health.Pinger {
	if cache == nil {
		return nil
	}
	return cache
}

// dependency adapts plain start/stop funcs to the startup.Dependency interface
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

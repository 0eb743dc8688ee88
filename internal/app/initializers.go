package app

import (
	"context"
	"log"
	"strings"

	"photo-loader/internal/cache"
	"photo-loader/internal/config"
	"photo-loader/internal/events"
	"photo-loader/internal/metrics"
	"photo-loader/internal/networker"
	"photo-loader/internal/photos"
	"photo-loader/internal/remote"
	"photo-loader/internal/server"
	"photo-loader/internal/store"
	"photo-loader/internal/utils"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"
)

const serviceName = "photo-loader"

func InitApp() *LoaderApp {
	if err := config.LoadEnvFile(); err != nil {
		log.Fatalf("Error loading env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := initLogger(cfg)
	tp := initTracing(logger, cfg)

	nodeID, err := utils.GenerateID()
	if err != nil {
		logger.Fatal("Error generating node ID:", err)
	}

	storage := initCachedStorage(logger, cfg)
	fetcher := initNetworker(logger, cfg, storage)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	publisher := remote.NewSerialExecutor(logger, remote.DefaultExecutorBuffer)

	catalog := photos.NewCatalog(logger, fetcher, cfg.BaseURL, cfg.ThumbnailSize,
		remote.WithPublisher(publisher),
		remote.WithRecorder(metrics.New(registry)),
	)

	app := &LoaderApp{
		logger:    logger,
		nodeID:    nodeID,
		publisher: publisher,
		catalog:   catalog,
		server:    server.NewServer(logger, catalog, cfg.ListenAddr, registry),
		storage:   storage,
		tp:        tp,
	}

	if cfg.KafkaAddr != "" {
		app.kafkaSink = initKafkaSink(logger, cfg)
		app.sink = app.kafkaSink
	} else {
		app.sink = events.NewLogSink(logger)
	}

	if cfg.Neo4jURI != "" {
		app.photoRepo = store.NewNeo4jRepo(logger, initNeo4jDriver(logger, cfg), cfg.Neo4jDatabase)
	}

	return app
}

// initNetworker stacks robots.txt checks over the body cache over plain HTTP.
func initNetworker(logger *zap.SugaredLogger, cfg *config.Config, storage cache.CachedStorage) networker.Networker {
	var fetcher networker.Networker = networker.NewNetworker(logger, cfg.FetchTimeout)

	if cfg.CacheTTL > 0 {
		fetcher = networker.NewCachedNetworker(logger, fetcher, storage, cfg.CacheTTL)
	}

	if cfg.RespectRobots {
		fetcher = networker.NewRobotsNetworker(logger, fetcher, storage, cfg.UserAgent)
	}

	return fetcher
}

func initCachedStorage(logger *zap.SugaredLogger, cfg *config.Config) cache.CachedStorage {
	if cfg.RedisURI == "" {
		logger.Infow("No redis configured, using in-memory cache")
		return cache.NewMemoryCache()
	}

	return cache.NewRedisCache(initRedisClient(logger, cfg.RedisURI, cfg.RedisPassword, cfg.RedisDB), logger)
}

func initRedisClient(logger *zap.SugaredLogger, uri, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     uri,
		Password: password,
		DB:       db,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		logger.Fatalf("redisotel tracing err: %v", err)
	}

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		logger.Fatalf("redisotel metrics err: %v", err)
	}

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}

	logger.Infow("Connected to Redis for body cache", "addr", uri, "db", db)
	return rdb
}

func initKafkaSink(logger *zap.SugaredLogger, cfg *config.Config) *events.KafkaSink {
	sink, err := events.NewKafkaSink(logger, &events.KafkaConfig{
		Seeds:    strings.Split(cfg.KafkaAddr, ","),
		Topic:    cfg.KafkaEventsTopic,
		User:     cfg.KafkaUser,
		Password: cfg.KafkaPassword,
	})
	if err != nil {
		logger.Fatal("Error initializing kafka sink:", err)
	}

	return sink
}

func initNeo4jDriver(logger *zap.SugaredLogger, cfg *config.Config) neo4j.DriverWithContext {
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		logger.Fatal("Error initializing neo4j:", err)
	}

	return driver
}

// initTracing returns nil when no collector is configured; the global
// provider then stays a no-op.
func initTracing(logger *zap.SugaredLogger, cfg *config.Config) *trace.TracerProvider {
	if cfg.OTLPEndpoint == "" {
		return nil
	}

	exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	if err != nil {
		logger.Fatalf("Error initializing otlp exporter: %v", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		logger.Fatal("Error initializing otel resource:", err)
	}

	tracerProvider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)

	return tracerProvider
}

func initLogger(cfg *config.Config) *zap.SugaredLogger {
	newLogger := zap.NewProduction
	if cfg.IsDev() {
		newLogger = zap.NewDevelopment
	}

	zapLogger, err := newLogger()
	if err != nil {
		log.Fatalf("Error initializing zap logger: %v", err)
	}

	return zapLogger.Sugar()
}

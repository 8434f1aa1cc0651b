package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	// Instrumentation
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	// Interne
	"github.com/peter-abah/tweeter-api/config"
	"github.com/peter-abah/tweeter-api/internal/adapters/primary/events"
	"github.com/peter-abah/tweeter-api/internal/adapters/primary/rest"
	"github.com/peter-abah/tweeter-api/internal/adapters/secondary/metrics"
	"github.com/peter-abah/tweeter-api/internal/adapters/secondary/repository"
	"github.com/peter-abah/tweeter-api/internal/adapters/secondary/security"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
	"github.com/peter-abah/tweeter-api/internal/core/services"
)

type graphStore interface {
	ports.SocialGraphReader
	ports.RelationChecker
}

func main() {
	// 1. Config & Logger
	cfg := config.Load()
	initLogger(cfg)
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.Info("🚀 Starting Feed Service", "env", cfg.Env, "graph", cfg.GraphBackend, "content", cfg.ContentBackend, "events", cfg.EventsBackend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := initTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: Postgres (si un backend en a besoin)
	var dbPool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		dbConfig, err := pgxpool.ParseConfig(cfg.DBURL)
		if err != nil {
			slog.Error("Unable to parse DB config", "error", err)
			os.Exit(1)
		}
		dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

		dbPool, err = pgxpool.NewWithConfig(ctx, dbConfig)
		if err != nil {
			slog.Error("Unable to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		if err := dbPool.Ping(ctx); err != nil {
			slog.Error("Database ping failed", "error", err)
			os.Exit(1)
		}
		slog.Info("✅ Connected to PostgreSQL")
	}

	// 4. Graphe social
	var graph graphStore
	switch cfg.GraphBackend {
	case "neo4j":
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			slog.Error("Failed to create neo4j driver", "error", err)
			os.Exit(1)
		}
		defer driver.Close(context.Background())

		vctx, vcancel := context.WithTimeout(ctx, 5*time.Second)
		err = driver.VerifyConnectivity(vctx)
		vcancel()
		if err != nil {
			slog.Error("Failed to connect to Neo4j", "error", err)
			os.Exit(1)
		}
		slog.Info("✅ Connected to Neo4j")

		repo := repository.NewNeo4jGraphRepo(driver)
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Warn("Schema init failed (might be fine if already exists)", "error", err)
		}
		graph = repo
	case "postgres":
		graph = repository.NewPostgresGraphRepo(dbPool)
	}

	// 5. Contenu
	rnd := repository.NewRandomSource(cfg.RandomSeed)
	var (
		content ports.ContentRepository
		indexer ports.ContentIndexer
	)
	switch cfg.ContentBackend {
	case "postgres":
		content = repository.NewPostgresContentRepo(dbPool, rnd)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			panic(err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("Unable to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		slog.Info("✅ Connected to Redis")

		repo := repository.NewRedisContentRepo(rdb, rnd)
		content, indexer = repo, repo
	}

	// 6. Initialisation du Core
	feedMetrics := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	opts := []services.Option{
		services.WithConcurrency(cfg.FetchConcurrency),
		services.WithMetrics(feedMetrics),
	}
	feedService := services.NewFeedService(graph, content, opts...)
	recommendService := services.NewRecommendService(graph, opts...)
	relationService := services.NewRelationService(graph, graph)

	// 7. Consumers d'events (alimentent l'index Redis)
	if cfg.EventsBackend != "none" {
		if indexer == nil {
			slog.Warn("Events ignored: content backend is not indexable", "content", cfg.ContentBackend)
		} else {
			handler := events.NewEventHandler(services.NewIndexService(indexer))
			closeEvents, err := startEvents(ctx, cfg, handler)
			if err != nil {
				slog.Error("Failed to start event consumer", "error", err)
				os.Exit(1)
			}
			defer closeEvents()
		}
	}

	// 8. Serveur REST (Driving Adapter - Sync)
	var validator rest.TokenValidator
	if cfg.JWTPublicKeyPath != "" {
		pem, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			slog.Error("Unable to read JWT public key", "error", err)
			os.Exit(1)
		}
		jwtValidator, err := security.NewJWTValidator(pem, cfg.JWTIssuer)
		if err != nil {
			slog.Error("Invalid JWT public key", "error", err)
			os.Exit(1)
		}
		validator = jwtValidator
	} else {
		slog.Warn("JWT_PUBLIC_KEY_PATH not set: /api/v1/feed will reject every request")
	}

	mux := http.NewServeMux()
	rest.NewServer(feedService, recommendService, relationService, validator, cfg.FeedTarget).Register(mux)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("GET /metrics", promhttp.Handler())

	h := rest.WithRequestID(mux)
	h = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Authentication", "Content-Type"},
		AllowCredentials: true,
	}).Handler(h)
	h = otelhttp.NewHandler(h, "feed-http", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("📡 Feed Service HTTP listening", "port", cfg.HTTPPort)
		if err := srvHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// 9. gRPC: Health Check & Reflection
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		slog.Error("Failed to listen", "error", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	go func() {
		slog.Info("📡 Health gRPC listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	slog.Info("👋 Server exited")
}

// --- Helpers ---

func startEvents(ctx context.Context, cfg config.Config, handler *events.EventHandler) (func(), error) {
	switch cfg.EventsBackend {
	case "nats":
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			return nil, err
		}
		slog.Info("✅ Connected to NATS")

		if _, err := events.SubscribeNats(nc, handler); err != nil {
			nc.Close()
			return nil, err
		}
		slog.Info("👂 Listening for events (NATS)", "subjects", events.Subjects)
		return func() { _ = nc.Drain() }, nil
	case "kafka":
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := events.StartKafkaConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, handler); err != nil && ctx.Err() == nil {
				slog.Error("Kafka consumer stopped", "error", err)
			}
		}()
		return func() { <-done }, nil
	}
	return func() {}, nil
}

func initLogger(cfg config.Config) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Env == "local" {
		opts.Level = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Env == "local" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initTracer(ctx context.Context, cfg config.Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OtelEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, _ := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String("feed-service"),
			semconv.DeploymentEnvironmentKey.String(cfg.Env),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}

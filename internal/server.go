package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/mongoextract/internal/audit"
	"github.com/2beens/mongoextract/internal/auth"
	"github.com/2beens/mongoextract/internal/cache"
	"github.com/2beens/mongoextract/internal/config"
	"github.com/2beens/mongoextract/internal/db"
	"github.com/2beens/mongoextract/internal/explorer"
	"github.com/2beens/mongoextract/internal/middleware"
	"github.com/2beens/mongoextract/internal/mongodb"
	"github.com/2beens/mongoextract/internal/telemetry/metrics"
	"github.com/2beens/mongoextract/internal/telemetry/tracing"
	"github.com/2beens/mongoextract/internal/web"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	authService   *auth.Service
	connections   *mongodb.Connections
	mongoDialer   *mongodb.Dialer
	catalogCache  *cache.CatalogCache
	auditRecorder *audit.Recorder

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AdminIdentifier         string
	AdminPassword           string
	Connections             *mongodb.Connections
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	credentials := auth.NewCredentialStore(params.AdminIdentifier, params.AdminPassword)
	if _, _, err := credentials.Credentials(); err != nil {
		// logins answer 500 until both values are set
		log.Errorf("admin credentials: %s, set ADMIN_IDENTIFIER and ADMIN_PASSWORD", err)
	}
	codec, err := auth.NewCodec(cfg.SessionTokenFormat, credentials)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisHost != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		}
	} else {
		log.Warnln("redis not configured, login rate limiting disabled")
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "mongoextract-backend", rdb)
	if err != nil {
		return nil, err
	}

	var extraCollectors []prometheus.Collector
	var auditStore audit.Store
	var dbPool *pgxpool.Pool
	if cfg.PostgresHost != "" {
		dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		auditRepo := audit.NewRepo(dbPool)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("audit schema: %w", err)
		}
		auditStore = auditRepo
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	} else {
		log.Warnln("postgres not configured, audit events are kept in memory")
		auditStore = audit.NewMemoryRepo(audit.DefaultMemoryCapacity)
	}

	promRegistry := metrics.SetupPrometheus(extraCollectors...)
	metricsManager := metrics.NewManager("backend", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,

		authService: auth.NewService(credentials, codec, cfg.IsProduction()),
		connections: params.Connections,
		mongoDialer: mongodb.NewDialer(
			time.Duration(cfg.MongoConnectTimeoutSeconds)*time.Second,
			params.HoneycombTracingEnabled,
		),
		catalogCache: cache.NewCatalogCache(
			cfg.CatalogCacheSizeMB,
			time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second,
		),
		auditRecorder: audit.NewRecorder(auditStore),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var loginRateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		loginRateLimiter = redis_rate.NewLimiter(s.redisClient)
	}
	authHandler := auth.NewHandler(s.authService, s.auditRecorder, s.metricsManager)
	authHandler.SetupRoutes(r, middleware.RateLimit(
		loginRateLimiter,
		"login",
		s.config.LoginRateLimitAllowedPerMin,
		s.config.TrustProxyHeaders,
		s.metricsManager,
	))

	explorerHandler := explorer.NewHandler(
		s.connections,
		explorer.NewMongoDialer(s.mongoDialer),
		s.catalogCache,
		s.auditRecorder,
		s.metricsManager,
	)
	explorerHandler.SetupRoutes(r)

	audit.NewHandler(s.auditRecorder).SetupRoutes(r)
	web.NewHandler().SetupRoutes(r)

	// all the rest - unhandled paths, still routed through the middleware chain
	r.PathPrefix("/").HandlerFunc(web.NotFound).Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.NewSessionGate(s.authService).Check())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Minute, // large extractions stream for a while
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer timeoutCancel()

	var shutdownErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown http server: %w", err))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("shutdown metrics server: %w", err))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("close redis client: %w", err))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return shutdownErr
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

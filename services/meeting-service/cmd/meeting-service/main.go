package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/md-rashed-zaman/meetsync/libs/auth"
	"github.com/md-rashed-zaman/meetsync/libs/config"
	"github.com/md-rashed-zaman/meetsync/libs/db"
	"github.com/md-rashed-zaman/meetsync/libs/grpcx"
	"github.com/md-rashed-zaman/meetsync/libs/httpx"
	"github.com/md-rashed-zaman/meetsync/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetsync/libs/otel"
	"github.com/md-rashed-zaman/meetsync/libs/runtime"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/calendar"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/grpcserver"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/handlers"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/outbox"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/scheduling"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/sessions"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/internal/storage"
	"github.com/md-rashed-zaman/meetsync/services/meeting-service/migrations"
)

func main() {
	_ = config.LoadDotEnv()

	service := config.String("SERVICE_NAME", "meeting-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9090")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, db.PoolOptions{MaxConns: int32(config.Int("DB_MAX_CONNS", 10))})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("DB_AUTO_MIGRATE", true) {
		if err := migrations.Apply(ctx, pool); err != nil {
			logger.Error("migrations failed", "err", err)
			panic(err)
		}
	}

	users := storage.NewUserRepository(pool)
	meetingRepo := storage.NewMeetingRepository(pool)
	outboxRepo := outbox.NewRepository()
	refreshRepo := sessions.NewRefreshRepository(pool)

	brokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go outboxPublisher.Run(ctx)

	breakerCfg := calendar.DefaultBreakerConfig()
	breakerCfg.Timeout = config.Seconds("CALENDAR_BREAKER_TIMEOUT_SECONDS", breakerCfg.Timeout)
	store := calendar.NewBreakerStore(calendar.NewPostgresStore(users, meetingRepo), breakerCfg, logger)
	suggester := scheduling.NewService(store, logger)
	meetings := scheduling.NewMeetings(pool, meetingRepo, outboxRepo)

	var jwks *auth.JWKSClient
	if url := config.String("JWKS_URL", ""); url != "" {
		jwks = auth.NewJWKSClient(url, config.Seconds("JWKS_CACHE_SECONDS", 5*time.Minute))
	}
	verifier := auth.NewVerifier(jwtSecret, jwks)
	issuer := auth.NewIssuer(jwtSecret, config.Seconds("ACCESS_TOKEN_TTL_SECONDS", time.Hour))

	if config.Bool("GRPC_ENABLED", true) {
		grpcSrv := grpcx.NewServer(logger, grpc.ChainUnaryInterceptor(grpcx.UnaryServerAuthInterceptor(verifier)))
		grpcserver.Register(grpcSrv, suggester, logger)
		if err := runtime.RunListener(ctx, grpcSrv, ":"+grpcPort, "grpc", logger); err != nil {
			logger.Error("grpc listen failed", "err", err)
			panic(err)
		}
	} else {
		logger.Info("grpc disabled")
	}

	limiter, limiterCheck := newLimiter(logger)
	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	if limiterCheck != nil {
		checks = append(checks, *limiterCheck)
	}

	api := http.NewServeMux()
	handlers.Routes{
		Auth:     handlers.NewAuthHandler(users, refreshRepo, issuer, verifier, config.Seconds("REFRESH_TOKEN_TTL_SECONDS", 30*24*time.Hour), logger),
		Profile:  handlers.NewProfileHandler(users, logger),
		Meetings: handlers.NewMeetingHandler(meetings, config.String("ICS_DOMAIN", "meetsync.local"), logger),
		Suggest:  handlers.NewSuggestHandler(suggester, logger),
		Verifier: verifier,
	}.Register(api)

	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.Handle("/api/", httpx.Chain(api,
		httpx.RateLimit(limiter, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true)),
		httpx.WithBodyLimit(int64(config.Int("HTTP_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("HTTP_HANDLER_TIMEOUT_SECONDS", 15*time.Second)),
	))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
		httpx.WithCORS(httpx.DefaultCORSPolicy(config.List("CORS_ORIGINS", "http://localhost:3000"))),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "meeting")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	runtime.RunHTTP(ctx, srv, logger, 10*time.Second)
}

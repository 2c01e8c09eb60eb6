package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/config"
	dbpkg "github.com/conexaomental/clinica-api/internal/db"
	"github.com/conexaomental/clinica-api/internal/infra/payment"
	"github.com/conexaomental/clinica-api/internal/infra/redislock"
	infraRepo "github.com/conexaomental/clinica-api/internal/infra/repository"
	"github.com/conexaomental/clinica-api/internal/infra/storage"
	"github.com/conexaomental/clinica-api/internal/logger"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/outbox"
	"github.com/conexaomental/clinica-api/internal/realtime"
	"github.com/conexaomental/clinica-api/internal/reminder"
	"github.com/conexaomental/clinica-api/internal/routes"
	"github.com/conexaomental/clinica-api/internal/timezone"
	"github.com/conexaomental/clinica-api/internal/validators"
	"github.com/conexaomental/clinica-api/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timezone.SetClinic(cfg.Timezone)

	if err := validators.Register(); err != nil {
		return err
	}

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log)
	defer auditDispatcher.Close()

	hub := realtime.NewHub(log, m, originChecker(cfg.CORSAllowedOrigins))

	var (
		redisClient *redis.Client
		locker      redislock.Locker  = redislock.Noop{}
		publisher   outbox.Subscriber = realtime.NewLocalPublisher(hub)
		subscribers []outbox.Subscriber
	)

	if cfg.RedisEnabled() {
		redisClient, err = redislock.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		locker = redislock.NewRedisSlotLocker(redisClient, cfg.LockTTL, log, m)
		publisher = realtime.NewRedisPublisher(redisClient)
		go realtime.Subscribe(ctx, redisClient, hub, log)

		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			return err
		}
		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		inspector := asynq.NewInspector(redisOpt)
		defer inspector.Close()

		subscribers = append(subscribers, reminder.NewScheduler(asynqClient, inspector, cfg.ReminderLead, log))
	} else {
		log.Warn("REDIS_URL vazio: lock local, tempo real em instância única e sem lembretes")
	}

	// interfaces nil quando o serviço não está configurado
	var store storage.ObjectStore
	if cfg.StorageEnabled() {
		store = storage.NewS3Store(cfg.S3)
	}

	var gateway payment.Gateway
	if cfg.MercadoPago.AccessToken != "" {
		mp, err := payment.NewMercadoPago(cfg.MercadoPago.AccessToken, cfg.MercadoPago.NotificationURL)
		if err != nil {
			return err
		}
		gateway = mp
	}

	// ======================================================
	// 📤 OUTBOX
	// ======================================================
	subscribers = append(subscribers,
		webhook.NewDispatcher(
			infraRepo.NewWebhookGormRepository(db),
			webhook.Options{Timeout: cfg.WebhookTimeout},
			log,
			m,
		),
		publisher,
	)

	processor := outbox.NewProcessor(
		infraRepo.NewOutboxGormRepository(db),
		outbox.Config{
			BatchSize:    cfg.OutboxBatchSize,
			PollInterval: cfg.OutboxPollInterval,
			MaxAttempts:  cfg.OutboxMaxAttempts,
		},
		log,
		m,
		subscribers...,
	)
	go processor.Start(ctx)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Infra{
		DB:       db,
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Gatherer: reg,
		Audit:    auditDispatcher,
		Locker:   locker,
		Store:    store,
		Gateway:  gateway,
		Hub:      hub,
		Redis:    redisClient,
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// originChecker reaproveita a lista do CORS para o upgrade de WebSocket.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}

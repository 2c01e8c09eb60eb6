package main

import (
	"context"
	"errors"
	_ "time/tzdata"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/config"
	dbpkg "github.com/conexaomental/clinica-api/internal/db"
	"github.com/conexaomental/clinica-api/internal/infra/mailer"
	infraRepo "github.com/conexaomental/clinica-api/internal/infra/repository"
	"github.com/conexaomental/clinica-api/internal/logger"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/reminder"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// worker processa os lembretes agendados pela API na fila do asynq.
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
		log.Fatal("worker stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if !cfg.RedisEnabled() {
		return errors.New("REDIS_URL is required for the worker")
	}

	timezone.SetClinic(cfg.Timezone)

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		return err
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return err
	}

	var sender mailer.Sender = mailer.NewLogSender(log)
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	} else {
		log.Warn("SMTP_HOST vazio: lembretes só vão para o log")
	}

	handler := reminder.NewHandler(
		infraRepo.NewAppointmentGormRepository(db),
		sender,
		metrics.New(prometheus.DefaultRegisterer),
		log,
	)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{reminder.Queue: 1},
		Logger:      log.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(reminder.TypeSend, handler)

	log.Info("worker running", zap.String("queue", reminder.Queue))

	// Run bloqueia até SIGTERM/SIGINT e encerra de forma ordenada
	return srv.Run(mux)
}

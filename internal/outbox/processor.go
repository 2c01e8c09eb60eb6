package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
)

// Store é a parte do repositório de outbox usada pelo processador.
type Store interface {
	Claim(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, lastErr string, next *time.Time) error
}

// Subscriber recebe cada evento. Pode ser chamado mais de uma vez para o
// mesmo evento (nova tentativa após falha de outro assinante), então precisa
// ser idempotente.
type Subscriber interface {
	Name() string
	Handle(ctx context.Context, ev appointment.Event) error
}

type Config struct {
	BatchSize    int
	PollInterval time.Duration
	MaxAttempts  int
	Lease        time.Duration
	BaseDelay    time.Duration
	MaxDelay     time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.Lease <= 0 {
		c.Lease = time.Minute
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 5 * time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Minute
	}
	return c
}

type Processor struct {
	store   Store
	subs    []Subscriber
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewProcessor(store Store, cfg Config, log *zap.Logger, m *metrics.Metrics, subs ...Subscriber) *Processor {
	return &Processor{
		store:   store,
		subs:    subs,
		cfg:     cfg.withDefaults(),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// Start roda até ctx ser cancelado.
func (p *Processor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	names := make([]string, len(p.subs))
	for i, s := range p.subs {
		names[i] = s.Name()
	}
	p.log.Info("outbox processor iniciado", zap.Strings("subscribers", names))

	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox processor encerrado")
			return
		case <-ticker.C:
			if _, err := p.ProcessOnce(ctx); err != nil {
				p.log.Error("falha ao processar outbox", zap.Error(err))
			}
		}
	}
}

// ProcessOnce processa um lote e devolve quantos eventos foram reivindicados.
func (p *Processor) ProcessOnce(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	rows, err := p.store.Claim(ctx, p.cfg.BatchSize, p.cfg.Lease)
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}

	for i := range rows {
		p.process(ctx, &rows[i])
	}
	return len(rows), nil
}

func (p *Processor) process(ctx context.Context, row *models.OutboxEvent) {
	log := p.log.With(
		zap.String("event_id", row.ID.String()),
		zap.String("event_type", row.EventType),
	)

	var ev appointment.Event
	if err := json.Unmarshal([]byte(row.Payload), &ev); err != nil {
		// payload corrompido não melhora com nova tentativa
		log.Error("payload inválido no outbox", zap.Error(err))
		p.metrics.OutboxEventsFailed.Inc()
		if err := p.store.MarkRetry(ctx, row.ID, row.Attempts+1, err.Error(), nil); err != nil {
			log.Error("falha ao marcar evento", zap.Error(err))
		}
		return
	}

	var errs []error
	for _, s := range p.subs {
		if err := s.Handle(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}

	if len(errs) == 0 {
		p.metrics.OutboxEventsProcessed.Inc()
		if err := p.store.MarkProcessed(ctx, row.ID); err != nil {
			log.Error("falha ao marcar evento processado", zap.Error(err))
		}
		return
	}

	deliveryErr := errors.Join(errs...)
	attempts := row.Attempts + 1

	var next *time.Time
	if attempts < p.cfg.MaxAttempts {
		at := p.now().Add(p.retryDelay(attempts))
		next = &at
		p.metrics.OutboxRetries.WithLabelValues(row.EventType).Inc()
		log.Warn("evento será reenviado", zap.Int("attempts", attempts), zap.Time("next_attempt_at", at), zap.Error(deliveryErr))
	} else {
		p.metrics.OutboxEventsFailed.Inc()
		log.Error("evento esgotou as tentativas", zap.Int("attempts", attempts), zap.Error(deliveryErr))
	}

	if err := p.store.MarkRetry(ctx, row.ID, attempts, deliveryErr.Error(), next); err != nil {
		log.Error("falha ao registrar tentativa", zap.Error(err))
	}
}

// espera dobra a cada tentativa, limitada a MaxDelay
func (p *Processor) retryDelay(attempt int) time.Duration {
	d := p.cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.cfg.MaxDelay {
			return p.cfg.MaxDelay
		}
	}
	return d
}

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
)

type Store interface {
	ListActive(ctx context.Context) ([]models.Webhook, error)
	RecordDelivery(ctx context.Context, id uuid.UUID, status int, deliveryErr error) error
}

type Options struct {
	Timeout        time.Duration
	MaxRetries     uint64
	InitialBackoff time.Duration
	// falhas seguidas que abrem o circuito de um endpoint
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.BreakerThreshold == 0 {
		o.BreakerThreshold = 5
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = time.Minute
	}
	return o
}

// Dispatcher entrega eventos aos webhooks cadastrados. A entrega é best-effort
// por endpoint: falha de um receptor fica registrada no webhook e não volta
// para o outbox.
type Dispatcher struct {
	store   Store
	client  *http.Client
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewDispatcher(store Store, opts Options, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		store:    store,
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		log:      log,
		metrics:  m,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (d *Dispatcher) Name() string { return "webhook" }

func (d *Dispatcher) Handle(ctx context.Context, ev appointment.Event) error {
	if !appointment.IsWebhookEvent(string(ev.Name)) {
		return nil
	}

	hooks, err := d.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list webhooks: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	for i := range hooks {
		hook := &hooks[i]
		if !hook.Subscribes(string(ev.Name)) {
			continue
		}

		status, err := d.deliver(ctx, hook, ev, body)

		result := "ok"
		if err != nil {
			result = "failed"
			d.log.Warn("entrega de webhook falhou",
				zap.String("webhook_id", hook.ID.String()),
				zap.String("url", hook.URL),
				zap.String("event", string(ev.Name)),
				zap.Int("status", status),
				zap.Error(err),
			)
		}
		d.metrics.WebhookDeliveries.WithLabelValues(string(ev.Name), result).Inc()

		if recErr := d.store.RecordDelivery(ctx, hook.ID, status, err); recErr != nil {
			d.log.Error("falha ao registrar entrega", zap.String("webhook_id", hook.ID.String()), zap.Error(recErr))
		}
	}

	return nil
}

type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("receiver answered %d", e.code) }

func (d *Dispatcher) deliver(ctx context.Context, hook *models.Webhook, ev appointment.Event, body []byte) (int, error) {
	cb := d.breakerFor(hook.URL)
	var status int

	op := func() error {
		_, err := cb.Execute(func() (interface{}, error) {
			code, err := d.send(ctx, hook, ev, body)
			status = code
			return nil, err
		})

		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(err)
		}

		// 4xx (exceto 429) não melhora com nova tentativa
		var se statusError
		if errors.As(err, &se) && se.code >= 400 && se.code < 500 && se.code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
		return err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = d.opts.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, d.opts.MaxRetries), ctx)

	return status, backoff.Retry(op, policy)
}

func (d *Dispatcher) send(ctx context.Context, hook *models.Webhook, ev appointment.Event, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.URL, bytes.NewReader(body))
	if err != nil {
		return 0, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ConexaoMental-Webhooks/1.0")
	req.Header.Set(HeaderEvent, string(ev.Name))
	req.Header.Set(HeaderDelivery, ev.ID.String())
	req.Header.Set(HeaderSignature, Sign(hook.Secret, body))

	res, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode >= 300 {
		return res.StatusCode, statusError{code: res.StatusCode}
	}
	return res.StatusCode, nil
}

func (d *Dispatcher) breakerFor(url string) *gobreaker.CircuitBreaker {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cb, ok := d.breakers[url]; ok {
		return cb
	}

	threshold := d.opts.BreakerThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    url,
		Timeout: d.opts.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.log.Warn("circuito de webhook mudou de estado",
				zap.String("url", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	d.breakers[url] = cb
	return cb
}

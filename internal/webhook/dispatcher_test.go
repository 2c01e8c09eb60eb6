package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
)

type delivery struct {
	status int
	err    error
}

type memoryStore struct {
	mu         sync.Mutex
	hooks      []models.Webhook
	deliveries map[uuid.UUID][]delivery
}

func (m *memoryStore) ListActive(context.Context) ([]models.Webhook, error) {
	return m.hooks, nil
}

func (m *memoryStore) RecordDelivery(_ context.Context, id uuid.UUID, status int, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deliveries == nil {
		m.deliveries = map[uuid.UUID][]delivery{}
	}
	m.deliveries[id] = append(m.deliveries[id], delivery{status, err})
	return nil
}

func newDispatcher(store Store) *Dispatcher {
	return NewDispatcher(store, Options{
		Timeout:          time.Second,
		MaxRetries:       2,
		InitialBackoff:   time.Millisecond,
		BreakerThreshold: 100,
	}, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
}

func event(name appointment.EventName) appointment.Event {
	ap := &models.Appointment{ID: uuid.New(), PatientName: "João", Status: "agendado", Type: "consulta"}
	return appointment.NewEvent(name, ap, time.Now())
}

func TestDispatcher_SignsAndDelivers(t *testing.T) {
	const secret = "whsec_test"
	var (
		gotSig, gotEvent, gotDelivery string
		gotBody                       []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(HeaderSignature)
		gotEvent = r.Header.Get(HeaderEvent)
		gotDelivery = r.Header.Get(HeaderDelivery)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	hook := models.Webhook{ID: uuid.New(), URL: srv.URL, Secret: secret, Events: []string{"appointment.created"}, Active: true}
	store := &memoryStore{hooks: []models.Webhook{hook}}
	ev := event(appointment.EventCreated)

	require.NoError(t, newDispatcher(store).Handle(context.Background(), ev))

	assert.Equal(t, "appointment.created", gotEvent)
	assert.Equal(t, ev.ID.String(), gotDelivery)
	assert.True(t, Verify(secret, gotBody, gotSig))
	assert.False(t, Verify("outro", gotBody, gotSig))

	require.Len(t, store.deliveries[hook.ID], 1)
	assert.Equal(t, http.StatusNoContent, store.deliveries[hook.ID][0].status)
	assert.NoError(t, store.deliveries[hook.ID][0].err)
}

func TestDispatcher_FiltersBySubscription(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := &memoryStore{hooks: []models.Webhook{
		{ID: uuid.New(), URL: srv.URL, Secret: "a", Events: []string{"appointment.cancelled"}},
		{ID: uuid.New(), URL: srv.URL, Secret: "b", Events: []string{"*"}},
	}}

	d := newDispatcher(store)
	require.NoError(t, d.Handle(context.Background(), event(appointment.EventConfirmed)))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// exclusão administrativa não sai por webhook
	require.NoError(t, d.Handle(context.Background(), event(appointment.EventDeleted)))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDispatcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	hook := models.Webhook{ID: uuid.New(), URL: srv.URL, Secret: "s", Events: []string{"*"}}
	store := &memoryStore{hooks: []models.Webhook{hook}}

	require.NoError(t, newDispatcher(store).Handle(context.Background(), event(appointment.EventCreated)))

	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, http.StatusOK, store.deliveries[hook.ID][0].status)
}

func TestDispatcher_ClientErrorIsNotRetriedAndDoesNotFailOutbox(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	hook := models.Webhook{ID: uuid.New(), URL: srv.URL, Secret: "s", Events: []string{"*"}}
	store := &memoryStore{hooks: []models.Webhook{hook}}

	err := newDispatcher(store).Handle(context.Background(), event(appointment.EventCreated))
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	d := store.deliveries[hook.ID][0]
	assert.Equal(t, http.StatusGone, d.status)
	assert.Error(t, d.err)
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	require.NoError(t, err)
	b, err := NewSecret()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "whsec_")
}

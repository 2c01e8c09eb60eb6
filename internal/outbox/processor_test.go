package outbox

import (
	"context"
	"encoding/json"
	"errors"
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

type memoryStore struct {
	rows map[uuid.UUID]*models.OutboxEvent
}

func (m *memoryStore) Claim(_ context.Context, limit int, _ time.Duration) ([]models.OutboxEvent, error) {
	var out []models.OutboxEvent
	for _, r := range m.rows {
		if r.Status == models.OutboxStatusPending && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memoryStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	m.rows[id].Status = models.OutboxStatusProcessed
	return nil
}

func (m *memoryStore) MarkRetry(_ context.Context, id uuid.UUID, attempts int, lastErr string, next *time.Time) error {
	r := m.rows[id]
	r.Attempts = attempts
	r.LastError = lastErr
	if next == nil {
		r.Status = models.OutboxStatusFailed
		return nil
	}
	r.NextAttemptAt = *next
	return nil
}

type recordingSubscriber struct {
	name string
	err  error
	got  []appointment.Event
}

func (s *recordingSubscriber) Name() string { return s.name }

func (s *recordingSubscriber) Handle(_ context.Context, ev appointment.Event) error {
	s.got = append(s.got, ev)
	return s.err
}

func storeWith(t *testing.T, ev appointment.Event) (*memoryStore, uuid.UUID) {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	row := &models.OutboxEvent{
		ID:        ev.ID,
		EventType: string(ev.Name),
		Payload:   string(payload),
		Status:    models.OutboxStatusPending,
	}
	return &memoryStore{rows: map[uuid.UUID]*models.OutboxEvent{row.ID: row}}, row.ID
}

func sampleEvent() appointment.Event {
	ap := &models.Appointment{
		ID:          uuid.New(),
		PatientName: "João",
		ScheduledAt: time.Date(2025, 7, 14, 12, 0, 0, 0, time.UTC),
		Status:      "agendado",
		Type:        "retorno",
	}
	return appointment.NewEvent(appointment.EventCreated, ap, time.Now())
}

func newProcessor(store Store, maxAttempts int, subs ...Subscriber) *Processor {
	return NewProcessor(store, Config{MaxAttempts: maxAttempts, BaseDelay: time.Second}, zap.NewNop(), metrics.New(prometheus.NewRegistry()), subs...)
}

func TestProcessor_DeliversAndMarksProcessed(t *testing.T) {
	ev := sampleEvent()
	store, id := storeWith(t, ev)
	a := &recordingSubscriber{name: "a"}
	b := &recordingSubscriber{name: "b"}

	n, err := newProcessor(store, 3, a, b).ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.OutboxStatusProcessed, store.rows[id].Status)
	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Equal(t, appointment.TypeFollowUp, a.got[0].Appointment.Type)
}

func TestProcessor_RetriesThenFails(t *testing.T) {
	ev := sampleEvent()
	store, id := storeWith(t, ev)
	broken := &recordingSubscriber{name: "webhook", err: errors.New("connection refused")}
	p := newProcessor(store, 2, broken)

	_, err := p.ProcessOnce(context.Background())
	require.NoError(t, err)

	row := store.rows[id]
	assert.Equal(t, models.OutboxStatusPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Contains(t, row.LastError, "webhook: connection refused")
	assert.True(t, row.NextAttemptAt.After(time.Now()))

	_, err = p.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OutboxStatusFailed, row.Status)
	assert.Equal(t, 2, row.Attempts)
}

func TestProcessor_CorruptPayloadFailsImmediately(t *testing.T) {
	id := uuid.New()
	store := &memoryStore{rows: map[uuid.UUID]*models.OutboxEvent{
		id: {ID: id, EventType: "appointment.created", Payload: "{", Status: models.OutboxStatusPending},
	}}
	sub := &recordingSubscriber{name: "a"}

	_, err := newProcessor(store, 5, sub).ProcessOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.OutboxStatusFailed, store.rows[id].Status)
	assert.Empty(t, sub.got)
}

func TestRetryDelay(t *testing.T) {
	p := NewProcessor(nil, Config{BaseDelay: time.Second, MaxDelay: 5 * time.Second}, zap.NewNop(), nil)

	assert.Equal(t, time.Second, p.retryDelay(1))
	assert.Equal(t, 2*time.Second, p.retryDelay(2))
	assert.Equal(t, 4*time.Second, p.retryDelay(3))
	assert.Equal(t, 5*time.Second, p.retryDelay(4))
}

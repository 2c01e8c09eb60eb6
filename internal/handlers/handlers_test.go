package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/models"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
	payuc "github.com/conexaomental/clinica-api/internal/usecase/payment"
	"github.com/conexaomental/clinica-api/internal/validators"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validators.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ---- fakes ----

type fakeAppointments struct {
	apptdomain.Repository
	pro *models.Professional
	aps map[uuid.UUID]*models.Appointment
}

func newFakeAppointments(pro *models.Professional) *fakeAppointments {
	return &fakeAppointments{pro: pro, aps: map[uuid.UUID]*models.Appointment{}}
}

func (f *fakeAppointments) GetProfessional(_ context.Context, id uuid.UUID) (*models.Professional, error) {
	if f.pro == nil || id != f.pro.ID {
		return nil, domain.ErrNotFound
	}
	cp := *f.pro
	return &cp, nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	ap, ok := f.aps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeAppointments) ListByProfessional(context.Context, uuid.UUID, apptdomain.Filter) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.aps {
		out = append(out, *ap)
	}
	return out, nil
}

func (f *fakeAppointments) UpdateStatus(_ context.Context, id uuid.UUID, from, to apptdomain.Status, _ apptdomain.StatusChange) (*models.Appointment, error) {
	ap, ok := f.aps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if apptdomain.Status(ap.Status) != from {
		return nil, domain.ErrInvalidTransition
	}
	ap.Status = string(to)
	cp := *ap
	return &cp, nil
}

type memoryWebhooks struct {
	rows []*models.Webhook
}

func (m *memoryWebhooks) Create(_ context.Context, hook *models.Webhook) error {
	m.rows = append(m.rows, hook)
	return nil
}

func (m *memoryWebhooks) List(context.Context) ([]models.Webhook, error) {
	out := make([]models.Webhook, 0, len(m.rows))
	for _, h := range m.rows {
		out = append(out, *h)
	}
	return out, nil
}

func (m *memoryWebhooks) GetByID(_ context.Context, id uuid.UUID) (*models.Webhook, error) {
	for _, h := range m.rows {
		if h.ID == id {
			cp := *h
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryWebhooks) Update(_ context.Context, hook *models.Webhook) error {
	for i, h := range m.rows {
		if h.ID == hook.ID {
			m.rows[i] = hook
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryWebhooks) Delete(_ context.Context, id uuid.UUID) error {
	for i, h := range m.rows {
		if h.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// ---- helpers ----

func approvedProfessional(cfg *availability.Config) *models.Professional {
	return &models.Professional{
		ID:           uuid.New(),
		Name:         "Dra. Helena",
		Approved:     true,
		Status:       string(prodomain.StatusApproved),
		Availability: cfg,
	}
}

// withActor faz o papel do AuthMiddleware nos testes.
func withActor(userID uuid.UUID, role string, professionalID *uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		if professionalID != nil {
			c.Set(middleware.ContextProfessionalID, *professionalID)
		}
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

// ---- public ----

func publicRouter(repo *fakeAppointments) *gin.Engine {
	h := NewPublicHandler(
		nil,
		apptuc.NewGetAvailability(repo, 0),
		nil,
		zap.NewNop(),
	)
	r := gin.New()
	r.GET("/professionals/:id/availability", h.Availability)
	r.POST("/professionals/:id/appointments", h.CreateAppointment)
	return r
}

func TestPublicAvailability_NoHoursConfigured(t *testing.T) {
	pro := approvedProfessional(nil)
	r := publicRouter(newFakeAppointments(pro))

	w := do(r, http.MethodGet, "/professionals/"+pro.ID.String()+"/availability?date=2030-01-07", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "no_hours_configured", body["status"])
	assert.Empty(t, body["slots"])
}

func TestPublicAvailability_Slots(t *testing.T) {
	pro := approvedProfessional(&availability.Config{Weekdays: map[availability.Weekday]availability.DayHours{
		availability.Monday: {Available: true, StartTime: "09:00", EndTime: "11:00"},
	}})
	r := publicRouter(newFakeAppointments(pro))

	// 07/01/2030 é segunda-feira
	w := do(r, http.MethodGet, "/professionals/"+pro.ID.String()+"/availability?date=07/01/2030", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2030-01-07", body["date"])
	slots := body["slots"].([]any)
	require.Len(t, slots, 4)
	assert.Equal(t, "09:00", slots[0].(map[string]any)["time"])
	assert.Equal(t, true, slots[0].(map[string]any)["available"])
}

func TestPublicAvailability_BadInput(t *testing.T) {
	r := publicRouter(newFakeAppointments(nil))

	w := do(r, http.MethodGet, "/professionals/not-a-uuid/availability", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/professionals/"+uuid.NewString()+"/availability?date=2030-13-40", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_date", decode(t, w)["error_code"])

	w = do(r, http.MethodGet, "/professionals/"+uuid.NewString()+"/availability?date=2030-01-07", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicCreate_ValidationDetails(t *testing.T) {
	r := publicRouter(newFakeAppointments(nil))

	w := do(r, http.MethodPost, "/professionals/"+uuid.NewString()+"/appointments", map[string]any{
		"patient_name":  "João",
		"patient_phone": "11999990000",
		"date":          "2030-01-07",
		"time":          "9h",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body httperr.HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body.Code)
	assert.Contains(t, w.Body.String(), `"field":"time"`)
}

// ---- appointments ----

func TestAppointmentTransitions_RoleFromToken(t *testing.T) {
	pro := approvedProfessional(nil)
	repo := newFakeAppointments(pro)
	patientID := uuid.New()
	ap := &models.Appointment{
		ID:             uuid.New(),
		ProfessionalID: pro.ID,
		PatientID:      &patientID,
		PatientName:    "João",
		Status:         string(apptdomain.StatusScheduled),
	}
	repo.aps[ap.ID] = ap

	h := NewAppointmentHandler(nil, nil, nil,
		apptuc.NewTransitionAppointment(repo, audit.Nop{}, newMetrics()),
		nil, nil, zap.NewNop(),
	)

	asPatient := gin.New()
	asPatient.PATCH("/appointments/:id/confirm", withActor(patientID, "patient", nil), h.Confirm)

	w := do(asPatient, http.MethodPatch, "/appointments/"+ap.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "transition_forbidden", decode(t, w)["error_code"])

	asPro := gin.New()
	asPro.PATCH("/appointments/:id/confirm", withActor(uuid.New(), "professional", &pro.ID), h.Confirm)
	asPro.PATCH("/appointments/:id/complete", withActor(uuid.New(), "professional", &pro.ID), h.Complete)

	w = do(asPro, http.MethodPatch, "/appointments/"+ap.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmado", decode(t, w)["status"])

	w = do(asPro, http.MethodPatch, "/appointments/"+ap.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode(t, w)["error_code"])

	w = do(asPro, http.MethodPatch, "/appointments/"+ap.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "realizado", decode(t, w)["status"])
}

func TestAppointmentCancel_ForeignLooksMissing(t *testing.T) {
	pro := approvedProfessional(nil)
	repo := newFakeAppointments(pro)
	owner := uuid.New()
	ap := &models.Appointment{ID: uuid.New(), ProfessionalID: pro.ID, PatientID: &owner, Status: string(apptdomain.StatusScheduled)}
	repo.aps[ap.ID] = ap

	h := NewAppointmentHandler(nil, nil, nil,
		apptuc.NewTransitionAppointment(repo, audit.Nop{}, newMetrics()),
		nil, nil, zap.NewNop(),
	)

	r := gin.New()
	r.PATCH("/appointments/:id/cancel", withActor(uuid.New(), "patient", nil), h.Cancel)

	w := do(r, http.MethodPatch, "/appointments/"+ap.ID.String()+"/cancel", map[string]string{"reason": "viagem"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apptdomain.StatusScheduled), ap.Status)
}

// ---- filters ----

func TestAppointmentFilter(t *testing.T) {
	var got apptdomain.Filter
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		f, ok := appointmentFilter(c)
		if !ok {
			return
		}
		got = f
		c.Status(http.StatusOK)
	})

	w := do(r, http.MethodGet, "/?from=2025-07-01&to=31/07/2025&status=agendado&status=confirmado&type=retorno&limit=20&page=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.From)
	require.NotNil(t, got.To)
	assert.Equal(t, "2025-07-01", got.From.Format("2006-01-02"))
	assert.Equal(t, "2025-08-01", got.To.Format("2006-01-02"))
	assert.Equal(t, []apptdomain.Status{apptdomain.StatusScheduled, apptdomain.StatusConfirmed}, got.Statuses)
	assert.Equal(t, apptdomain.TypeFollowUp, got.Type)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, 40, got.Offset)

	w = do(r, http.MethodGet, "/?status=pendente", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_status", decode(t, w)["error_code"])
}

// ---- payments ----

func TestPaymentNotification_AlwaysOK(t *testing.T) {
	h := NewPaymentHandler(nil, nil, payuc.NewHandleNotification(nil, nil, zap.NewNop()), zap.NewNop())
	r := gin.New()
	r.POST("/notifications", h.Notification)

	// gateway não configurado: erro vai para o log, resposta continua 200
	w := do(r, http.MethodPost, "/notifications", map[string]any{"type": "payment", "data": map[string]string{"id": "123"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/notifications?topic=merchant_order&id=9", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/notifications?type=payment&data.id=abc", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ---- webhooks ----

func TestWebhookCRUD(t *testing.T) {
	store := &memoryWebhooks{}
	h := NewIntegrationHandler(nil, store, nil, nil, nil, audit.Nop{}, zap.NewNop())

	r := gin.New()
	admin := withActor(uuid.New(), "admin", nil)
	r.POST("/webhooks", admin, h.CreateWebhook)
	r.PATCH("/webhooks/:id", admin, h.UpdateWebhook)
	r.DELETE("/webhooks/:id", admin, h.DeleteWebhook)

	w := do(r, http.MethodPost, "/webhooks", map[string]any{"url": "ftp://x", "events": []string{"appointment.created"}})
	assert.Equal(t, "invalid_webhook_url", decode(t, w)["error_code"])

	w = do(r, http.MethodPost, "/webhooks", map[string]any{"url": "https://crm.local/hook", "events": []string{"appointment.deleted"}})
	assert.Equal(t, "invalid_webhook_events", decode(t, w)["error_code"])

	w = do(r, http.MethodPost, "/webhooks", map[string]any{"url": "https://crm.local/hook", "events": []string{"appointment.created", "appointment.cancelled"}})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.True(t, strings.HasPrefix(body["secret"].(string), "whsec_"))
	require.Len(t, store.rows, 1)
	assert.True(t, store.rows[0].Active)
	assert.NotContains(t, body["webhook"].(map[string]any), "secret")

	id := store.rows[0].ID.String()
	w = do(r, http.MethodPatch, "/webhooks/"+id, map[string]any{"active": false, "events": []string{"*"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, store.rows[0].Active)
	assert.Equal(t, []string{"*"}, store.rows[0].Events)

	w = do(r, http.MethodDelete, "/webhooks/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.rows)

	w = do(r, http.MethodDelete, "/webhooks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- health ----

func TestReadiness(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		db     Pinger
		redis  Pinger
		code   int
		status string
	}{
		{"all up", up, up, http.StatusOK, "ok"},
		{"redis disabled", up, nil, http.StatusOK, "ok"},
		{"redis down", up, down, http.StatusOK, "degraded"},
		{"db down", down, up, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.redis, "test")
			r := gin.New()
			r.GET("/ready", h.Readiness)

			w := do(r, http.MethodGet, "/ready", nil)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.status, decode(t, w)["status"])
		})
	}
}

package professional

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
)

// store em memória que atende aos dois repositórios
type memoryStore struct {
	mu   sync.Mutex
	pros map[uuid.UUID]*models.Professional
	aps  map[uuid.UUID]*models.Appointment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{pros: map[uuid.UUID]*models.Professional{}, aps: map[uuid.UUID]*models.Appointment{}}
}

func (s *memoryStore) addProfessional(p *models.Professional) { s.pros[p.ID] = p }

func (s *memoryStore) addAppointment(ap *models.Appointment) { s.aps[ap.ID] = ap }

// ---- professional.Repository ----

func (s *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pros[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memoryStore) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pros {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memoryStore) List(_ context.Context, f prodomain.ListFilter) ([]models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Professional
	for _, p := range s.pros {
		if f.Status != "" && p.Status != string(f.Status) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memoryStore) UpdateProfile(_ context.Context, p *models.Professional) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.pros[p.ID] = &cp
	return nil
}

func (s *memoryStore) UpdateAvailability(_ context.Context, id uuid.UUID, cfg *availability.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pros[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Availability = cfg.Clone()
	return nil
}

func (s *memoryStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to prodomain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pros[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != string(from) {
		return domain.ErrInvalidTransition
	}
	p.Status = string(to)
	p.Approved = to == prodomain.StatusApproved
	return nil
}

// ---- appointment.Repository (subconjunto usado aqui) ----

type appointmentView struct{ *memoryStore }

func (v appointmentView) GetProfessional(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	return v.memoryStore.GetByID(ctx, id)
}

func (v appointmentView) Create(context.Context, *models.Appointment) error { return nil }

func (v appointmentView) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ap, ok := v.aps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ap
	return &cp, nil
}

func (v appointmentView) ListByProfessional(_ context.Context, id uuid.UUID, f apptdomain.Filter) ([]models.Appointment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []models.Appointment
	for _, ap := range v.aps {
		if ap.ProfessionalID != id {
			continue
		}
		if f.From != nil && ap.ScheduledAt.Before(*f.From) {
			continue
		}
		if !apptdomain.Status(ap.Status).IsActive() {
			continue
		}
		out = append(out, *ap)
	}
	return out, nil
}

func (v appointmentView) ListByPatient(context.Context, uuid.UUID, apptdomain.Filter) ([]models.Appointment, error) {
	return nil, nil
}

func (v appointmentView) ListAll(context.Context, apptdomain.Filter) ([]models.Appointment, error) {
	return nil, nil
}

func (v appointmentView) UpdateStatus(_ context.Context, id uuid.UUID, from, to apptdomain.Status, ch apptdomain.StatusChange) (*models.Appointment, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ap, ok := v.aps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ap.Status != string(from) {
		return nil, domain.ErrInvalidTransition
	}
	apptdomain.Apply(ap, to, ch)
	cp := *ap
	return &cp, nil
}

func (v appointmentView) Delete(context.Context, uuid.UUID) error { return nil }

func newMetrics() *metrics.Metrics { return metrics.New(prometheus.NewRegistry()) }

var nop audit.Recorder = audit.Nop{}

// objeto em memória no lugar do S3
type memoryObjects struct {
	objects map[string][]byte
	deleted []string
}

func (m *memoryObjects) Put(_ context.Context, key string, body []byte, _ string) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = body
	return nil
}

func (m *memoryObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.local/" + key + "?sig=x", nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

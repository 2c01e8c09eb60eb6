package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/models"
)

// memoryRepo imita o AppointmentStore: índice único por (profissional,
// instante) entre ativos, UPDATE condicional e eventos por mutação.
type memoryRepo struct {
	mu            sync.Mutex
	professionals map[uuid.UUID]*models.Professional
	appointments  map[uuid.UUID]*models.Appointment
	events        []apptdomain.Event
}

func newMemoryRepo(pros ...*models.Professional) *memoryRepo {
	r := &memoryRepo{
		professionals: map[uuid.UUID]*models.Professional{},
		appointments:  map[uuid.UUID]*models.Appointment{},
	}
	for _, p := range pros {
		r.professionals[p.ID] = p
	}
	return r
}

func (r *memoryRepo) GetProfessional(_ context.Context, id uuid.UUID) (*models.Professional, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.professionals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepo) Create(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, other := range r.appointments {
		if other.ProfessionalID == ap.ProfessionalID &&
			other.ScheduledAt.Equal(ap.ScheduledAt) &&
			other.Status != string(apptdomain.StatusCancelled) {
			return domain.ErrSlotUnavailable
		}
	}

	ap.CreatedAt = time.Now()
	cp := *ap
	r.appointments[ap.ID] = &cp
	r.events = append(r.events, apptdomain.NewEvent(apptdomain.EventCreated, ap, ap.CreatedAt))
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ap, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ap
	return &cp, nil
}

func (r *memoryRepo) filter(match func(*models.Appointment) bool, f apptdomain.Filter) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.appointments {
		if !match(ap) {
			continue
		}
		if f.From != nil && ap.ScheduledAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !ap.ScheduledAt.Before(*f.To) {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, ap.Status) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

func hasStatus(list []apptdomain.Status, s string) bool {
	for _, st := range list {
		if string(st) == s {
			return true
		}
	}
	return false
}

func (r *memoryRepo) ListByProfessional(_ context.Context, id uuid.UUID, f apptdomain.Filter) ([]models.Appointment, error) {
	return r.filter(func(ap *models.Appointment) bool { return ap.ProfessionalID == id }, f), nil
}

func (r *memoryRepo) ListByPatient(_ context.Context, id uuid.UUID, f apptdomain.Filter) ([]models.Appointment, error) {
	return r.filter(func(ap *models.Appointment) bool { return ap.PatientID != nil && *ap.PatientID == id }, f), nil
}

func (r *memoryRepo) ListAll(_ context.Context, f apptdomain.Filter) ([]models.Appointment, error) {
	return r.filter(func(*models.Appointment) bool { return true }, f), nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to apptdomain.Status, ch apptdomain.StatusChange) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ap, ok := r.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if ap.Status != string(from) {
		return nil, domain.ErrInvalidTransition
	}

	apptdomain.Apply(ap, to, ch)
	r.events = append(r.events, apptdomain.NewEvent(apptdomain.EventFor(to), ap, ch.At))
	cp := *ap
	return &cp, nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

func (r *memoryRepo) eventNames() []apptdomain.EventName {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]apptdomain.EventName, len(r.events))
	for i, e := range r.events {
		out[i] = e.Name
	}
	return out
}

var _ apptdomain.Repository = (*memoryRepo)(nil)

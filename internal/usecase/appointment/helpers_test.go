package appointment

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/conexaomental/clinica-api/internal/audit"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/infra/redislock"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// sexta, 11/07/2025 08:00 no fuso da clínica
var fixedNow = time.Date(2025, 7, 11, 8, 0, 0, 0, timezone.Clinic())

func clock() time.Time { return fixedNow }

func approvedProfessional() *models.Professional {
	return &models.Professional{
		ID:       uuid.New(),
		Name:     "Dra. Helena",
		Status:   "approved",
		Approved: true,
		Availability: &availability.Config{
			Weekdays: map[availability.Weekday]availability.DayHours{
				availability.Monday: {Available: true, StartTime: "09:00", EndTime: "10:00"},
			},
			CustomTimeSlots: map[string][]string{
				"2025-07-15": {"14:00"},
			},
		},
	}
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func newCreate(repo apptdomain.Repository) *CreateAppointment {
	uc := NewCreateAppointment(repo, redislock.Noop{}, audit.Nop{}, newMetrics(), time.Hour)
	uc.now = clock
	return uc
}

func newTransition(repo apptdomain.Repository) *TransitionAppointment {
	uc := NewTransitionAppointment(repo, audit.Nop{}, newMetrics())
	uc.now = clock
	return uc
}

func patient() Actor {
	return Actor{UserID: uuid.New(), Role: apptdomain.RolePatient}
}

func professionalActor(p *models.Professional) Actor {
	id := p.ID
	return Actor{UserID: uuid.New(), Role: apptdomain.RoleProfessional, ProfessionalID: &id}
}

func admin() Actor {
	return Actor{UserID: uuid.New(), Role: apptdomain.RoleAdmin}
}

func nopRecorder() audit.Recorder { return audit.Nop{} }

package professional

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/dto"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
)

const cascadeReason = "Horário removido da agenda do profissional"

// OrphanedAppointmentsError é devolvido quando a nova agenda deixaria
// agendamentos ativos fora dos horários oferecidos.
type OrphanedAppointmentsError struct {
	Appointments []dto.AppointmentDTO
}

func (e *OrphanedAppointmentsError) Error() string {
	return fmt.Sprintf("%d active appointments outside the new availability", len(e.Appointments))
}

type UpdateAvailabilityInput struct {
	ProfessionalID uuid.UUID
	Availability   *availability.Config
	// Cascade cancela os agendamentos órfãos em vez de recusar a alteração.
	Cascade bool
	Actor   apptuc.Actor
}

type UpdateAvailabilityResult struct {
	Availability *availability.Config `json:"availability"`
	Cancelled    []uuid.UUID          `json:"cancelled"`
}

type UpdateAvailability struct {
	pros       prodomain.Repository
	appts      apptdomain.Repository
	transition *apptuc.TransitionAppointment
	audit      audit.Recorder
	now        func() time.Time
}

func NewUpdateAvailability(
	pros prodomain.Repository,
	appts apptdomain.Repository,
	transition *apptuc.TransitionAppointment,
	audit audit.Recorder,
) *UpdateAvailability {
	return &UpdateAvailability{
		pros:       pros,
		appts:      appts,
		transition: transition,
		audit:      audit,
		now:        timezone.Now,
	}
}

func (uc *UpdateAvailability) Execute(
	ctx context.Context,
	in UpdateAvailabilityInput,
) (*UpdateAvailabilityResult, error) {

	// --------------------------------------------------
	// 1️⃣ Documento válido
	// --------------------------------------------------
	if in.Availability == nil {
		in.Availability = &availability.Config{}
	}
	if err := in.Availability.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", httperr.ErrBusiness("invalid_availability"), err)
	}

	pro, err := uc.pros.GetByID(ctx, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Agendamentos futuros que ficariam fora da grade
	// --------------------------------------------------
	from := uc.now()
	active, err := uc.appts.ListByProfessional(ctx, pro.ID, apptdomain.Filter{
		From:     &from,
		Statuses: apptdomain.ActiveStatuses,
	})
	if err != nil {
		return nil, err
	}

	orphans := Orphaned(in.Availability, active)
	if len(orphans) > 0 && !in.Cascade {
		return nil, &OrphanedAppointmentsError{Appointments: dto.FromAppointments(orphans)}
	}

	// --------------------------------------------------
	// 3️⃣ Cancelamento em cascata pela máquina de estados
	// --------------------------------------------------
	result := &UpdateAvailabilityResult{Availability: in.Availability, Cancelled: []uuid.UUID{}}

	for _, ap := range orphans {
		_, err := uc.transition.Execute(ctx, apptuc.TransitionInput{
			AppointmentID: ap.ID,
			To:            apptdomain.StatusCancelled,
			Actor:         in.Actor,
			Reason:        cascadeReason,
		})
		if errors.Is(err, domain.ErrInvalidTransition) {
			// cancelado ou concluído por outro ator entre a leitura e aqui
			continue
		}
		if err != nil {
			return nil, err
		}
		result.Cancelled = append(result.Cancelled, ap.ID)
	}

	// --------------------------------------------------
	// 4️⃣ Persiste
	// --------------------------------------------------
	if err := uc.pros.UpdateAvailability(ctx, pro.ID, in.Availability); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		"availability_updated",
		"professional",
		pro.ID,
		map[string]any{"cascade": in.Cascade, "cancelled": result.Cancelled},
	))

	return result, nil
}

// Orphaned devolve os agendamentos cujo horário não é mais oferecido
// pelo documento cfg.
func Orphaned(cfg *availability.Config, appointments []models.Appointment) []models.Appointment {
	var out []models.Appointment
	for _, ap := range appointments {
		if !apptdomain.Status(ap.Status).IsActive() {
			continue
		}
		at := ap.ScheduledAt.In(timezone.Clinic())
		res := availability.Resolve(cfg, timezone.StartOfDay(at))
		if !res.Contains(timezone.FormatClock(at)) {
			out = append(out, ap)
		}
	}
	return out
}

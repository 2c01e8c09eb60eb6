package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/calendar"
	"github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// GetAvailability monta os horários de um dia para o fluxo de reserva:
// grade resolvida cruzada com os agendamentos ativos.
type GetAvailability struct {
	repo       apptdomain.Repository
	projector  *calendar.Projector
	minAdvance time.Duration
	now        func() time.Time
}

func NewGetAvailability(repo apptdomain.Repository, minAdvance time.Duration) *GetAvailability {
	return &GetAvailability{
		repo:       repo,
		projector:  calendar.NewProjector(timezone.Clinic()),
		minAdvance: minAdvance,
		now:        timezone.Now,
	}
}

// Execute devolve domain.ErrConfigurationMissing quando o profissional não
// tem documento de disponibilidade; quem chama trata como "sem horários".
func (uc *GetAvailability) Execute(
	ctx context.Context,
	professionalID uuid.UUID,
	date time.Time,
) (*calendar.Day, error) {

	pro, err := uc.repo.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if !professional.Bookable(professional.Status(pro.Status), pro.Approved) {
		return nil, domain.ErrNotFound
	}
	if pro.Availability.IsEmpty() {
		return nil, domain.ErrConfigurationMissing
	}

	start, end := timezone.DayBounds(date)
	aps, err := uc.repo.ListByProfessional(ctx, pro.ID, apptdomain.Filter{
		From:     &start,
		To:       &end,
		Statuses: apptdomain.ActiveStatuses,
	})
	if err != nil {
		return nil, err
	}

	day := uc.projector.Day(pro.Availability, start, aps)

	// horários antes da antecedência mínima não podem ser reservados
	cutoff := uc.now().Add(uc.minAdvance)
	for i := range day.Slots {
		s := &day.Slots[i]
		if !s.Available {
			continue
		}
		at, err := timezone.ParseDateTime(day.Date, s.Time)
		if err == nil && at.Before(cutoff) {
			s.Available = false
			s.State = calendar.CellPast
		}
	}

	// paciente não vê dados de outros pacientes
	for i := range day.Slots {
		day.Slots[i].Appointment = nil
	}

	return &day, nil
}

package appointment

import (
	"context"

	"github.com/google/uuid"

	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/dto"
)

type ListAppointments struct {
	repo apptdomain.Repository
}

func NewListAppointments(repo apptdomain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ForActor devolve a lista que o ator pode ver: a agenda do profissional,
// os agendamentos do paciente ou todos, para o admin.
func (uc *ListAppointments) ForActor(
	ctx context.Context,
	actor Actor,
	f apptdomain.Filter,
) ([]dto.AppointmentDTO, error) {

	switch actor.Role {
	case apptdomain.RoleAdmin:
		return uc.All(ctx, f)
	case apptdomain.RoleProfessional:
		if actor.ProfessionalID == nil {
			return []dto.AppointmentDTO{}, nil
		}
		return uc.ForProfessional(ctx, *actor.ProfessionalID, f)
	default:
		return uc.ForPatient(ctx, actor.UserID, f)
	}
}

func (uc *ListAppointments) ForProfessional(ctx context.Context, professionalID uuid.UUID, f apptdomain.Filter) ([]dto.AppointmentDTO, error) {
	aps, err := uc.repo.ListByProfessional(ctx, professionalID, f)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(aps), nil
}

func (uc *ListAppointments) ForPatient(ctx context.Context, patientID uuid.UUID, f apptdomain.Filter) ([]dto.AppointmentDTO, error) {
	aps, err := uc.repo.ListByPatient(ctx, patientID, f)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(aps), nil
}

func (uc *ListAppointments) All(ctx context.Context, f apptdomain.Filter) ([]dto.AppointmentDTO, error) {
	aps, err := uc.repo.ListAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(aps), nil
}

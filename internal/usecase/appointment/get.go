package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/models"
)

type GetAppointment struct {
	repo apptdomain.Repository
}

func NewGetAppointment(repo apptdomain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, actor Actor, id uuid.UUID) (*models.Appointment, error) {
	ap, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(ap) {
		return nil, domain.ErrNotFound
	}
	return ap, nil
}

// DeleteAppointment é a exclusão administrativa, fora da máquina de estados.
type DeleteAppointment struct {
	repo  apptdomain.Repository
	audit audit.Recorder
}

func NewDeleteAppointment(repo apptdomain.Repository, audit audit.Recorder) *DeleteAppointment {
	return &DeleteAppointment{repo: repo, audit: audit}
}

func (uc *DeleteAppointment) Execute(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.Role != apptdomain.RoleAdmin {
		return domain.ErrTransitionForbidden
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "appointment_deleted", "appointment", id, nil))
	return nil
}

package professional

import (
	"context"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/models"
)

// UpdateStatus é a moderação administrativa do cadastro (aprovar, recusar,
// suspender e reativar).
type UpdateStatus struct {
	repo  prodomain.Repository
	audit audit.Recorder
}

func NewUpdateStatus(repo prodomain.Repository, audit audit.Recorder) *UpdateStatus {
	return &UpdateStatus{repo: repo, audit: audit}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	adminID uuid.UUID,
	professionalID uuid.UUID,
	to prodomain.Status,
) (*models.Professional, error) {

	if !to.Valid() {
		return nil, httperr.ErrBusiness("invalid_status")
	}

	pro, err := uc.repo.GetByID(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	from := prodomain.Status(pro.Status)
	if err := prodomain.CanTransition(from, to); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateStatus(ctx, pro.ID, from, to); err != nil {
		return nil, err
	}

	pro.Status = string(to)
	pro.Approved = to == prodomain.StatusApproved

	uc.audit.Dispatch(audit.Action(
		adminID,
		string(models.RoleAdmin),
		"professional_"+string(to),
		"professional",
		pro.ID,
		map[string]any{"from": from, "to": to},
	))

	return pro, nil
}

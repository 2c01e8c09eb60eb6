package professional

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/models"
)

// UpdateProfileInput usa ponteiros: campo ausente não é alterado.
type UpdateProfileInput struct {
	Name         *string
	CRP          *string
	Bio          *string
	Specialties  []string
	SessionPrice *float64
}

type UpdateProfile struct {
	repo  prodomain.Repository
	audit audit.Recorder
}

func NewUpdateProfile(repo prodomain.Repository, audit audit.Recorder) *UpdateProfile {
	return &UpdateProfile{repo: repo, audit: audit}
}

func (uc *UpdateProfile) Execute(
	ctx context.Context,
	userID uuid.UUID,
	in UpdateProfileInput,
) (*models.Professional, error) {

	pro, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, httperr.ErrBusiness("invalid_name")
		}
		pro.Name = name
	}
	if in.CRP != nil {
		pro.CRP = strings.TrimSpace(*in.CRP)
	}
	if in.Bio != nil {
		pro.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Specialties != nil {
		pro.Specialties = normalizeSpecialties(in.Specialties)
	}
	if in.SessionPrice != nil {
		if *in.SessionPrice < 0 {
			return nil, httperr.ErrBusiness("invalid_price")
		}
		pro.SessionPrice = *in.SessionPrice
	}

	if err := uc.repo.UpdateProfile(ctx, pro); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Action(userID, string(models.RoleProfessional), "profile_updated", "professional", pro.ID, nil))
	return pro, nil
}

// remove vazios e repetidos, mantendo a ordem informada
func normalizeSpecialties(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

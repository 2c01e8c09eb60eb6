package professional

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/dto"
	"github.com/conexaomental/clinica-api/internal/infra/storage"
	"github.com/conexaomental/clinica-api/internal/models"
)

// Directory é o catálogo público: só profissionais aprovados.
type Directory struct {
	repo  prodomain.Repository
	store storage.ObjectStore
	log   *zap.Logger
}

func NewDirectory(repo prodomain.Repository, store storage.ObjectStore, log *zap.Logger) *Directory {
	return &Directory{repo: repo, store: store, log: log}
}

func (uc *Directory) List(ctx context.Context, specialty, search string) ([]dto.ProfessionalPublicDTO, error) {
	pros, err := uc.repo.List(ctx, prodomain.ListFilter{
		Status:    prodomain.StatusApproved,
		Specialty: specialty,
		Search:    search,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProfessionalPublicDTO, 0, len(pros))
	for i := range pros {
		if !prodomain.Bookable(prodomain.Status(pros[i].Status), pros[i].Approved) {
			continue
		}
		out = append(out, dto.FromProfessional(&pros[i], uc.photoURL(ctx, &pros[i])))
	}
	return out, nil
}

func (uc *Directory) Get(ctx context.Context, id uuid.UUID) (*dto.ProfessionalPublicDTO, error) {
	pro, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !prodomain.Bookable(prodomain.Status(pro.Status), pro.Approved) {
		return nil, domain.ErrNotFound
	}

	out := dto.FromProfessional(pro, uc.photoURL(ctx, pro))
	return &out, nil
}

// foto é opcional; falha ao assinar não derruba a listagem
func (uc *Directory) photoURL(ctx context.Context, p *models.Professional) string {
	if uc.store == nil || p.PhotoKey == "" {
		return ""
	}
	url, err := uc.store.PresignGet(ctx, p.PhotoKey, PhotoURLTTL)
	if err != nil {
		uc.log.Warn("presign foto", zap.String("professional_id", p.ID.String()), zap.Error(err))
		return ""
	}
	return url
}

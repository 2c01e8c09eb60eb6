package professional

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/audit"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/imaging"
	"github.com/conexaomental/clinica-api/internal/infra/storage"
)

const (
	photoMaxSide = 512
	photoQuality = 82
	PhotoURLTTL  = time.Hour
)

type UploadPhoto struct {
	repo  prodomain.Repository
	store storage.ObjectStore
	audit audit.Recorder
	log   *zap.Logger
}

// store nil significa armazenamento não configurado.
func NewUploadPhoto(repo prodomain.Repository, store storage.ObjectStore, audit audit.Recorder, log *zap.Logger) *UploadPhoto {
	return &UploadPhoto{repo: repo, store: store, audit: audit, log: log}
}

// Execute converte a imagem para webp, grava no bucket e devolve uma URL
// assinada da nova foto.
func (uc *UploadPhoto) Execute(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	if uc.store == nil {
		return "", httperr.ErrBusiness("storage_not_configured")
	}
	if len(data) == 0 || len(data) > imaging.MaxUploadBytes {
		return "", httperr.ErrBusiness("invalid_file")
	}

	pro, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	img, err := imaging.NormalizePhoto(data, photoMaxSide, photoQuality)
	if errors.Is(err, imaging.ErrUnsupportedImage) {
		return "", httperr.ErrBusiness("invalid_file")
	}
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("photos/%s/%s.webp", pro.ID, uuid.NewString())
	if err := uc.store.Put(ctx, key, img, imaging.ContentType); err != nil {
		return "", err
	}

	previous := pro.PhotoKey
	pro.PhotoKey = key
	if err := uc.repo.UpdateProfile(ctx, pro); err != nil {
		return "", err
	}

	if previous != "" {
		if err := uc.store.Delete(ctx, previous); err != nil {
			uc.log.Warn("falha ao remover foto antiga", zap.String("key", previous), zap.Error(err))
		}
	}

	uc.audit.Dispatch(audit.Action(userID, "professional", "photo_updated", "professional", pro.ID, nil))

	return uc.store.PresignGet(ctx, key, PhotoURLTTL)
}

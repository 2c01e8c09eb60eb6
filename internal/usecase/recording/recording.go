package recording

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/infra/storage"
	"github.com/conexaomental/clinica-api/internal/models"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
)

const (
	MaxUploadBytes = 200 << 20
	URLTTL         = 15 * time.Minute
)

var allowedTypes = map[string]string{
	"audio/webm": ".webm",
	"video/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".m4a",
	"video/mp4":  ".mp4",
	"audio/wav":  ".wav",
}

type Repository interface {
	Create(ctx context.Context, rec *models.Recording) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.Recording, error)
}

type UploadInput struct {
	AppointmentID uuid.UUID
	Actor         apptuc.Actor
	Filename      string
	ContentType   string
	Data          []byte
}

type View struct {
	ID          uuid.UUID `json:"id"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
}

// ======================================================
// UPLOAD
// ======================================================

type Upload struct {
	appts apptdomain.Repository
	repo  Repository
	store storage.ObjectStore
	audit audit.Recorder
}

// store nil significa armazenamento não configurado.
func NewUpload(appts apptdomain.Repository, repo Repository, store storage.ObjectStore, audit audit.Recorder) *Upload {
	return &Upload{appts: appts, repo: repo, store: store, audit: audit}
}

func (uc *Upload) Execute(ctx context.Context, in UploadInput) (*View, error) {

	// --------------------------------------------------
	// 1️⃣ Armazenamento e arquivo
	// --------------------------------------------------
	if uc.store == nil {
		return nil, httperr.ErrBusiness("storage_not_configured")
	}
	if len(in.Data) == 0 || len(in.Data) > MaxUploadBytes {
		return nil, httperr.ErrBusiness("invalid_file")
	}
	contentType := strings.TrimSpace(strings.SplitN(in.ContentType, ";", 2)[0])
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, httperr.ErrBusiness("invalid_file")
	}
	if e := strings.ToLower(filepath.Ext(in.Filename)); e != "" && len(e) <= 5 {
		ext = e
	}

	// --------------------------------------------------
	// 2️⃣ Só o profissional da sessão grava
	// --------------------------------------------------
	ap, err := uc.appts.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.Owns(ap) {
		return nil, domain.ErrNotFound
	}
	if in.Actor.Role != apptdomain.RoleProfessional {
		return nil, domain.ErrTransitionForbidden
	}

	// --------------------------------------------------
	// 3️⃣ Bucket + registro
	// --------------------------------------------------
	rec := &models.Recording{
		ID:            uuid.New(),
		AppointmentID: ap.ID,
		UploadedBy:    in.Actor.UserID,
		ContentType:   contentType,
		SizeBytes:     int64(len(in.Data)),
	}
	rec.ObjectKey = fmt.Sprintf("recordings/%s/%s%s", ap.ID, rec.ID, ext)

	if err := uc.store.Put(ctx, rec.ObjectKey, in.Data, contentType); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		"recording_uploaded",
		"appointment",
		ap.ID,
		map[string]any{"recording_id": rec.ID, "size_bytes": rec.SizeBytes},
	))

	url, err := uc.store.PresignGet(ctx, rec.ObjectKey, URLTTL)
	if err != nil {
		return nil, err
	}
	return toView(rec, url), nil
}

// ======================================================
// LIST
// ======================================================

type List struct {
	appts apptdomain.Repository
	repo  Repository
	store storage.ObjectStore
}

func NewList(appts apptdomain.Repository, repo Repository, store storage.ObjectStore) *List {
	return &List{appts: appts, repo: repo, store: store}
}

// Execute devolve as gravações com URLs assinadas. Paciente não tem acesso.
func (uc *List) Execute(ctx context.Context, actor apptuc.Actor, appointmentID uuid.UUID) ([]View, error) {
	if uc.store == nil {
		return nil, httperr.ErrBusiness("storage_not_configured")
	}

	ap, err := uc.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(ap) || actor.Role == apptdomain.RolePatient {
		return nil, domain.ErrNotFound
	}

	recs, err := uc.repo.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(recs))
	for i := range recs {
		url, err := uc.store.PresignGet(ctx, recs[i].ObjectKey, URLTTL)
		if err != nil {
			return nil, err
		}
		out = append(out, *toView(&recs[i], url))
	}
	return out, nil
}

func toView(rec *models.Recording, url string) *View {
	return &View{
		ID:          rec.ID,
		ContentType: rec.ContentType,
		SizeBytes:   rec.SizeBytes,
		URL:         url,
		CreatedAt:   rec.CreatedAt,
	}
}

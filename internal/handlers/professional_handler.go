package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	"github.com/conexaomental/clinica-api/internal/imaging"
	prouc "github.com/conexaomental/clinica-api/internal/usecase/professional"
)

// ======================================================
// HANDLER
// ======================================================

type ProfessionalHandler struct {
	repo         prodomain.Repository
	availability *prouc.UpdateAvailability
	profile      *prouc.UpdateProfile
	photo        *prouc.UploadPhoto
	status       *prouc.UpdateStatus
	log          *zap.Logger
}

func NewProfessionalHandler(
	repo prodomain.Repository,
	availability *prouc.UpdateAvailability,
	profile *prouc.UpdateProfile,
	photo *prouc.UploadPhoto,
	status *prouc.UpdateStatus,
	log *zap.Logger,
) *ProfessionalHandler {
	return &ProfessionalHandler{
		repo:         repo,
		availability: availability,
		profile:      profile,
		photo:        photo,
		status:       status,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateProfileRequest struct {
	Name         *string  `json:"name" binding:"omitempty,max=100"`
	CRP          *string  `json:"crp" binding:"omitempty,max=30"`
	Bio          *string  `json:"bio" binding:"omitempty,max=2000"`
	Specialties  []string `json:"specialties" binding:"omitempty,max=20,dive,max=60"`
	SessionPrice *float64 `json:"session_price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// AVAILABILITY (profissional)
// ======================================================

func (h *ProfessionalHandler) GetMyAvailability(c *gin.Context) {
	actor := actorFromContext(c)

	pro, err := h.repo.GetByUserID(c.Request.Context(), actor.UserID)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured":   !pro.Availability.IsEmpty(),
		"availability": pro.Availability,
	})
}

func (h *ProfessionalHandler) UpdateMyAvailability(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.ProfessionalID == nil {
		httperr.Forbidden(c, "forbidden", "Apenas profissionais podem alterar horários.")
		return
	}
	h.updateAvailability(c, *actor.ProfessionalID)
}

// UpdateAvailability é a versão do admin, para qualquer profissional.
func (h *ProfessionalHandler) UpdateAvailability(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.updateAvailability(c, id)
}

func (h *ProfessionalHandler) updateAvailability(c *gin.Context, professionalID uuid.UUID) {
	var cfg availability.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		httperr.BadRequest(c, "invalid_availability", "Configuração de horários inválida.")
		return
	}

	res, err := h.availability.Execute(c.Request.Context(), prouc.UpdateAvailabilityInput{
		ProfessionalID: professionalID,
		Availability:   &cfg,
		Cascade:        c.Query("cascade") == "true",
		Actor:          actorFromContext(c),
	})

	var orphaned *prouc.OrphanedAppointmentsError
	if errors.As(err, &orphaned) {
		httperr.ConflictWith(c,
			"slot_has_appointments",
			"Existem agendamentos ativos nos horários removidos. Use cascade=true para cancelá-los.",
			orphaned.Appointments,
		)
		return
	}
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// PROFILE / PHOTO
// ======================================================

func (h *ProfessionalHandler) UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	pro, err := h.profile.Execute(c.Request.Context(), actorFromContext(c).UserID, prouc.UpdateProfileInput{
		Name:         req.Name,
		CRP:          req.CRP,
		Bio:          req.Bio,
		Specialties:  req.Specialties,
		SessionPrice: req.SessionPrice,
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.OK(c, pro)
}

// UpdateMyPhoto recebe multipart com o campo "file".
func (h *ProfessionalHandler) UpdateMyPhoto(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil || fh.Size > imaging.MaxUploadBytes {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imaging.MaxUploadBytes+1))
	if err != nil {
		httperr.BadRequest(c, "invalid_file", "Arquivo inválido.")
		return
	}

	url, err := h.photo.Execute(c.Request.Context(), actorFromContext(c).UserID, data)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// ======================================================
// ADMIN
// ======================================================

func (h *ProfessionalHandler) List(c *gin.Context) {
	status := prodomain.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		httperr.BadRequest(c, "invalid_status", "Status inválido.")
		return
	}

	out, err := h.repo.List(c.Request.Context(), prodomain.ListFilter{
		Status:    status,
		Specialty: c.Query("specialty"),
		Search:    c.Query("q"),
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

func (h *ProfessionalHandler) UpdateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	pro, err := h.status.Execute(
		c.Request.Context(),
		actorFromContext(c).UserID,
		id,
		prodomain.Status(req.Status),
	)
	if errors.Is(err, domain.ErrInvalidTransition) {
		httperr.Conflict(c, "invalid_status_transition", "Mudança de status do profissional não permitida.")
		return
	}
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.OK(c, pro)
}

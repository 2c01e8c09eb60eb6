package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/dto"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	"github.com/conexaomental/clinica-api/internal/models"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AppointmentHandler struct {
	create     *apptuc.CreateAppointment
	get        *apptuc.GetAppointment
	list       *apptuc.ListAppointments
	transition *apptuc.TransitionAppointment
	remove     *apptuc.DeleteAppointment
	users      UserFinder
	log        *zap.Logger
}

func NewAppointmentHandler(
	create *apptuc.CreateAppointment,
	get *apptuc.GetAppointment,
	list *apptuc.ListAppointments,
	transition *apptuc.TransitionAppointment,
	remove *apptuc.DeleteAppointment,
	users UserFinder,
	log *zap.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		get:        get,
		list:       list,
		transition: transition,
		remove:     remove,
		users:      users,
		log:        log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ProfessionalID uuid.UUID `json:"professional_id" binding:"required"`
	Date           string    `json:"date" binding:"required,date"`
	Time           string    `json:"time" binding:"required,hhmm"`
	Type           string    `json:"type" binding:"omitempty,oneof=consulta retorno"`
	Notes          string    `json:"notes" binding:"max=500"`
	PatientPhone   string    `json:"patient_phone" binding:"max=20"`
}

type AdminCreateAppointmentRequest struct {
	ProfessionalID uuid.UUID  `json:"professional_id" binding:"required"`
	PatientID      *uuid.UUID `json:"patient_id"`
	PatientName    string     `json:"patient_name" binding:"required,max=100"`
	PatientPhone   string     `json:"patient_phone" binding:"max=20"`
	PatientEmail   string     `json:"patient_email" binding:"omitempty,email"`
	Date           string     `json:"date" binding:"required,date"`
	Time           string     `json:"time" binding:"required,hhmm"`
	Type           string     `json:"type" binding:"omitempty,oneof=consulta retorno"`
	Notes          string     `json:"notes" binding:"max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

// ======================================================
// CREATE
// ======================================================

// Create é a reserva do paciente logado; nome e e-mail vêm da conta.
func (h *AppointmentHandler) Create(c *gin.Context) {
	actor := actorFromContext(c)

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), actor.UserID)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	phone := req.PatientPhone
	if phone == "" {
		phone = user.Phone
	}

	ap, err := h.create.Execute(c.Request.Context(), apptuc.CreateAppointmentInput{
		ProfessionalID: req.ProfessionalID,
		PatientID:      &user.ID,
		PatientName:    user.Name,
		PatientPhone:   phone,
		PatientEmail:   user.Email,
		Date:           req.Date,
		Time:           req.Time,
		Type:           req.Type,
		Notes:          req.Notes,
		Actor:          actor,
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.FromAppointment(ap))
}

func (h *AppointmentHandler) AdminCreate(c *gin.Context) {
	var req AdminCreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), apptuc.CreateAppointmentInput{
		ProfessionalID: req.ProfessionalID,
		PatientID:      req.PatientID,
		PatientName:    req.PatientName,
		PatientPhone:   req.PatientPhone,
		PatientEmail:   req.PatientEmail,
		Date:           req.Date,
		Time:           req.Time,
		Type:           req.Type,
		Notes:          req.Notes,
		Actor:          actorFromContext(c),
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.FromAppointment(ap))
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	actor := actorFromContext(c)
	ap, err := h.get.Execute(c.Request.Context(), actor, id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment":     dto.FromAppointment(ap),
		"allowed_actions": apptdomain.AllowedTargets(apptdomain.Status(ap.Status), actor.Role),
	})
}

// ListMine devolve a agenda do profissional ou os agendamentos do paciente.
func (h *AppointmentHandler) ListMine(c *gin.Context) {
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}

	out, err := h.list.ForActor(c.Request.Context(), actorFromContext(c), f)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

// ListAll aceita professional_id para filtrar a agenda de um profissional.
func (h *AppointmentHandler) ListAll(c *gin.Context) {
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}

	var (
		out []dto.AppointmentDTO
		err error
	)
	if raw := c.Query("professional_id"); raw != "" {
		pid, perr := uuid.Parse(raw)
		if perr != nil {
			httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
			return
		}
		out, err = h.list.ForProfessional(c.Request.Context(), pid, f)
	} else {
		out, err = h.list.All(c.Request.Context(), f)
	}
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.move(c, apptdomain.StatusConfirmed, "")
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.move(c, apptdomain.StatusCompleted, "")
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req CancelRequest
	// corpo é opcional
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.move(c, apptdomain.StatusCancelled, req.Reason)
}

func (h *AppointmentHandler) move(c *gin.Context, to apptdomain.Status, reason string) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.transition.Execute(c.Request.Context(), apptuc.TransitionInput{
		AppointmentID: id,
		To:            to,
		Actor:         actorFromContext(c),
		Reason:        reason,
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

// ======================================================
// DELETE (admin)
// ======================================================

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), actorFromContext(c), id); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.NoContent(c)
}

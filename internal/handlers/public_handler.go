package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/dto"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	"github.com/conexaomental/clinica-api/internal/timezone"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
	prouc "github.com/conexaomental/clinica-api/internal/usecase/professional"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	directory    *prouc.Directory
	availability *apptuc.GetAvailability
	create       *apptuc.CreateAppointment
	log          *zap.Logger
}

func NewPublicHandler(
	directory *prouc.Directory,
	availability *apptuc.GetAvailability,
	create *apptuc.CreateAppointment,
	log *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		directory:    directory,
		availability: availability,
		create:       create,
		log:          log,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicCreateAppointmentRequest struct {
	PatientName  string `json:"patient_name" binding:"required,max=100"`
	PatientPhone string `json:"patient_phone" binding:"required,max=20"`
	PatientEmail string `json:"patient_email" binding:"omitempty,email"`
	Date         string `json:"date" binding:"required,date"`
	Time         string `json:"time" binding:"required,hhmm"`
	Type         string `json:"type" binding:"omitempty,oneof=consulta retorno"`
	Notes        string `json:"notes" binding:"max=500"`
}

////////////////////////////////////////////////////////
// DIRECTORY
////////////////////////////////////////////////////////

func (h *PublicHandler) ListProfessionals(c *gin.Context) {
	out, err := h.directory.List(
		c.Request.Context(),
		strings.TrimSpace(c.Query("specialty")),
		strings.TrimSpace(c.Query("q")),
	)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

func (h *PublicHandler) GetProfessional(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	out, err := h.directory.Get(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.OK(c, out)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}

	day, err := h.availability.Execute(c.Request.Context(), id, date)

	// sem configuração não é erro: o paciente vê "sem horários"
	if errors.Is(err, domain.ErrConfigurationMissing) {
		c.JSON(http.StatusOK, gin.H{
			"date":   timezone.DateKey(date),
			"status": "no_hours_configured",
			"slots":  []any{},
		})
		return
	}
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    day.Date,
		"weekday": day.Weekday,
		"status":  "ok",
		"slots":   day.Slots,
	})
}

////////////////////////////////////////////////////////
// CREATE APPOINTMENT (ANÔNIMO)
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), apptuc.CreateAppointmentInput{
		ProfessionalID: id,
		PatientName:    strings.TrimSpace(req.PatientName),
		PatientPhone:   strings.TrimSpace(req.PatientPhone),
		PatientEmail:   strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		Date:           req.Date,
		Time:           req.Time,
		Type:           req.Type,
		Notes:          req.Notes,
		Actor:          apptuc.Actor{Role: apptdomain.RolePatient},
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.Created(c, dto.FromAppointment(ap))
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
)

type CalendarHandler struct {
	calendar *apptuc.GetCalendar
	log      *zap.Logger
}

func NewCalendarHandler(calendar *apptuc.GetCalendar, log *zap.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, log: log}
}

// Mine é a agenda do profissional logado.
func (h *CalendarHandler) Mine(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.ProfessionalID == nil {
		httperr.Forbidden(c, "forbidden", "Apenas profissionais têm agenda.")
		return
	}
	h.render(c, *actor.ProfessionalID)
}

func (h *CalendarHandler) ForProfessional(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	h.render(c, id)
}

func (h *CalendarHandler) render(c *gin.Context, professionalID uuid.UUID) {
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}

	out, err := h.calendar.Execute(
		c.Request.Context(),
		professionalID,
		apptuc.View(c.DefaultQuery("view", string(apptuc.ViewDay))),
		date,
	)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.OK(c, out)
}

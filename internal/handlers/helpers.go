package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/timezone"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
	"github.com/conexaomental/clinica-api/internal/validators"
)

// actorFromContext monta o ator a partir do que o AuthMiddleware deixou no contexto.
func actorFromContext(c *gin.Context) apptuc.Actor {
	actor := apptuc.Actor{
		UserID: c.MustGet(middleware.ContextUserID).(uuid.UUID),
		Role:   apptdomain.Role(c.GetString(middleware.ContextUserRole)),
	}
	if v, ok := c.Get(middleware.ContextProfessionalID); ok {
		pid := v.(uuid.UUID)
		actor.ProfessionalID = &pid
	}
	return actor
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON responde 400 com os campos inválidos quando o corpo não passa na validação.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(400, httperr.HTTPError{
			Code:    "invalid_request",
			Message: "Dados inválidos.",
			Details: validators.Details(err),
		})
		return false
	}
	return true
}

// dateQuery lê uma data opcional (YYYY-MM-DD ou dd/mm/yyyy); vazio vira hoje.
func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return timezone.StartOfDay(timezone.Now()), true
	}
	d, err := timezone.ParseDate(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return time.Time{}, false
	}
	return d, true
}

// appointmentFilter lê from/to/status/type da query. to é inclusivo no dia.
func appointmentFilter(c *gin.Context) (apptdomain.Filter, bool) {
	var f apptdomain.Filter

	if raw := c.Query("from"); raw != "" {
		from, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return f, false
		}
		f.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return f, false
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}

	for _, raw := range c.QueryArray("status") {
		s := apptdomain.Status(raw)
		if !s.Valid() {
			httperr.BadRequest(c, "invalid_status", "Status inválido.")
			return f, false
		}
		f.Statuses = append(f.Statuses, s)
	}

	if raw := c.Query("type"); raw != "" {
		typ, err := apptdomain.ParseType(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_type", "Tipo de atendimento inválido.")
			return f, false
		}
		f.Type = typ
	}

	if raw := c.Query("limit"); raw != "" {
		page, limit := pagination(c)
		f.Limit = limit
		f.Offset = (page - 1) * limit
	}

	return f, true
}

// pagination segue o padrão page/limit dos logs de auditoria (limit máx. 200).
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return page, limit
}

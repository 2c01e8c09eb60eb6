package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

type auditLogPage struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Logs  []models.AuditLog `json:"logs"`
}

// List filtra por action, entity, entity_id, user_id, role e período
// (from/to inclusivos, horário da clínica).
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	q := h.db.
		WithContext(c.Request.Context()).
		Model(&models.AuditLog{})

	// --------------------------------------------------
	// Filtros de texto
	// --------------------------------------------------

	for column, value := range map[string]string{
		"action": c.Query("action"),
		"entity": c.Query("entity"),
		"role":   c.Query("role"),
	} {
		if value != "" {
			q = q.Where(column+" = ?", value)
		}
	}

	// --------------------------------------------------
	// Filtros por id
	// --------------------------------------------------

	for _, column := range []string{"user_id", "entity_id"} {
		raw := c.Query(column)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
			return
		}
		q = q.Where(column+" = ?", id)
	}

	// --------------------------------------------------
	// Período
	// --------------------------------------------------

	if raw := c.Query("from"); raw != "" {
		from, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		q = q.Where("created_at >= ?", from)
	}
	if raw := c.Query("to"); raw != "" {
		to, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	out := auditLogPage{Page: page, Limit: limit}

	if err := q.Count(&out.Total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Erro ao contar logs.")
		return
	}

	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out.Logs).Error; err != nil {
		httperr.Internal(c, "audit_list_failed", "Erro ao listar logs.")
		return
	}

	if out.Logs == nil {
		out.Logs = []models.AuditLog{}
	}
	c.JSON(200, out)
}

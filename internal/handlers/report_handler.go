package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paydomain "github.com/conexaomental/clinica-api/internal/domain/payment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/infra/repository"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

type AppointmentCounter interface {
	CountBy(ctx context.Context, column string, from, to time.Time) ([]repository.StatusCount, error)
}

type ReportHandler struct {
	appointments AppointmentCounter
	payments     paydomain.Repository
	log          *zap.Logger
}

func NewReportHandler(appointments AppointmentCounter, payments paydomain.Repository, log *zap.Logger) *ReportHandler {
	return &ReportHandler{appointments: appointments, payments: payments, log: log}
}

// Summary cobre [from, to] em dias locais; sem parâmetros, o mês corrente.
func (h *ReportHandler) Summary(c *gin.Context) {
	today := timezone.StartOfDay(timezone.Now())
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		d, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := timezone.ParseDate(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Data inválida.")
			return
		}
		to = d.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		httperr.BadRequest(c, "invalid_range", "Período inválido.")
		return
	}

	ctx := c.Request.Context()
	groups := map[string][]repository.StatusCount{}
	for _, col := range []string{"status", "type", "professional_id"} {
		counts, err := h.appointments.CountBy(ctx, col, from, to)
		if err != nil {
			httperr.FromError(c, h.log, err)
			return
		}
		if counts == nil {
			counts = []repository.StatusCount{}
		}
		groups[col] = counts
	}

	revenue, err := h.payments.ApprovedRevenue(ctx, from, to)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":            timezone.DateKey(from),
		"to":              timezone.DateKey(to.AddDate(0, 0, -1)),
		"by_status":       groups["status"],
		"by_type":         groups["type"],
		"by_professional": groups["professional_id"],
		"revenue":         revenue,
	})
}

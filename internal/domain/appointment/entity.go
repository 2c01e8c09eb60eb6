package appointment

import (
	"time"

	"github.com/conexaomental/clinica-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// StatusChange carrega o contexto de uma transição já validada.
type StatusChange struct {
	At     time.Time
	Actor  Role
	Reason string
}

// Columns devolve as colunas alteradas pela transição para um UPDATE condicional.
func Columns(to Status, ch StatusChange) map[string]any {
	cols := map[string]any{
		"status":     string(to),
		"updated_at": ch.At,
	}

	switch to {
	case StatusConfirmed:
		cols["confirmed_at"] = ch.At
	case StatusCompleted:
		cols["completed_at"] = ch.At
	case StatusCancelled:
		cols["cancelled_at"] = ch.At
		cols["cancel_reason"] = ch.Reason
	}

	return cols
}

// Apply aplica a transição no modelo em memória, com os mesmos campos de Columns.
func Apply(ap *models.Appointment, to Status, ch StatusChange) {
	at := ch.At
	ap.Status = string(to)
	ap.UpdatedAt = at

	switch to {
	case StatusConfirmed:
		ap.ConfirmedAt = &at
	case StatusCompleted:
		ap.CompletedAt = &at
	case StatusCancelled:
		ap.CancelledAt = &at
		ap.CancelReason = ch.Reason
	}
}

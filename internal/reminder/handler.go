package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/infra/mailer"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// Handler processa reminder:send no worker. O status é relido no momento do
// disparo: agendamento cancelado ou excluído depois do enqueue não gera e-mail.
type Handler struct {
	appts   appointment.Repository
	mail    mailer.Sender
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewHandler(appts appointment.Repository, mail mailer.Sender, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{appts: appts, mail: mail, metrics: m, log: log}
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		h.metrics.RemindersSent.WithLabelValues("invalid").Inc()
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	ap, err := h.appts.GetByID(ctx, p.AppointmentID)
	if errors.Is(err, domain.ErrNotFound) {
		h.metrics.RemindersSent.WithLabelValues("skipped").Inc()
		return nil
	}
	if err != nil {
		return err
	}

	if !appointment.Status(ap.Status).IsActive() || ap.PatientEmail == "" {
		h.metrics.RemindersSent.WithLabelValues("skipped").Inc()
		return nil
	}

	if err := h.mail.Send(ctx, Message(ap)); err != nil {
		h.metrics.RemindersSent.WithLabelValues("failed").Inc()
		h.log.Warn("lembrete não enviado", zap.String("appointment_id", ap.ID.String()), zap.Error(err))
		return err
	}

	h.metrics.RemindersSent.WithLabelValues("sent").Inc()
	return nil
}

// Message monta o e-mail de lembrete.
func Message(ap *models.Appointment) mailer.Message {
	kind := "consulta"
	if appointment.Type(ap.Type) == appointment.TypeFollowUp {
		kind = "sessão de retorno"
	}

	at := ap.ScheduledAt.In(timezone.Clinic())
	body := fmt.Sprintf(
		"Olá, %s!\n\nLembrete da sua %s com %s em %s às %s.\n\n"+
			"Se não puder comparecer, cancele pelo aplicativo para liberar o horário.\n\n"+
			"Clínica Conexão Mental",
		ap.PatientName, kind, ap.Professional.Name,
		timezone.FormatDisplayDate(at), timezone.FormatClock(at),
	)

	return mailer.Message{
		To:      ap.PatientEmail,
		Subject: "Lembrete: " + kind + " em " + timezone.FormatDisplayDate(at),
		Body:    body,
	}
}

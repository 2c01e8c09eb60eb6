package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

type TransitionInput struct {
	AppointmentID uuid.UUID
	To            apptdomain.Status
	Actor         Actor
	Reason        string
}

// TransitionAppointment move um agendamento pela máquina de estados:
// valida posse, tabela e papel, e grava com UPDATE condicional.
type TransitionAppointment struct {
	repo    apptdomain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTransitionAppointment(
	repo apptdomain.Repository,
	audit audit.Recorder,
	m *metrics.Metrics,
) *TransitionAppointment {
	return &TransitionAppointment{
		repo:    repo,
		audit:   audit,
		metrics: m,
		now:     timezone.Now,
	}
}

func (uc *TransitionAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	// quem não é dono não descobre que o id existe
	if !in.Actor.Owns(ap) {
		return nil, domain.ErrNotFound
	}

	from := apptdomain.Status(ap.Status)
	if err := apptdomain.Transition(from, in.To, in.Actor.Role); err != nil {
		uc.record(in.To, err)
		return nil, err
	}

	updated, err := uc.repo.UpdateStatus(ctx, ap.ID, from, in.To, apptdomain.StatusChange{
		At:     uc.now(),
		Actor:  in.Actor.Role,
		Reason: in.Reason,
	})
	uc.record(in.To, err)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		strings.ReplaceAll(string(apptdomain.EventFor(in.To)), ".", "_"),
		"appointment",
		ap.ID,
		map[string]any{"from": from, "to": in.To, "reason": in.Reason},
	))

	return updated, nil
}

func (uc *TransitionAppointment) record(to apptdomain.Status, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidTransition):
		result = "invalid"
	case errors.Is(err, domain.ErrTransitionForbidden):
		result = "forbidden"
	default:
		result = "error"
	}
	uc.metrics.StatusTransitions.WithLabelValues(string(to), result).Inc()
}

package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/infra/redislock"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ProfessionalID uuid.UUID

	PatientID    *uuid.UUID
	PatientName  string
	PatientPhone string
	PatientEmail string

	Date  string
	Time  string
	Type  string
	Notes string

	Actor Actor
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo       apptdomain.Repository
	locker     redislock.Locker
	audit      audit.Recorder
	metrics    *metrics.Metrics
	minAdvance time.Duration
	now        func() time.Time
}

func NewCreateAppointment(
	repo apptdomain.Repository,
	locker redislock.Locker,
	audit audit.Recorder,
	m *metrics.Metrics,
	minAdvance time.Duration,
) *CreateAppointment {
	return &CreateAppointment{
		repo:       repo,
		locker:     locker,
		audit:      audit,
		metrics:    m,
		minAdvance: minAdvance,
		now:        timezone.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Profissional aprovado
	// --------------------------------------------------
	pro, err := uc.repo.GetProfessional(ctx, in.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !professional.Bookable(professional.Status(pro.Status), pro.Approved) {
		return nil, httperr.ErrBusiness("professional_unavailable")
	}

	// --------------------------------------------------
	// 2️⃣ Data / hora no fuso da clínica
	// --------------------------------------------------
	start, err := timezone.ParseDateTime(in.Date, in.Time)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	typ, err := apptdomain.ParseType(in.Type)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_type")
	}

	// --------------------------------------------------
	// 3️⃣ Antecedência mínima
	// --------------------------------------------------
	if start.Before(uc.now().Add(uc.minAdvance)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 4️⃣ Horário precisa estar na grade resolvida
	// --------------------------------------------------
	res := availability.Resolve(pro.Availability, timezone.StartOfDay(start))
	if !res.Contains(timezone.FormatClock(start)) {
		uc.conflict(in, pro.ID, start, "outside_availability")
		return nil, fmt.Errorf("%s %s not offered: %w", res.Date, in.Time, domain.ErrSlotUnavailable)
	}

	// --------------------------------------------------
	// 5️⃣ Reserva: lock por horário + índice único no banco
	// --------------------------------------------------
	ap := &models.Appointment{
		ID:             uuid.New(),
		ProfessionalID: pro.ID,
		PatientID:      in.PatientID,
		PatientName:    in.PatientName,
		PatientPhone:   in.PatientPhone,
		PatientEmail:   in.PatientEmail,
		ScheduledAt:    start,
		Status:         string(apptdomain.InitialStatus()),
		Type:           string(typ),
		Notes:          in.Notes,
	}

	err = uc.locker.WithSlotLock(ctx, pro.ID, start, func(ctx context.Context) error {
		return uc.repo.Create(ctx, ap)
	})
	if errors.Is(err, redislock.ErrLockNotAcquired) {
		err = fmt.Errorf("slot locked: %w", domain.ErrSlotUnavailable)
	}
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			uc.conflict(in, pro.ID, start, "taken")
		}
		return nil, err
	}
	ap.Professional = *pro

	// --------------------------------------------------
	// 6️⃣ Métricas + auditoria
	// --------------------------------------------------
	uc.metrics.BookingsCreated.WithLabelValues(string(typ)).Inc()

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		"appointment_created",
		"appointment",
		ap.ID,
		map[string]any{"scheduled_at": start, "type": typ},
	))

	return ap, nil
}

func (uc *CreateAppointment) conflict(in CreateAppointmentInput, professionalID uuid.UUID, start time.Time, reason string) {
	uc.metrics.BookingConflicts.Inc()

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		"appointment_conflict",
		"professional",
		professionalID,
		map[string]any{"scheduled_at": start, "reason": reason},
	))
}

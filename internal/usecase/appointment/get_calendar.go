package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/calendar"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

type CalendarResult struct {
	View       View            `json:"view"`
	Configured bool            `json:"configured"`
	Day        *calendar.Day   `json:"day,omitempty"`
	Week       *calendar.Week  `json:"week,omitempty"`
	Month      *calendar.Month `json:"month,omitempty"`
}

// GetCalendar é a visão do profissional (e do admin) sobre a agenda.
// Recalcula tudo a cada chamada.
type GetCalendar struct {
	repo      apptdomain.Repository
	projector *calendar.Projector
}

func NewGetCalendar(repo apptdomain.Repository) *GetCalendar {
	return &GetCalendar{
		repo:      repo,
		projector: calendar.NewProjector(timezone.Clinic()),
	}
}

func (uc *GetCalendar) Execute(
	ctx context.Context,
	professionalID uuid.UUID,
	view View,
	date time.Time,
) (*CalendarResult, error) {

	pro, err := uc.repo.GetProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	from := timezone.StartOfDay(date)
	var to time.Time

	switch view {
	case ViewDay, "":
		view = ViewDay
		to = from.AddDate(0, 0, 1)
	case ViewWeek:
		to = from.AddDate(0, 0, 7)
	case ViewMonth:
		from = time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
		to = from.AddDate(0, 1, 0)
	default:
		return nil, httperr.ErrBusiness("invalid_view")
	}

	aps, err := uc.repo.ListByProfessional(ctx, pro.ID, apptdomain.Filter{
		From: &from,
		To:   &to,
		Statuses: []apptdomain.Status{
			apptdomain.StatusScheduled,
			apptdomain.StatusConfirmed,
			apptdomain.StatusCompleted,
		},
	})
	if err != nil {
		return nil, err
	}

	out := &CalendarResult{View: view, Configured: !pro.Availability.IsEmpty()}

	switch view {
	case ViewDay:
		d := uc.projector.Day(pro.Availability, from, aps)
		out.Day = &d
	case ViewWeek:
		w := uc.projector.Week(pro.Availability, from, aps)
		out.Week = &w
	case ViewMonth:
		m := uc.projector.Month(pro.Availability, from, aps)
		out.Month = &m
	}

	return out, nil
}

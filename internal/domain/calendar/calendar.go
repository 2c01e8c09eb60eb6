package calendar

import (
	"sort"
	"time"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/models"
)

type CellState string

const (
	CellFree       CellState = "free"
	CellOccupied   CellState = "occupied"
	CellNotOffered CellState = "not_offered"

	// oferecido, mas já passou do limite de antecedência
	CellPast CellState = "past"
)

type Slot struct {
	Time        string              `json:"time"`
	Available   bool                `json:"available"`
	State       CellState           `json:"state"`
	Offered     bool                `json:"offered"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

type Day struct {
	Date    string               `json:"date"`
	Weekday availability.Weekday `json:"weekday"`
	Source  availability.Source  `json:"source"`
	Slots   []Slot               `json:"slots"`
}

type Week struct {
	Start string   `json:"start"`
	Times []string `json:"times"`
	Days  []Day    `json:"days"`
}

type Month struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []Day `json:"days"`
}

// Projector cruza a grade resolvida com os agendamentos. É puro: recalcula
// tudo a cada chamada a partir do documento e da lista recebida.
type Projector struct {
	loc *time.Location
}

func NewProjector(loc *time.Location) *Projector {
	return &Projector{loc: loc}
}

func (p *Projector) dateKey(t time.Time) string {
	return t.In(p.loc).Format("2006-01-02")
}

func (p *Projector) clock(t time.Time) string {
	return t.In(p.loc).Format("15:04")
}

// agrupa agendamentos ativos por data e horário
func (p *Projector) index(appointments []models.Appointment) map[string]map[string]*models.Appointment {
	idx := make(map[string]map[string]*models.Appointment)
	for i := range appointments {
		ap := &appointments[i]
		if appointment.Status(ap.Status) == appointment.StatusCancelled {
			continue
		}
		key := p.dateKey(ap.ScheduledAt)
		if idx[key] == nil {
			idx[key] = make(map[string]*models.Appointment)
		}
		idx[key][p.clock(ap.ScheduledAt)] = ap
	}
	return idx
}

// Day projeta um único dia. Agendamentos em horários que deixaram de ser
// oferecidos aparecem como ocupados e fora da grade.
func (p *Projector) Day(cfg *availability.Config, date time.Time, appointments []models.Appointment) Day {
	return p.day(cfg, p.midnight(date), p.index(appointments), nil)
}

// Week projeta 7 dias a partir de start. As linhas são a união dos horários
// de todos os dias, e o dia que não oferece um horário recebe not_offered.
func (p *Projector) Week(cfg *availability.Config, start time.Time, appointments []models.Appointment) Week {
	start = p.midnight(start)
	idx := p.index(appointments)

	resolved := make([]availability.Resolution, 7)
	union := map[string]struct{}{}

	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		resolved[i] = availability.Resolve(cfg, d)
		for _, s := range resolved[i].Slots {
			union[s] = struct{}{}
		}
		for clock := range idx[p.dateKey(d)] {
			union[clock] = struct{}{}
		}
	}

	times := make([]string, 0, len(union))
	for t := range union {
		times = append(times, t)
	}
	sort.Strings(times)

	week := Week{Start: p.dateKey(start), Times: times}
	for i := 0; i < 7; i++ {
		week.Days = append(week.Days, p.build(resolved[i], idx[resolved[i].Date], times))
	}
	return week
}

// Month projeta todos os dias do mês de ref.
func (p *Projector) Month(cfg *availability.Config, ref time.Time, appointments []models.Appointment) Month {
	ref = ref.In(p.loc)
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, p.loc)
	idx := p.index(appointments)

	m := Month{Year: first.Year(), Month: int(first.Month())}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		m.Days = append(m.Days, p.day(cfg, d, idx, nil))
	}
	return m
}

func (p *Projector) day(cfg *availability.Config, date time.Time, idx map[string]map[string]*models.Appointment, rows []string) Day {
	res := availability.Resolve(cfg, date)
	return p.build(res, idx[res.Date], rows)
}

func (p *Projector) build(res availability.Resolution, booked map[string]*models.Appointment, rows []string) Day {
	offered := make(map[string]bool, len(res.Slots))
	for _, s := range res.Slots {
		offered[s] = true
	}

	if rows == nil {
		rows = mergeRows(res.Slots, booked)
	}

	day := Day{Date: res.Date, Weekday: res.Weekday, Source: res.Source, Slots: make([]Slot, 0, len(rows))}
	seen := map[string]bool{}

	for _, t := range rows {
		// a lista customizada pode repetir horários; a grade mostra uma linha por horário
		if seen[t] {
			continue
		}
		seen[t] = true

		slot := Slot{Time: t, Offered: offered[t]}
		switch ap := booked[t]; {
		case ap != nil:
			slot.State = CellOccupied
			slot.Appointment = ap
		case offered[t]:
			slot.State = CellFree
			slot.Available = true
		default:
			slot.State = CellNotOffered
		}
		day.Slots = append(day.Slots, slot)
	}

	return day
}

func mergeRows(slots []string, booked map[string]*models.Appointment) []string {
	rows := append([]string(nil), slots...)
	for t := range booked {
		rows = append(rows, t)
	}
	sort.Strings(rows)
	return rows
}

func (p *Projector) midnight(t time.Time) time.Time {
	t = t.In(p.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
}

package availability

import "time"

const SlotStep = 30 // minutos

type Source string

const (
	SourceCustom       Source = "custom"
	SourceWeekly       Source = "weekly"
	SourceClosed       Source = "closed"
	SourceUnconfigured Source = "unconfigured"
)

type Resolution struct {
	Date    string   `json:"date"`
	Weekday Weekday  `json:"weekday"`
	Source  Source   `json:"source"`
	Slots   []string `json:"slots"`
}

func (r Resolution) Configured() bool {
	return r.Source != SourceUnconfigured
}

// Resolve devolve os horários candidatos do dia, sem cruzar com agendamentos.
//
// A lista customizada da data, quando não vazia, substitui o padrão semanal.
// Lista vazia vale o mesmo que ausente. O padrão semanal gera cada HH:00 e
// HH:30 a partir de startTime e estritamente antes da hora cheia de endTime.
//
// A data é lida no fuso em que chega; quem chama já entrega no fuso da clínica.
func Resolve(cfg *Config, date time.Time) Resolution {
	res := Resolution{
		Date:    date.Format("2006-01-02"),
		Weekday: WeekdayOf(date),
		Slots:   []string{},
	}

	if cfg.IsEmpty() {
		res.Source = SourceUnconfigured
		return res
	}

	if custom := cfg.CustomTimeSlots[res.Date]; len(custom) > 0 {
		res.Source = SourceCustom
		res.Slots = sortedCopy(custom)
		return res
	}

	res.Source = SourceClosed

	h, ok := cfg.Weekdays[res.Weekday]
	if !ok || !h.Available {
		return res
	}

	slots := WeeklySlots(h)
	if len(slots) > 0 {
		res.Source = SourceWeekly
		res.Slots = slots
	}
	return res
}

// WeeklySlots expande um DayHours na grade de meia em meia hora.
// Horários malformados resultam em dia fechado.
func WeeklySlots(h DayHours) []string {
	slots := []string{}
	if !h.Available {
		return slots
	}

	start, err := parseClock(h.StartTime)
	if err != nil {
		return slots
	}
	end, err := parseClock(h.EndTime)
	if err != nil {
		return slots
	}

	boundary := (end / 60) * 60

	first := ((start + SlotStep - 1) / SlotStep) * SlotStep
	for m := first; m < boundary; m += SlotStep {
		slots = append(slots, formatClock(m))
	}
	return slots
}

// Contains informa se o horário HH:MM está entre os resolvidos.
func (r Resolution) Contains(clock string) bool {
	for _, s := range r.Slots {
		if s == clock {
			return true
		}
	}
	return false
}

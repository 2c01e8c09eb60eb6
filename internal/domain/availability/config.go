package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ===============================
// Weekday
// ===============================

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var byTimeWeekday = [...]Weekday{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// nomes aceitos na leitura do documento (o front antigo grava em português)
var weekdayAliases = map[string]Weekday{
	"monday":        Monday,
	"segunda":       Monday,
	"segunda-feira": Monday,
	"tuesday":       Tuesday,
	"terça":         Tuesday,
	"terca":         Tuesday,
	"terça-feira":   Tuesday,
	"terca-feira":   Tuesday,
	"wednesday":     Wednesday,
	"quarta":        Wednesday,
	"quarta-feira":  Wednesday,
	"thursday":      Thursday,
	"quinta":        Thursday,
	"quinta-feira":  Thursday,
	"friday":        Friday,
	"sexta":         Friday,
	"sexta-feira":   Friday,
	"saturday":      Saturday,
	"sábado":        Saturday,
	"sabado":        Saturday,
	"sunday":        Sunday,
	"domingo":       Sunday,
}

func WeekdayOf(t time.Time) Weekday {
	return byTimeWeekday[t.Weekday()]
}

func ParseWeekday(name string) (Weekday, bool) {
	wd, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// ===============================
// Config
// ===============================

type DayHours struct {
	Available bool   `json:"available"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Config é o documento de disponibilidade do profissional: horário padrão por
// dia da semana e listas explícitas por data que substituem o padrão daquele dia.
type Config struct {
	Weekdays        map[Weekday]DayHours
	CustomTimeSlots map[string][]string
}

const customSlotsKey = "customTimeSlots"

func (c Config) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(c.Weekdays)+1)
	for wd, h := range c.Weekdays {
		doc[string(wd)] = h
	}
	if len(c.CustomTimeSlots) > 0 {
		doc[customSlotsKey] = c.CustomTimeSlots
	}
	return json.Marshal(doc)
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Weekdays = make(map[Weekday]DayHours)
	c.CustomTimeSlots = nil

	for key, value := range raw {
		if key == customSlotsKey {
			if err := json.Unmarshal(value, &c.CustomTimeSlots); err != nil {
				return fmt.Errorf("customTimeSlots: %w", err)
			}
			continue
		}

		wd, ok := ParseWeekday(key)
		if !ok {
			continue
		}

		var h DayHours
		if err := json.Unmarshal(value, &h); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.Weekdays[wd] = h
	}

	return nil
}

func (c *Config) IsEmpty() bool {
	return c == nil || (len(c.Weekdays) == 0 && len(c.CustomTimeSlots) == 0)
}

// ===============================
// Validation
// ===============================

var (
	ErrInvalidClock = errors.New("invalid clock time")
	ErrInvalidRange = errors.New("start time must be before end time")
	ErrInvalidDate  = errors.New("invalid custom slot date")
)

// Validate é chamado antes de persistir; o resolver tolera documentos
// inválidos vindos do banco, mas a escrita não.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}

	for wd, h := range c.Weekdays {
		if !h.Available {
			continue
		}
		start, err := parseClock(h.StartTime)
		if err != nil {
			return fmt.Errorf("%s startTime: %w", wd, ErrInvalidClock)
		}
		end, err := parseClock(h.EndTime)
		if err != nil {
			return fmt.Errorf("%s endTime: %w", wd, ErrInvalidClock)
		}
		if start >= end {
			return fmt.Errorf("%s: %w", wd, ErrInvalidRange)
		}
	}

	for date, slots := range c.CustomTimeSlots {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("%s: %w", date, ErrInvalidDate)
		}
		for _, s := range slots {
			if _, err := parseClock(s); err != nil {
				return fmt.Errorf("%s %q: %w", date, s, ErrInvalidClock)
			}
		}
	}

	return nil
}

// Clone devolve uma cópia profunda, usada pelo fluxo de atualização para
// comparar o documento antigo com o novo.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{Weekdays: make(map[Weekday]DayHours, len(c.Weekdays))}
	for k, v := range c.Weekdays {
		out.Weekdays[k] = v
	}
	if c.CustomTimeSlots != nil {
		out.CustomTimeSlots = make(map[string][]string, len(c.CustomTimeSlots))
		for k, v := range c.CustomTimeSlots {
			out.CustomTimeSlots[k] = append([]string(nil), v...)
		}
	}
	return out
}

// minutos desde a meia-noite. Só aceita HH:MM com dois dígitos: os horários
// são comparados como texto no resto do sistema.
func parseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

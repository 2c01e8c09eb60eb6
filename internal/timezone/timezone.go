package timezone

import (
	"errors"
	"time"
)

const DefaultTimezone = "America/Sao_Paulo"

const (
	ISODate     = "2006-01-02"
	DisplayDate = "02/01/2006"
	ClockTime   = "15:04"
)

var ErrInvalidDate = errors.New("invalid date")

var clinic = Location(DefaultTimezone)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetClinic define o fuso usado para interpretar datas e horários locais.
// Chamado uma vez no boot.
func SetClinic(tz string) {
	clinic = Location(tz)
}

func Clinic() *time.Location {
	return clinic
}

func Now() time.Time {
	return time.Now().In(clinic)
}

// ParseDate aceita YYYY-MM-DD e dd/mm/yyyy e devolve a meia-noite local.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{ISODate, DisplayDate} {
		if d, err := time.ParseInLocation(layout, s, clinic); err == nil {
			return d, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ParseDateTime combina data e HH:MM num instante no fuso da clínica.
func ParseDateTime(date, clock string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(ClockTime, clock)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, clinic), nil
}

func StartOfDay(t time.Time) time.Time {
	t = t.In(clinic)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, clinic)
}

// DayBounds devolve [início, fim) do dia local que contém t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

func DateKey(t time.Time) string {
	return t.In(clinic).Format(ISODate)
}

func FormatDisplayDate(t time.Time) string {
	return t.In(clinic).Format(DisplayDate)
}

func FormatClock(t time.Time) string {
	return t.In(clinic).Format(ClockTime)
}

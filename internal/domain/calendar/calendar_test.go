package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/models"
)

var sp = mustLoad("America/Sao_Paulo")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// 2025-07-14 é segunda-feira
func at(day, hour, minute int) time.Time {
	return time.Date(2025, 7, day, hour, minute, 0, 0, sp)
}

func TestDay_MondayScenario(t *testing.T) {
	cfg := &availability.Config{
		Weekdays: map[availability.Weekday]availability.DayHours{
			availability.Monday: {Available: true, StartTime: "09:00", EndTime: "10:00"},
		},
	}
	aps := []models.Appointment{
		{PatientName: "Ana", ScheduledAt: at(14, 9, 0), Status: "agendado"},
	}

	day := NewProjector(sp).Day(cfg, at(14, 0, 0), aps)

	require.Len(t, day.Slots, 2)
	assert.Equal(t, "09:00", day.Slots[0].Time)
	assert.Equal(t, CellOccupied, day.Slots[0].State)
	assert.False(t, day.Slots[0].Available)
	assert.Equal(t, "Ana", day.Slots[0].Appointment.PatientName)

	assert.Equal(t, "09:30", day.Slots[1].Time)
	assert.Equal(t, CellFree, day.Slots[1].State)
	assert.True(t, day.Slots[1].Available)
}

func TestDay_CancelledDoesNotOccupy(t *testing.T) {
	cfg := &availability.Config{
		CustomTimeSlots: map[string][]string{"2025-07-14": {"14:00"}},
	}
	aps := []models.Appointment{
		{ScheduledAt: at(14, 14, 0), Status: "cancelado"},
	}

	day := NewProjector(sp).Day(cfg, at(14, 8, 0), aps)

	require.Len(t, day.Slots, 1)
	assert.True(t, day.Slots[0].Available)
}

func TestDay_AppointmentOutsideGridStillShown(t *testing.T) {
	cfg := &availability.Config{
		CustomTimeSlots: map[string][]string{"2025-07-14": {"09:00"}},
	}
	aps := []models.Appointment{
		{ScheduledAt: at(14, 16, 0), Status: "confirmado"},
	}

	day := NewProjector(sp).Day(cfg, at(14, 0, 0), aps)

	require.Len(t, day.Slots, 2)
	assert.Equal(t, "16:00", day.Slots[1].Time)
	assert.Equal(t, CellOccupied, day.Slots[1].State)
	assert.False(t, day.Slots[1].Offered)
}

func TestDay_Unconfigured(t *testing.T) {
	day := NewProjector(sp).Day(nil, at(14, 0, 0), nil)

	assert.Equal(t, availability.SourceUnconfigured, day.Source)
	assert.Empty(t, day.Slots)
}

func TestWeek_UnionOfTimes(t *testing.T) {
	cfg := &availability.Config{
		Weekdays: map[availability.Weekday]availability.DayHours{
			availability.Monday:  {Available: true, StartTime: "09:00", EndTime: "10:00"},
			availability.Tuesday: {Available: true, StartTime: "14:00", EndTime: "15:00"},
		},
	}

	week := NewProjector(sp).Week(cfg, at(14, 0, 0), nil)

	assert.Equal(t, []string{"09:00", "09:30", "14:00", "14:30"}, week.Times)
	require.Len(t, week.Days, 7)

	for _, d := range week.Days {
		assert.Len(t, d.Slots, 4, d.Date)
	}

	mon, tue, wed := week.Days[0], week.Days[1], week.Days[2]
	assert.Equal(t, CellFree, mon.Slots[0].State)
	assert.Equal(t, CellNotOffered, mon.Slots[2].State)
	assert.Equal(t, CellNotOffered, tue.Slots[0].State)
	assert.Equal(t, CellFree, tue.Slots[3].State)
	assert.Equal(t, CellNotOffered, wed.Slots[0].State)
}

func TestMonth_CoversWholeMonth(t *testing.T) {
	cfg := &availability.Config{
		Weekdays: map[availability.Weekday]availability.DayHours{
			availability.Monday: {Available: true, StartTime: "09:00", EndTime: "10:00"},
		},
	}

	month := NewProjector(sp).Month(cfg, at(20, 0, 0), nil)

	assert.Equal(t, 7, month.Month)
	require.Len(t, month.Days, 31)
	assert.Equal(t, "2025-07-01", month.Days[0].Date)

	mondays := 0
	for _, d := range month.Days {
		if d.Weekday == availability.Monday {
			mondays++
			assert.Len(t, d.Slots, 2)
		}
	}
	assert.Equal(t, 4, mondays)
}

package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/domain/calendar"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

func newAvailability(repo *memoryRepo) *GetAvailability {
	uc := NewGetAvailability(repo, time.Hour)
	uc.now = clock
	return uc
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timezone.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestGetAvailability_MarksBookedSlot(t *testing.T) {
	repo, _, ap, _ := booked(t)

	day, err := newAvailability(repo).Execute(context.Background(), ap.ProfessionalID, date(t, "2025-07-14"))
	require.NoError(t, err)

	require.Len(t, day.Slots, 2)
	assert.Equal(t, "09:00", day.Slots[0].Time)
	assert.False(t, day.Slots[0].Available)
	assert.Nil(t, day.Slots[0].Appointment)
	assert.Equal(t, "09:30", day.Slots[1].Time)
	assert.True(t, day.Slots[1].Available)
}

func TestGetAvailability_MissingConfiguration(t *testing.T) {
	pro := approvedProfessional()
	pro.Availability = nil
	repo := newMemoryRepo(pro)

	_, err := newAvailability(repo).Execute(context.Background(), pro.ID, date(t, "2025-07-14"))
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestGetAvailability_PendingProfessionalHidden(t *testing.T) {
	pro := approvedProfessional()
	pro.Status = "pending"
	pro.Approved = false
	repo := newMemoryRepo(pro)

	_, err := newAvailability(repo).Execute(context.Background(), pro.ID, date(t, "2025-07-14"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAvailability_CutoffMarksPast(t *testing.T) {
	pro := approvedProfessional()
	pro.Availability.CustomTimeSlots["2025-07-11"] = []string{"08:30", "10:00"}
	repo := newMemoryRepo(pro)

	day, err := newAvailability(repo).Execute(context.Background(), pro.ID, date(t, "11/07/2025"))
	require.NoError(t, err)

	require.Len(t, day.Slots, 2)
	assert.Equal(t, calendar.CellPast, day.Slots[0].State)
	assert.False(t, day.Slots[0].Available)
	assert.Equal(t, calendar.CellFree, day.Slots[1].State)
}

func TestGetCalendar_Views(t *testing.T) {
	repo, pro, _, _ := booked(t)
	uc := NewGetCalendar(repo)
	ctx := context.Background()

	res, err := uc.Execute(ctx, pro.ID, ViewDay, date(t, "2025-07-14"))
	require.NoError(t, err)
	require.NotNil(t, res.Day)
	assert.True(t, res.Configured)
	assert.Equal(t, calendar.CellOccupied, res.Day.Slots[0].State)
	assert.NotNil(t, res.Day.Slots[0].Appointment)

	res, err = uc.Execute(ctx, pro.ID, ViewWeek, date(t, "2025-07-14"))
	require.NoError(t, err)
	require.NotNil(t, res.Week)
	assert.Len(t, res.Week.Days, 7)
	assert.Contains(t, res.Week.Times, "14:00")

	res, err = uc.Execute(ctx, pro.ID, ViewMonth, date(t, "2025-07-20"))
	require.NoError(t, err)
	require.NotNil(t, res.Month)
	assert.Len(t, res.Month.Days, 31)

	_, err = uc.Execute(ctx, pro.ID, "year", date(t, "2025-07-14"))
	assert.True(t, httperr.IsBusiness(err, "invalid_view"))
}

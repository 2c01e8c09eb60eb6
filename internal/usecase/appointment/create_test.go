package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/httperr"
)

func bookingInput(professionalID uuid.UUID, date, clock string) CreateAppointmentInput {
	pt := patient()
	return CreateAppointmentInput{
		ProfessionalID: professionalID,
		PatientID:      &pt.UserID,
		PatientName:    "João",
		PatientEmail:   "joao@example.com",
		Date:           date,
		Time:           clock,
		Actor:          pt,
	}
}

func TestCreate_BooksOfferedSlot(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)

	ap, err := newCreate(repo).Execute(context.Background(), bookingInput(pro.ID, "2025-07-14", "09:30"))
	require.NoError(t, err)

	assert.Equal(t, "agendado", ap.Status)
	assert.Equal(t, "consulta", ap.Type)
	assert.Equal(t, 9, ap.ScheduledAt.Hour())
	assert.Equal(t, 30, ap.ScheduledAt.Minute())
	assert.Equal(t, []apptdomain.EventName{apptdomain.EventCreated}, repo.eventNames())
}

func TestCreate_AcceptsDisplayDate(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)

	_, err := newCreate(repo).Execute(context.Background(), bookingInput(pro.ID, "15/07/2025", "14:00"))
	assert.NoError(t, err)
}

func TestCreate_SlotOutsideGrid(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)

	// terça tem lista customizada só com 14:00; o padrão de segunda não vale
	_, err := newCreate(repo).Execute(context.Background(), bookingInput(pro.ID, "2025-07-15", "09:00"))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

	// segunda termina às 10:00, exclusivo
	_, err = newCreate(repo).Execute(context.Background(), bookingInput(pro.ID, "2025-07-14", "10:00"))
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
}

func TestCreate_ConcurrentDoubleBooking(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)
	uc := newCreate(repo)

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), bookingInput(pro.ID, "2025-07-14", "09:00"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	}
	assert.Equal(t, 1, ok)
}

func TestCreate_FollowUpTypePreserved(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)

	in := bookingInput(pro.ID, "2025-07-14", "09:00")
	in.Type = "retorno"

	ap, err := newCreate(repo).Execute(context.Background(), in)
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "retorno", stored.Type)
}

func TestCreate_Rejections(t *testing.T) {
	pro := approvedProfessional()
	suspended := approvedProfessional()
	suspended.Status = "suspended"
	repo := newMemoryRepo(pro, suspended)
	uc := newCreate(repo)
	ctx := context.Background()

	_, err := uc.Execute(ctx, bookingInput(suspended.ID, "2025-07-14", "09:00"))
	assert.True(t, httperr.IsBusiness(err, "professional_unavailable"))

	_, err = uc.Execute(ctx, bookingInput(pro.ID, "14-07-2025", "09:00"))
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))

	// antes do limite de antecedência (agora + 1h)
	_, err = uc.Execute(ctx, bookingInput(pro.ID, "2025-07-11", "08:30"))
	assert.True(t, httperr.IsBusiness(err, "too_soon"))

	in := bookingInput(pro.ID, "2025-07-14", "09:00")
	in.Type = "urgencia"
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "invalid_type"))

	_, err = uc.Execute(ctx, bookingInput(uuid.New(), "2025-07-14", "09:00"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_CancelledSlotIsBookableAgain(t *testing.T) {
	pro := approvedProfessional()
	repo := newMemoryRepo(pro)
	ctx := context.Background()

	in := bookingInput(pro.ID, "2025-07-14", "09:00")
	first, err := newCreate(repo).Execute(ctx, in)
	require.NoError(t, err)

	_, err = newTransition(repo).Execute(ctx, TransitionInput{
		AppointmentID: first.ID,
		To:            apptdomain.StatusCancelled,
		Actor:         in.Actor,
	})
	require.NoError(t, err)

	_, err = newCreate(repo).Execute(ctx, bookingInput(pro.ID, "2025-07-14", "09:00"))
	assert.NoError(t, err)
}

package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/models"
)

type Filter struct {
	From     *time.Time
	To       *time.Time
	Statuses []Status
	Type     Type

	Limit  int
	Offset int
}

// Repository é o AppointmentStore. Toda mutação bem-sucedida grava o evento
// de domínio correspondente na mesma transação.
type Repository interface {
	// -------- Professional --------
	GetProfessional(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Professional, error)

	// -------- Appointment (create) --------

	// Create insere com status inicial. Colisão com agendamento ativo no
	// mesmo (profissional, instante) retorna domain.ErrSlotUnavailable.
	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Appointment (read) --------
	GetByID(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Appointment, error)

	ListByProfessional(
		ctx context.Context,
		professionalID uuid.UUID,
		f Filter,
	) ([]models.Appointment, error)

	ListByPatient(
		ctx context.Context,
		patientID uuid.UUID,
		f Filter,
	) ([]models.Appointment, error)

	ListAll(
		ctx context.Context,
		f Filter,
	) ([]models.Appointment, error)

	// -------- Appointment (state change) --------

	// UpdateStatus só aplica se o status atual ainda for from.
	// Sem linha afetada: domain.ErrNotFound ou domain.ErrInvalidTransition.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		from Status,
		to Status,
		ch StatusChange,
	) (*models.Appointment, error)

	// Delete é a exclusão administrativa; não passa pela máquina de estados.
	Delete(
		ctx context.Context,
		id uuid.UUID,
	) error
}

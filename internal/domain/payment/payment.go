package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/models"
)

type Method string

const (
	MethodPix  Method = "pix"
	MethodCard Method = "card"
)

func (m Method) Valid() bool {
	return m == MethodPix || m == MethodCard
}

// status devolvidos pelo Mercado Pago
const (
	StatusPending   = "pending"
	StatusInProcess = "in_process"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByProviderID(ctx context.Context, providerID int) (*models.Payment, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, detail string, paidAt *time.Time) error
	HasApproved(ctx context.Context, appointmentID uuid.UUID) (bool, error)
	ApprovedRevenue(ctx context.Context, from, to time.Time) (float64, error)
}

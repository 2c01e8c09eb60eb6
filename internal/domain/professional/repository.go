package professional

import (
	"context"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/models"
)

type ListFilter struct {
	Status    Status
	Specialty string
	Search    string
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error)
	List(ctx context.Context, f ListFilter) ([]models.Professional, error)

	UpdateProfile(ctx context.Context, p *models.Professional) error
	UpdateAvailability(ctx context.Context, id uuid.UUID, cfg *availability.Config) error

	// UpdateStatus só aplica se o status atual ainda for from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/models"
)

type RecordingGormRepository struct {
	db *gorm.DB
}

func NewRecordingGormRepository(db *gorm.DB) *RecordingGormRepository {
	return &RecordingGormRepository{db: db}
}

func (r *RecordingGormRepository) Create(ctx context.Context, rec *models.Recording) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *RecordingGormRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.Recording, error) {
	var out []models.Recording
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

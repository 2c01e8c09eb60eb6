package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	"github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/models"
)

type ProfessionalGormRepository struct {
	db *gorm.DB
}

func NewProfessionalGormRepository(db *gorm.DB) *ProfessionalGormRepository {
	return &ProfessionalGormRepository{db: db}
}

func (r *ProfessionalGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	var p models.Professional
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProfessionalGormRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Professional, error) {
	var p models.Professional
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProfessionalGormRepository) List(ctx context.Context, f professional.ListFilter) ([]models.Professional, error) {
	q := r.db.WithContext(ctx).Model(&models.Professional{})

	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Specialty != "" {
		// specialties é jsonb ["Ansiedade", ...]
		needle, _ := json.Marshal([]string{f.Specialty})
		q = q.Where("specialties @> ?::jsonb", string(needle))
	}
	if f.Search != "" {
		q = q.Where("name ILIKE ?", "%"+f.Search+"%")
	}

	var out []models.Professional
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProfessionalGormRepository) UpdateProfile(ctx context.Context, p *models.Professional) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("name", "crp", "specialties", "bio", "photo_key", "session_price").
		Updates(p).Error
}

func (r *ProfessionalGormRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, cfg *availability.Config) error {
	res := r.db.WithContext(ctx).
		Model(&models.Professional{ID: id}).
		Select("availability").
		Updates(&models.Professional{Availability: cfg})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfessionalGormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to professional.Status) error {
	res := r.db.WithContext(ctx).
		Model(&models.Professional{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":   string(to),
			"approved": to == professional.StatusApproved,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var p models.Professional
		if err := r.db.WithContext(ctx).Select("id").First(&p, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

var _ professional.Repository = (*ProfessionalGormRepository)(nil)

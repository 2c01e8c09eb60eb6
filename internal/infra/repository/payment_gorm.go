package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/domain/payment"
	"github.com/conexaomental/clinica-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentGormRepository) GetByProviderID(ctx context.Context, providerID int) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentGormRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]models.Payment, error) {
	var out []models.Payment
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, detail string, paidAt *time.Time) error {
	cols := map[string]any{
		"status":        status,
		"status_detail": detail,
	}
	if paidAt != nil {
		cols["paid_at"] = *paidAt
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *PaymentGormRepository) HasApproved(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("appointment_id = ? AND status = ?", appointmentID, payment.StatusApproved).
		Count(&count).Error
	return count > 0, err
}

// ApprovedRevenue soma pagamentos aprovados com paid_at em [from, to).
func (r *PaymentGormRepository) ApprovedRevenue(ctx context.Context, from, to time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ? AND paid_at >= ? AND paid_at < ?", payment.StatusApproved, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

var _ payment.Repository = (*PaymentGormRepository)(nil)

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/models"
)

type WebhookGormRepository struct {
	db *gorm.DB
}

func NewWebhookGormRepository(db *gorm.DB) *WebhookGormRepository {
	return &WebhookGormRepository{db: db}
}

// ListActive devolve os webhooks ativos; o filtro por evento é feito em memória.
func (r *WebhookGormRepository) ListActive(ctx context.Context) ([]models.Webhook, error) {
	var hooks []models.Webhook
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&hooks).Error; err != nil {
		return nil, err
	}
	return hooks, nil
}

// RecordDelivery guarda o resultado da última entrega. Falhas seguidas
// acumulam em failure_count; um sucesso zera o contador.
func (r *WebhookGormRepository) RecordDelivery(
	ctx context.Context,
	id uuid.UUID,
	status int,
	deliveryErr error,
) error {
	now := time.Now()
	cols := map[string]any{
		"last_delivery_at":     now,
		"last_delivery_status": status,
	}

	if deliveryErr != nil {
		msg := deliveryErr.Error()
		if len(msg) > 500 {
			msg = msg[:500]
		}
		cols["last_error"] = msg
		cols["failure_count"] = gorm.Expr("failure_count + 1")
	} else {
		cols["last_error"] = ""
		cols["failure_count"] = 0
	}

	return r.db.WithContext(ctx).
		Model(&models.Webhook{}).
		Where("id = ?", id).
		Updates(cols).Error
}

// --------------------------------------------------
// CRUD (admin)
// --------------------------------------------------

func (r *WebhookGormRepository) Create(ctx context.Context, hook *models.Webhook) error {
	return r.db.WithContext(ctx).Create(hook).Error
}

func (r *WebhookGormRepository) List(ctx context.Context) ([]models.Webhook, error) {
	var hooks []models.Webhook
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&hooks).Error; err != nil {
		return nil, err
	}
	return hooks, nil
}

func (r *WebhookGormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	var hook models.Webhook
	if err := r.db.WithContext(ctx).First(&hook, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &hook, nil
}

func (r *WebhookGormRepository) Update(ctx context.Context, hook *models.Webhook) error {
	return r.db.WithContext(ctx).
		Model(hook).
		Select("url", "events", "active").
		Updates(hook).Error
}

func (r *WebhookGormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Webhook{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/models"
)

type APIKeyGormRepository struct {
	db *gorm.DB
}

func NewAPIKeyGormRepository(db *gorm.DB) *APIKeyGormRepository {
	return &APIKeyGormRepository{db: db}
}

// FindActiveByHash procura uma chave não revogada pelo hash SHA-256.
func (r *APIKeyGormRepository) FindActiveByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Where("key_hash = ? AND revoked_at IS NULL", hash).
		First(&key).Error; err != nil {
		return nil, notFound(err)
	}
	return &key, nil
}

func (r *APIKeyGormRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

func (r *APIKeyGormRepository) Create(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *APIKeyGormRepository) List(ctx context.Context) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Revoke marca a chave como revogada e devolve o hash, para o chamador
// limpar o cache de autenticação.
func (r *APIKeyGormRepository) Revoke(ctx context.Context, id uuid.UUID) (string, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).
		Where("id = ? AND revoked_at IS NULL", id).
		First(&key).Error; err != nil {
		return "", notFound(err)
	}

	if err := r.db.WithContext(ctx).
		Model(&key).
		Update("revoked_at", time.Now()).Error; err != nil {
		return "", err
	}
	return key.KeyHash, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type APIKey struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name      string    `gorm:"size:100;not null" json:"name"`
	Prefix    string    `gorm:"size:12;not null" json:"prefix"`
	KeyHash   string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"created_by"`

	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (k *APIKey) BeforeCreate(_ *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

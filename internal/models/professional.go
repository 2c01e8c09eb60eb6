package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/domain/availability"
)

type Professional struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name        string   `gorm:"size:100;not null" json:"name"`
	Email       string   `gorm:"size:100;not null" json:"email"`
	CRP         string   `gorm:"size:30" json:"crp"`
	Specialties []string `gorm:"type:jsonb;serializer:json" json:"specialties"`
	Bio         string   `gorm:"type:text" json:"bio"`
	PhotoKey    string   `gorm:"size:255" json:"-"`

	SessionPrice float64 `gorm:"type:numeric(10,2);default:0" json:"session_price"`

	Approved bool   `gorm:"default:false" json:"approved"`
	Status   string `gorm:"size:20;default:'pending';index" json:"status"`

	Availability *availability.Config `gorm:"type:jsonb;serializer:json" json:"availability"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Professional) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

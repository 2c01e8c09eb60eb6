package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Webhook struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	URL    string   `gorm:"size:500;not null" json:"url"`
	Events []string `gorm:"type:jsonb;serializer:json" json:"events"`
	Secret string   `gorm:"size:100;not null" json:"-"`
	Active bool     `gorm:"default:true" json:"active"`

	LastDeliveryAt     *time.Time `json:"last_delivery_at"`
	LastDeliveryStatus int        `json:"last_delivery_status"`
	LastError          string     `gorm:"size:500" json:"last_error"`
	FailureCount       int        `gorm:"default:0" json:"failure_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Webhook) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Subscribes informa se o webhook escuta o evento ("*" escuta todos).
func (w *Webhook) Subscribes(event string) bool {
	for _, e := range w.Events {
		if e == event || e == "*" {
			return true
		}
	}
	return false
}

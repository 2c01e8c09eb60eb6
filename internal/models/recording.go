package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Recording struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	UploadedBy    uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`

	ObjectKey   string `gorm:"size:255;not null" json:"-"`
	ContentType string `gorm:"size:100" json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Recording) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

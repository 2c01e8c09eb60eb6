package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProfessionalID uuid.UUID    `gorm:"type:uuid;not null;index" json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// paciente logado (opcional) + dados desnormalizados
	PatientID    *uuid.UUID `gorm:"type:uuid;index" json:"patient_id"`
	PatientName  string     `gorm:"size:100;not null" json:"patient_name"`
	PatientPhone string     `gorm:"size:20" json:"patient_phone"`
	PatientEmail string     `gorm:"size:100" json:"patient_email"`

	ScheduledAt time.Time `gorm:"not null;index" json:"scheduled_at"`

	Status string `gorm:"size:20;default:'agendado';index" json:"status"`
	Type   string `gorm:"size:20;default:'consulta'" json:"type"`
	Notes  string `gorm:"size:500" json:"notes"`

	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelReason string     `gorm:"size:255" json:"cancel_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

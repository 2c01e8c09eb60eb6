package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Payment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`

	Provider     string  `gorm:"size:30;default:'mercadopago'" json:"provider"`
	ProviderID   int     `gorm:"index" json:"provider_id"`
	Method       string  `gorm:"size:20" json:"method"`
	Amount       float64 `gorm:"type:numeric(10,2)" json:"amount"`
	Status       string  `gorm:"size:30;index" json:"status"`
	StatusDetail string  `gorm:"size:60" json:"status_detail"`

	PixQRCode       string `gorm:"type:text" json:"pix_qr_code,omitempty"`
	PixQRCodeBase64 string `gorm:"type:text" json:"pix_qr_code_base64,omitempty"`
	TicketURL       string `gorm:"size:500" json:"ticket_url,omitempty"`

	PaidAt *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

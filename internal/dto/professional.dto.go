package dto

import (
	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/models"
)

// ProfessionalPublicDTO é o que o diretório público expõe.
type ProfessionalPublicDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CRP          string    `json:"crp"`
	Specialties  []string  `json:"specialties"`
	Bio          string    `json:"bio"`
	SessionPrice float64   `json:"session_price"`
	PhotoURL     string    `json:"photo_url,omitempty"`
}

func FromProfessional(p *models.Professional, photoURL string) ProfessionalPublicDTO {
	specialties := p.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return ProfessionalPublicDTO{
		ID:           p.ID,
		Name:         p.Name,
		CRP:          p.CRP,
		Specialties:  specialties,
		Bio:          p.Bio,
		SessionPrice: p.SessionPrice,
		PhotoURL:     photoURL,
	}
}

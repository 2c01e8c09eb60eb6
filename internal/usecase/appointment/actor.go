package appointment

import (
	"github.com/google/uuid"

	domain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/models"
)

// Actor é quem dispara a operação, extraído do token.
type Actor struct {
	UserID         uuid.UUID
	Role           domain.Role
	ProfessionalID *uuid.UUID
}

// Owns diz se o ator enxerga o agendamento: admin vê todos, profissional a
// própria agenda e paciente os próprios agendamentos.
func (a Actor) Owns(ap *models.Appointment) bool {
	switch a.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleProfessional:
		return a.ProfessionalID != nil && *a.ProfessionalID == ap.ProfessionalID
	case domain.RolePatient:
		return ap.PatientID != nil && *ap.PatientID == a.UserID
	}
	return false
}

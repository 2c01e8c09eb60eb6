package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
)

// AppointmentDTO é a visão desnormalizada devolvida pela API. Date e Time são
// só apresentação; filtros e comparações usam ScheduledAt.
type AppointmentDTO struct {
	ID uuid.UUID `json:"id"`

	ProfessionalID   uuid.UUID `json:"professional_id"`
	ProfessionalName string    `json:"professional_name"`

	PatientID    *uuid.UUID `json:"patient_id,omitempty"`
	PatientName  string     `json:"patient_name"`
	PatientPhone string     `json:"patient_phone,omitempty"`
	PatientEmail string     `json:"patient_email,omitempty"`

	ScheduledAt time.Time `json:"scheduled_at"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`

	Status       string `json:"status"`
	Type         string `json:"type"`
	Notes        string `json:"notes,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func FromAppointment(ap *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:               ap.ID,
		ProfessionalID:   ap.ProfessionalID,
		ProfessionalName: ap.Professional.Name,
		PatientID:        ap.PatientID,
		PatientName:      ap.PatientName,
		PatientPhone:     ap.PatientPhone,
		PatientEmail:     ap.PatientEmail,
		ScheduledAt:      ap.ScheduledAt,
		Date:             timezone.FormatDisplayDate(ap.ScheduledAt),
		Time:             timezone.FormatClock(ap.ScheduledAt),
		Status:           ap.Status,
		Type:             ap.Type,
		Notes:            ap.Notes,
		CancelReason:     ap.CancelReason,
		CreatedAt:        ap.CreatedAt,
	}
}

func FromAppointments(aps []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(aps))
	for i := range aps {
		out = append(out, FromAppointment(&aps[i]))
	}
	return out
}

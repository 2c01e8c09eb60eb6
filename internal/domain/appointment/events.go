package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/models"
)

type EventName string

const (
	EventCreated   EventName = "appointment.created"
	EventConfirmed EventName = "appointment.confirmed"
	EventCancelled EventName = "appointment.cancelled"
	EventCompleted EventName = "appointment.completed"

	// exclusão administrativa; só vai para o painel em tempo real
	EventDeleted EventName = "appointment.deleted"
)

// WebhookEvents é o catálogo que integrações externas podem assinar.
var WebhookEvents = []EventName{EventCreated, EventConfirmed, EventCancelled, EventCompleted}

func IsWebhookEvent(name string) bool {
	for _, e := range WebhookEvents {
		if string(e) == name {
			return true
		}
	}
	return false
}

func EventFor(to Status) EventName {
	switch to {
	case StatusConfirmed:
		return EventConfirmed
	case StatusCompleted:
		return EventCompleted
	case StatusCancelled:
		return EventCancelled
	}
	return EventCreated
}

type Snapshot struct {
	ID               uuid.UUID  `json:"id"`
	ProfessionalID   uuid.UUID  `json:"professional_id"`
	ProfessionalName string     `json:"professional_name,omitempty"`
	PatientID        *uuid.UUID `json:"patient_id,omitempty"`
	PatientName      string     `json:"patient_name"`
	PatientPhone     string     `json:"patient_phone,omitempty"`
	PatientEmail     string     `json:"patient_email,omitempty"`
	ScheduledAt      time.Time  `json:"scheduled_at"`
	Status           Status     `json:"status"`
	Type             Type       `json:"type"`
	CancelReason     string     `json:"cancel_reason,omitempty"`
}

// Event é o fato de domínio gravado no outbox junto com a mutação.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        EventName `json:"event"`
	OccurredAt  time.Time `json:"occurred_at"`
	Appointment Snapshot  `json:"appointment"`
}

func NewEvent(name EventName, ap *models.Appointment, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Name:       name,
		OccurredAt: at,
		Appointment: Snapshot{
			ID:               ap.ID,
			ProfessionalID:   ap.ProfessionalID,
			ProfessionalName: ap.Professional.Name,
			PatientID:        ap.PatientID,
			PatientName:      ap.PatientName,
			PatientPhone:     ap.PatientPhone,
			PatientEmail:     ap.PatientEmail,
			ScheduledAt:      ap.ScheduledAt,
			Status:           Status(ap.Status),
			Type:             Type(ap.Type),
			CancelReason:     ap.CancelReason,
		},
	}
}

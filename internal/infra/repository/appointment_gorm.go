package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/models"
)

const slotConstraint = "ux_appointments_slot"

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessional(
	ctx context.Context,
	id uuid.UUID,
) (*models.Professional, error) {

	var p models.Professional
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// --------------------------------------------------
// Appointment (create)
// --------------------------------------------------

func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(ap).Error; err != nil {
			return err
		}

		// snapshot com o nome do profissional para os assinantes
		if ap.Professional.ID == uuid.Nil {
			if err := tx.Select("id", "name").First(&ap.Professional, "id = ?", ap.ProfessionalID).Error; err != nil {
				return fmt.Errorf("load professional snapshot: %w", err)
			}
		}

		return enqueueEvent(tx, appointment.NewEvent(appointment.EventCreated, ap, ap.CreatedAt))
	})

	if isUniqueViolation(err, slotConstraint) {
		return domain.ErrSlotUnavailable
	}
	return err
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Professional").
		First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListByProfessional(
	ctx context.Context,
	professionalID uuid.UUID,
	f appointment.Filter,
) ([]models.Appointment, error) {
	return r.list(ctx, r.db.Where("appointments.professional_id = ?", professionalID), f)
}

func (r *AppointmentGormRepository) ListByPatient(
	ctx context.Context,
	patientID uuid.UUID,
	f appointment.Filter,
) ([]models.Appointment, error) {
	return r.list(ctx, r.db.Where("appointments.patient_id = ?", patientID), f)
}

func (r *AppointmentGormRepository) ListAll(
	ctx context.Context,
	f appointment.Filter,
) ([]models.Appointment, error) {
	return r.list(ctx, r.db, f)
}

func (r *AppointmentGormRepository) list(
	ctx context.Context,
	q *gorm.DB,
	f appointment.Filter,
) ([]models.Appointment, error) {

	q = q.WithContext(ctx).Model(&models.Appointment{}).Preload("Professional")

	if f.From != nil {
		q = q.Where("appointments.scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("appointments.scheduled_at < ?", *f.To)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("appointments.status IN ?", statuses)
	}
	if f.Type != "" {
		q = q.Where("appointments.type = ?", string(f.Type))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var apps []models.Appointment
	if err := q.Order("appointments.scheduled_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *AppointmentGormRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from appointment.Status,
	to appointment.Status,
	ch appointment.StatusChange,
) (*models.Appointment, error) {

	var updated models.Appointment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", id, string(from)).
			Updates(appointment.Columns(to, ch))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var current models.Appointment
			if err := tx.Select("id", "status").First(&current, "id = ?", id).Error; err != nil {
				return notFound(err)
			}
			return domain.ErrInvalidTransition
		}

		if err := tx.Preload("Professional").First(&updated, "id = ?", id).Error; err != nil {
			return err
		}

		return enqueueEvent(tx, appointment.NewEvent(appointment.EventFor(to), &updated, ch.At))
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *AppointmentGormRepository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ap models.Appointment
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Professional").
			First(&ap, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		if err := tx.Delete(&models.Appointment{}, "id = ?", id).Error; err != nil {
			return err
		}

		return enqueueEvent(tx, appointment.NewEvent(appointment.EventDeleted, &ap, time.Now()))
	})
}

// --------------------------------------------------
// Reports
// --------------------------------------------------

type StatusCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CountBy agrupa agendamentos do período por uma coluna permitida.
func (r *AppointmentGormRepository) CountBy(
	ctx context.Context,
	column string,
	from time.Time,
	to time.Time,
) ([]StatusCount, error) {

	switch column {
	case "status", "type", "professional_id":
	default:
		return nil, errors.New("unsupported group column")
	}

	var out []StatusCount
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select(column+"::text AS key, COUNT(*) AS count").
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Group(column).
		Order("count DESC").
		Scan(&out).Error

	return out, err
}

// Compile-time check
var _ appointment.Repository = (*AppointmentGormRepository)(nil)

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/models"
)

// enqueueEvent grava o evento no outbox usando a transação da mutação.
func enqueueEvent(tx *gorm.DB, ev appointment.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	row := models.OutboxEvent{
		ID:            ev.ID,
		EventType:     string(ev.Name),
		AggregateID:   ev.Appointment.ID,
		Payload:       string(payload),
		Status:        models.OutboxStatusPending,
		NextAttemptAt: ev.OccurredAt,
	}

	return tx.Create(&row).Error
}

type OutboxGormRepository struct {
	db *gorm.DB
}

func NewOutboxGormRepository(db *gorm.DB) *OutboxGormRepository {
	return &OutboxGormRepository{db: db}
}

// Claim trava um lote de eventos pendentes com SKIP LOCKED e empurra o
// próximo horário de tentativa para now+lease, para que outra instância não
// pegue o mesmo lote enquanto este é entregue.
func (r *OutboxGormRepository) Claim(
	ctx context.Context,
	limit int,
	lease time.Duration,
) ([]models.OutboxEvent, error) {

	var events []models.OutboxEvent
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_attempt_at <= ?", models.OutboxStatusPending, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&events).Error; err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(events))
		for i := range events {
			ids[i] = events[i].ID
		}

		return tx.Model(&models.OutboxEvent{}).
			Where("id IN ?", ids).
			Update("next_attempt_at", now.Add(lease)).Error
	})
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (r *OutboxGormRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.OutboxStatusProcessed,
			"processed_at": now,
			"last_error":   "",
		}).Error
}

// MarkRetry registra a falha; sem next, o evento vai para FAILED.
func (r *OutboxGormRepository) MarkRetry(
	ctx context.Context,
	id uuid.UUID,
	attempts int,
	lastErr string,
	next *time.Time,
) error {
	cols := map[string]any{
		"attempts":   attempts,
		"last_error": lastErr,
	}
	if next != nil {
		cols["next_attempt_at"] = *next
	} else {
		cols["status"] = models.OutboxStatusFailed
	}

	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(cols).Error
}

func (r *OutboxGormRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("status = ?", models.OutboxStatusPending).
		Count(&n).Error
	return n, err
}

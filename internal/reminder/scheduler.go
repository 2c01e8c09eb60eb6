package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain/appointment"
)

// Enqueuer e Canceller são satisfeitos por *asynq.Client e *asynq.Inspector.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Canceller interface {
	DeleteTask(queue, id string) error
}

// Scheduler é o assinante do outbox que agenda o lembrete de cada consulta
// e o remove quando ela é cancelada.
type Scheduler struct {
	enqueuer  Enqueuer
	canceller Canceller
	lead      time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewScheduler(enq Enqueuer, canceller Canceller, lead time.Duration, log *zap.Logger) *Scheduler {
	return &Scheduler{enqueuer: enq, canceller: canceller, lead: lead, log: log, now: time.Now}
}

func (s *Scheduler) Name() string { return "reminder" }

func (s *Scheduler) Handle(ctx context.Context, ev appointment.Event) error {
	switch ev.Name {
	case appointment.EventCreated:
		return s.schedule(ctx, ev)
	case appointment.EventCancelled, appointment.EventDeleted:
		return s.cancel(ev)
	}
	return nil
}

func (s *Scheduler) schedule(ctx context.Context, ev appointment.Event) error {
	fireAt := ev.Appointment.ScheduledAt.Add(-s.lead)
	if !fireAt.After(s.now()) {
		// marcado em cima da hora; a confirmação do agendamento já serve de aviso
		return nil
	}

	task, opts, err := NewTask(ev.Appointment.ID, fireAt)
	if err != nil {
		return err
	}

	_, err = s.enqueuer.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue reminder: %w", err)
	}

	s.log.Debug("lembrete agendado",
		zap.String("appointment_id", ev.Appointment.ID.String()),
		zap.Time("fire_at", fireAt),
	)
	return nil
}

func (s *Scheduler) cancel(ev appointment.Event) error {
	err := s.canceller.DeleteTask(Queue, TaskID(ev.Appointment.ID))
	if errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

package reminder

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeSend = "reminder:send"
	Queue    = "default"
)

type Payload struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

// TaskID é fixo por agendamento: reagendar o mesmo evento não duplica o lembrete.
func TaskID(appointmentID uuid.UUID) string {
	return "reminder:" + appointmentID.String()
}

func NewTask(appointmentID uuid.UUID, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(Payload{AppointmentID: appointmentID})
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeSend, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TaskID(appointmentID)),
		asynq.Queue(Queue),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

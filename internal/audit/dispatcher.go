package audit

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Event struct {
	UserID   *uuid.UUID
	Role     string
	Action   string
	Entity   string
	EntityID *uuid.UUID
	Metadata any
}

// Sink grava um evento de auditoria.
type Sink interface {
	Log(ev Event) error
}

// Recorder é o que os casos de uso enxergam.
type Recorder interface {
	Dispatch(ev Event)
}

type Dispatcher struct {
	sink  Sink
	log   *zap.Logger
	queue chan Event
	done  chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.sink.Log(ev); err != nil {
			d.log.Error("audit error", zap.String("action", ev.Action), zap.Error(err))
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// fila cheia: descarta, auditoria nunca quebra a API
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close esvazia a fila e espera o worker terminar.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}

// Action monta um evento com ator e entidade já preenchidos.
func Action(actor uuid.UUID, role, action, entity string, entityID uuid.UUID, meta any) Event {
	return Event{
		UserID:   ptr(actor),
		Role:     role,
		Action:   action,
		Entity:   entity,
		EntityID: ptr(entityID),
		Metadata: meta,
	}
}

// Nop descarta tudo; usado em testes e ferramentas de linha de comando.
type Nop struct{}

func (Nop) Dispatch(Event) {}

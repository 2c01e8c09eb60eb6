package professional

import (
	"fmt"

	"github.com/conexaomental/clinica-api/internal/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusSuspended Status = "suspended"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSuspended:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusSuspended},
	StatusSuspended: {StatusApproved},
	StatusRejected:  {StatusApproved},
}

// CanTransition valida as mudanças administrativas de status do profissional.
func CanTransition(from, to Status) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("professional %s -> %s: %w", from, to, domain.ErrInvalidTransition)
}

// Bookable indica se o profissional aparece no diretório e aceita agendamentos.
func Bookable(status Status, approved bool) bool {
	return approved && status == StatusApproved
}

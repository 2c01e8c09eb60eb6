package appointment

import (
	"errors"
	"fmt"

	"github.com/conexaomental/clinica-api/internal/domain"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "agendado"
	StatusConfirmed Status = "confirmado"
	StatusCompleted Status = "realizado"
	StatusCancelled Status = "cancelado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive indica se o agendamento ainda ocupa o horário.
func (s Status) IsActive() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

func InitialStatus() Status {
	return StatusScheduled
}

// ActiveStatuses são os estados que ocupam o horário na agenda.
var ActiveStatuses = []Status{StatusScheduled, StatusConfirmed}

// ===============================
// Roles
// ===============================

type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// ===============================
// Transition table
// ===============================

type edge struct {
	from Status
	to   Status
}

var transitions = map[edge][]Role{
	{StatusScheduled, StatusConfirmed}: {RoleProfessional, RoleAdmin},
	{StatusScheduled, StatusCancelled}: {RolePatient, RoleProfessional, RoleAdmin},
	{StatusConfirmed, StatusCompleted}: {RoleProfessional},
	{StatusConfirmed, StatusCancelled}: {RolePatient, RoleProfessional, RoleAdmin},
}

// Transition valida a mudança de estado. A tabela é consultada antes do papel:
// um par inexistente é sempre ErrInvalidTransition, seja quem for o ator.
func Transition(from, to Status, role Role) error {
	roles, ok := transitions[edge{from, to}]
	if !ok {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}

	for _, r := range roles {
		if r == role {
			return nil
		}
	}

	return fmt.Errorf("%s -> %s by %s: %w", from, to, role, domain.ErrTransitionForbidden)
}

// AllowedTargets lista para onde o papel pode mover um agendamento no estado atual.
func AllowedTargets(from Status, role Role) []Status {
	var out []Status
	for _, to := range []Status{StatusConfirmed, StatusCompleted, StatusCancelled} {
		if err := Transition(from, to, role); err == nil {
			out = append(out, to)
		}
	}
	return out
}

// ===============================
// Appointment Type
// ===============================

type Type string

const (
	TypeConsultation Type = "consulta"
	TypeFollowUp     Type = "retorno"
)

var ErrInvalidType = errors.New("invalid appointment type")

// ParseType aceita vazio como consulta; qualquer outro valor fora da lista é erro.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case "":
		return TypeConsultation, nil
	case TypeConsultation, TypeFollowUp:
		return Type(s), nil
	}
	return "", ErrInvalidType
}

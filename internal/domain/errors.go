package domain

import "errors"

// Taxonomia de erros esperados do núcleo de agendamento. São condições de
// negócio recuperáveis; qualquer outro erro é falha de infraestrutura.
var (
	// horário já ocupado ou fora da grade configurada
	ErrSlotUnavailable = errors.New("slot unavailable")

	// par (de, para) fora da tabela de transições
	ErrInvalidTransition = errors.New("invalid status transition")

	// transição existe, mas o papel de quem pediu não pode dispará-la
	ErrTransitionForbidden = errors.New("transition not permitted for role")

	// profissional sem documento de disponibilidade
	ErrConfigurationMissing = errors.New("availability not configured")

	ErrNotFound = errors.New("not found")
)

package httperr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
)

// FromError traduz erros de casos de uso em respostas HTTP. Erros esperados
// viram 4xx; o resto é 500 e fica no log.
func FromError(c *gin.Context, log *zap.Logger, err error) {
	var be BusinessError

	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		Conflict(c, "slot_unavailable", "Horário indisponível. Escolha outro horário.")
	case errors.Is(err, domain.ErrInvalidTransition):
		Conflict(c, "invalid_transition", "Mudança de status não permitida.")
	case errors.Is(err, domain.ErrTransitionForbidden):
		Forbidden(c, "transition_forbidden", "Você não tem permissão para esta ação.")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(c, "not_found", "Registro não encontrado.")
	case errors.As(err, &be):
		BadRequest(c, be.Code, be.Message())
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Internal(c, "internal_error", "Erro interno. Tente novamente.")
	}
}

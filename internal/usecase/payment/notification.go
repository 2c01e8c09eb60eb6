package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	paydomain "github.com/conexaomental/clinica-api/internal/domain/payment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/infra/payment"
)

// HandleNotification sincroniza o status local com o Mercado Pago. O corpo da
// notificação só traz o id; o status vem sempre de uma consulta ao provedor.
// Aprovação não mexe no status do agendamento.
type HandleNotification struct {
	payments paydomain.Repository
	gateway  payment.Gateway
	log      *zap.Logger
}

func NewHandleNotification(payments paydomain.Repository, gateway payment.Gateway, log *zap.Logger) *HandleNotification {
	return &HandleNotification{payments: payments, gateway: gateway, log: log}
}

func (uc *HandleNotification) Execute(ctx context.Context, providerID int) error {
	if uc.gateway == nil {
		return httperr.ErrBusiness("payment_not_configured")
	}

	p, err := uc.payments.GetByProviderID(ctx, providerID)
	if err != nil {
		return err
	}

	charge, err := uc.gateway.Get(ctx, providerID)
	if err != nil {
		return err
	}

	if charge.Status == p.Status && charge.StatusDetail == p.StatusDetail {
		return nil
	}

	var paidAt *time.Time
	if charge.Status == paydomain.StatusApproved && p.PaidAt == nil {
		now := time.Now()
		paidAt = &now
	}

	if err := uc.payments.UpdateStatus(ctx, p.ID, charge.Status, charge.StatusDetail, paidAt); err != nil {
		return err
	}

	uc.log.Info("pagamento atualizado",
		zap.Int("provider_id", providerID),
		zap.String("appointment_id", p.AppointmentID.String()),
		zap.String("from", p.Status),
		zap.String("to", charge.Status),
	)
	return nil
}

package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	paydomain "github.com/conexaomental/clinica-api/internal/domain/payment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/infra/payment"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/timezone"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
)

type CreatePaymentInput struct {
	AppointmentID uuid.UUID
	Actor         apptuc.Actor

	Method       paydomain.Method
	CardToken    string
	CardBrand    string
	Installments int
	PayerEmail   string
}

type CreatePayment struct {
	appts    apptdomain.Repository
	payments paydomain.Repository
	gateway  payment.Gateway
	audit    audit.Recorder
}

// gateway nil significa Mercado Pago não configurado.
func NewCreatePayment(
	appts apptdomain.Repository,
	payments paydomain.Repository,
	gateway payment.Gateway,
	audit audit.Recorder,
) *CreatePayment {
	return &CreatePayment{appts: appts, payments: payments, gateway: gateway, audit: audit}
}

func (uc *CreatePayment) Execute(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if uc.gateway == nil {
		return nil, httperr.ErrBusiness("payment_not_configured")
	}
	if !in.Method.Valid() {
		return nil, httperr.ErrBusiness("invalid_payment_method")
	}

	// --------------------------------------------------
	// 1️⃣ Agendamento do ator, não cancelado
	// --------------------------------------------------
	ap, err := uc.appts.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !in.Actor.Owns(ap) {
		return nil, domain.ErrNotFound
	}
	if apptdomain.Status(ap.Status) == apptdomain.StatusCancelled {
		return nil, httperr.ErrBusiness("appointment_not_payable")
	}

	paid, err := uc.payments.HasApproved(ctx, ap.ID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, httperr.ErrBusiness("payment_already_approved")
	}

	// --------------------------------------------------
	// 2️⃣ Valor da sessão do profissional
	// --------------------------------------------------
	pro, err := uc.appts.GetProfessional(ctx, ap.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if pro.SessionPrice <= 0 {
		return nil, httperr.ErrBusiness("payment_not_required")
	}

	email := in.PayerEmail
	if email == "" {
		email = ap.PatientEmail
	}

	// --------------------------------------------------
	// 3️⃣ Cobrança no provedor
	// --------------------------------------------------
	charge, err := uc.gateway.Create(ctx, payment.ChargeRequest{
		Amount:            pro.SessionPrice,
		Method:            string(in.Method),
		CardToken:         in.CardToken,
		CardBrand:         in.CardBrand,
		Installments:      in.Installments,
		PayerEmail:        email,
		Description:       fmt.Sprintf("Sessão com %s em %s", pro.Name, timezone.FormatDisplayDate(ap.ScheduledAt)),
		ExternalReference: ap.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		AppointmentID:   ap.ID,
		Provider:        "mercadopago",
		ProviderID:      charge.ProviderID,
		Method:          string(in.Method),
		Amount:          pro.SessionPrice,
		Status:          charge.Status,
		StatusDetail:    charge.StatusDetail,
		PixQRCode:       charge.PixQRCode,
		PixQRCodeBase64: charge.PixQRCodeBase64,
		TicketURL:       charge.TicketURL,
	}
	if charge.Status == paydomain.StatusApproved {
		now := time.Now()
		p.PaidAt = &now
	}

	if err := uc.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Action(
		in.Actor.UserID,
		string(in.Actor.Role),
		"payment_created",
		"appointment",
		ap.ID,
		map[string]any{"method": in.Method, "amount": p.Amount, "status": p.Status},
	))

	return p, nil
}

// ListPayments devolve as cobranças de um agendamento visível ao ator.
type ListPayments struct {
	appts    apptdomain.Repository
	payments paydomain.Repository
}

func NewListPayments(appts apptdomain.Repository, payments paydomain.Repository) *ListPayments {
	return &ListPayments{appts: appts, payments: payments}
}

func (uc *ListPayments) Execute(ctx context.Context, actor apptuc.Actor, appointmentID uuid.UUID) ([]models.Payment, error) {
	ap, err := uc.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(ap) {
		return nil, domain.ErrNotFound
	}
	return uc.payments.ListByAppointment(ctx, ap.ID)
}

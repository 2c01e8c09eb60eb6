package payment

import (
	"context"
	"fmt"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
)

type ChargeRequest struct {
	Amount            float64
	Method            string // pix | card
	CardToken         string
	CardBrand         string
	Installments      int
	PayerEmail        string
	Description       string
	ExternalReference string
}

type Charge struct {
	ProviderID      int
	Status          string
	StatusDetail    string
	PixQRCode       string
	PixQRCodeBase64 string
	TicketURL       string
}

// Gateway é o provedor de pagamento visto pelos casos de uso.
type Gateway interface {
	Create(ctx context.Context, req ChargeRequest) (*Charge, error)
	Get(ctx context.Context, providerID int) (*Charge, error)
}

type MercadoPago struct {
	client          payment.Client
	notificationURL string
}

func NewMercadoPago(accessToken, notificationURL string) (*MercadoPago, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &MercadoPago{
		client:          payment.NewClient(cfg),
		notificationURL: notificationURL,
	}, nil
}

func (m *MercadoPago) Create(ctx context.Context, req ChargeRequest) (*Charge, error) {
	mpReq := payment.Request{
		TransactionAmount: req.Amount,
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
		NotificationURL:   m.notificationURL,
		Payer: &payment.PayerRequest{
			Email: req.PayerEmail,
		},
	}

	switch req.Method {
	case "pix":
		mpReq.PaymentMethodID = "pix"
	case "card":
		mpReq.PaymentMethodID = req.CardBrand
		mpReq.Token = req.CardToken
		mpReq.Installments = req.Installments
		if mpReq.Installments <= 0 {
			mpReq.Installments = 1
		}
	default:
		return nil, fmt.Errorf("unsupported payment method %q", req.Method)
	}

	res, err := m.client.Create(ctx, mpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create: %w", err)
	}
	return toCharge(res), nil
}

func (m *MercadoPago) Get(ctx context.Context, providerID int) (*Charge, error) {
	res, err := m.client.Get(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get %d: %w", providerID, err)
	}
	return toCharge(res), nil
}

func toCharge(res *payment.Response) *Charge {
	return &Charge{
		ProviderID:      res.ID,
		Status:          res.Status,
		StatusDetail:    res.StatusDetail,
		PixQRCode:       res.PointOfInteraction.TransactionData.QRCode,
		PixQRCodeBase64: res.PointOfInteraction.TransactionData.QRCodeBase64,
		TicketURL:       res.PointOfInteraction.TransactionData.TicketURL,
	}
}

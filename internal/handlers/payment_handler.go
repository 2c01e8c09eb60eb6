package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/domain"
	paydomain "github.com/conexaomental/clinica-api/internal/domain/payment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	payuc "github.com/conexaomental/clinica-api/internal/usecase/payment"
)

type PaymentHandler struct {
	create *payuc.CreatePayment
	list   *payuc.ListPayments
	notify *payuc.HandleNotification
	log    *zap.Logger
}

func NewPaymentHandler(
	create *payuc.CreatePayment,
	list *payuc.ListPayments,
	notify *payuc.HandleNotification,
	log *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{create: create, list: list, notify: notify, log: log}
}

type CreatePaymentRequest struct {
	Method       string `json:"method" binding:"required,oneof=pix card"`
	CardToken    string `json:"card_token" binding:"required_if=Method card"`
	CardBrand    string `json:"payment_method_id"`
	Installments int    `json:"installments" binding:"omitempty,min=1,max=12"`
	PayerEmail   string `json:"payer_email" binding:"omitempty,email"`
}

// notificação do Mercado Pago (webhook v2); o formato antigo vem só na query
type mercadoPagoNotification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (h *PaymentHandler) Create(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.create.Execute(c.Request.Context(), payuc.CreatePaymentInput{
		AppointmentID: id,
		Actor:         actorFromContext(c),
		Method:        paydomain.Method(req.Method),
		CardToken:     req.CardToken,
		CardBrand:     req.CardBrand,
		Installments:  req.Installments,
		PayerEmail:    req.PayerEmail,
	})
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	httpresp.Created(c, p)
}

func (h *PaymentHandler) List(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	out, err := h.list.Execute(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

// Notification sempre responde 200 para o Mercado Pago não reenviar em
// loop; falhas ficam no log e a próxima notificação sincroniza de novo.
func (h *PaymentHandler) Notification(c *gin.Context) {
	kind := c.Query("type")
	if kind == "" {
		kind = c.Query("topic")
	}
	rawID := c.Query("data.id")
	if rawID == "" {
		rawID = c.Query("id")
	}

	var body mercadoPagoNotification
	if err := c.ShouldBindJSON(&body); err == nil {
		if body.Type != "" {
			kind = body.Type
		}
		if body.Data.ID != "" {
			rawID = body.Data.ID
		}
	}

	if kind != "payment" {
		c.Status(http.StatusOK)
		return
	}

	providerID, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		h.log.Warn("notificação sem id de pagamento", zap.String("id", rawID))
		c.Status(http.StatusOK)
		return
	}

	err = h.notify.Execute(c.Request.Context(), providerID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		h.log.Info("notificação de pagamento desconhecido", zap.Int("provider_id", providerID))
	default:
		h.log.Error("falha ao processar notificação", zap.Int("provider_id", providerID), zap.Error(err))
	}

	c.Status(http.StatusOK)
}

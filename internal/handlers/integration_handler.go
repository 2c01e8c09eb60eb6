package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/apikey"
	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/domain"
	apptdomain "github.com/conexaomental/clinica-api/internal/domain/appointment"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	"github.com/conexaomental/clinica-api/internal/models"
	apptuc "github.com/conexaomental/clinica-api/internal/usecase/appointment"
	"github.com/conexaomental/clinica-api/internal/webhook"
)

// ======================================================
// STORES
// ======================================================

type APIKeyStore interface {
	Create(ctx context.Context, key *models.APIKey) error
	List(ctx context.Context) ([]models.APIKey, error)
	Revoke(ctx context.Context, id uuid.UUID) (string, error)
}

type WebhookStore interface {
	Create(ctx context.Context, hook *models.Webhook) error
	List(ctx context.Context) ([]models.Webhook, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Webhook, error)
	Update(ctx context.Context, hook *models.Webhook) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// cache de autenticação por chave; a revogação limpa a entrada
type keyInvalidator interface {
	Invalidate(hash string)
}

// ======================================================
// HANDLER
// ======================================================

type IntegrationHandler struct {
	keys         APIKeyStore
	hooks        WebhookStore
	keyCache     keyInvalidator
	list         *apptuc.ListAppointments
	availability *apptuc.GetAvailability
	audit        audit.Recorder
	log          *zap.Logger
}

func NewIntegrationHandler(
	keys APIKeyStore,
	hooks WebhookStore,
	keyCache keyInvalidator,
	list *apptuc.ListAppointments,
	availability *apptuc.GetAvailability,
	audit audit.Recorder,
	log *zap.Logger,
) *IntegrationHandler {
	return &IntegrationHandler{
		keys:         keys,
		hooks:        hooks,
		keyCache:     keyCache,
		list:         list,
		availability: availability,
		audit:        audit,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAPIKeyRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CreateWebhookRequest struct {
	URL    string   `json:"url" binding:"required,max=500"`
	Events []string `json:"events" binding:"required,min=1"`
	Active *bool    `json:"active"`
}

type UpdateWebhookRequest struct {
	URL    *string  `json:"url" binding:"omitempty,max=500"`
	Events []string `json:"events" binding:"omitempty,min=1"`
	Active *bool    `json:"active"`
}

// ======================================================
// API KEYS
// ======================================================

func (h *IntegrationHandler) CreateAPIKey(c *gin.Context) {
	var req CreateAPIKeyRequest
	if !bindJSON(c, &req) {
		return
	}

	plain, prefix, hash, err := apikey.Generate()
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	actor := actorFromContext(c)
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Prefix:    prefix,
		KeyHash:   hash,
		CreatedBy: actor.UserID,
	}
	if err := h.keys.Create(c.Request.Context(), key); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	h.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "api_key_created", "api_key", key.ID, map[string]any{"prefix": prefix}))

	// a chave completa só aparece nesta resposta
	httpresp.Created(c, gin.H{
		"api_key": key,
		"key":     plain,
	})
}

func (h *IntegrationHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context())
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, keys)
}

func (h *IntegrationHandler) RevokeAPIKey(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	hash, err := h.keys.Revoke(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	h.keyCache.Invalidate(hash)

	actor := actorFromContext(c)
	h.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "api_key_revoked", "api_key", id, nil))

	httpresp.NoContent(c)
}

// ======================================================
// WEBHOOKS
// ======================================================

func (h *IntegrationHandler) CreateWebhook(c *gin.Context) {
	var req CreateWebhookRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validateWebhook(req.URL, req.Events); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	secret, err := webhook.NewSecret()
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	hook := &models.Webhook{
		ID:     uuid.New(),
		URL:    strings.TrimSpace(req.URL),
		Events: req.Events,
		Secret: secret,
		Active: req.Active == nil || *req.Active,
	}
	if err := h.hooks.Create(c.Request.Context(), hook); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	actor := actorFromContext(c)
	h.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "webhook_created", "webhook", hook.ID, map[string]any{"url": hook.URL}))

	// o segredo de assinatura só aparece nesta resposta
	httpresp.Created(c, gin.H{
		"webhook": hook,
		"secret":  secret,
	})
}

func (h *IntegrationHandler) ListWebhooks(c *gin.Context) {
	hooks, err := h.hooks.List(c.Request.Context())
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, hooks)
}

func (h *IntegrationHandler) UpdateWebhook(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWebhookRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	hook, err := h.hooks.GetByID(ctx, id)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	if req.URL != nil {
		hook.URL = strings.TrimSpace(*req.URL)
	}
	if req.Events != nil {
		hook.Events = req.Events
	}
	if req.Active != nil {
		hook.Active = *req.Active
	}
	if err := validateWebhook(hook.URL, hook.Events); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	if err := h.hooks.Update(ctx, hook); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	actor := actorFromContext(c)
	h.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "webhook_updated", "webhook", hook.ID, nil))

	httpresp.OK(c, hook)
}

func (h *IntegrationHandler) DeleteWebhook(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.hooks.Delete(c.Request.Context(), id); err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	actor := actorFromContext(c)
	h.audit.Dispatch(audit.Action(actor.UserID, string(actor.Role), "webhook_deleted", "webhook", id, nil))

	httpresp.NoContent(c)
}

func validateWebhook(raw string, events []string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return httperr.ErrBusiness("invalid_webhook_url")
	}

	if len(events) == 0 {
		return httperr.ErrBusiness("invalid_webhook_events")
	}
	for _, e := range events {
		if e != "*" && !apptdomain.IsWebhookEvent(e) {
			return httperr.ErrBusiness("invalid_webhook_events")
		}
	}
	return nil
}

// ======================================================
// API v1 (X-API-Key, somente leitura)
// ======================================================

func (h *IntegrationHandler) V1Appointments(c *gin.Context) {
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}
	if f.Limit == 0 {
		_, f.Limit = pagination(c)
	}

	var actor apptuc.Actor
	actor.Role = apptdomain.RoleAdmin

	if raw := c.Query("professional_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Identificador inválido.")
			return
		}
		actor.Role = apptdomain.RoleProfessional
		actor.ProfessionalID = &pid
	}

	out, err := h.list.ForActor(c.Request.Context(), actor, f)
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}
	httpresp.List(c, out)
}

func (h *IntegrationHandler) V1Availability(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}

	day, err := h.availability.Execute(c.Request.Context(), id, date)
	if errors.Is(err, domain.ErrConfigurationMissing) {
		c.JSON(http.StatusOK, gin.H{"status": "no_hours_configured", "slots": []any{}})
		return
	}
	if err != nil {
		httperr.FromError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "date": day.Date, "slots": day.Slots})
}

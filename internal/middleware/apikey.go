package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/conexaomental/clinica-api/internal/apikey"
	"github.com/conexaomental/clinica-api/internal/domain"
	"github.com/conexaomental/clinica-api/internal/models"
)

const (
	HeaderAPIKey    = "X-API-Key"
	ContextAPIKeyID = "apiKeyID"
)

type APIKeyStore interface {
	FindActiveByHash(ctx context.Context, hash string) (*models.APIKey, error)
	Touch(ctx context.Context, id uuid.UUID) error
}

// APIKeyAuth autentica integrações. O resultado da busca (inclusive a
// ausência) fica em cache por um minuto; revogação leva até esse tempo.
type APIKeyAuth struct {
	store APIKeyStore
	cache *cache.Cache
	log   *zap.Logger
}

func NewAPIKeyAuth(store APIKeyStore, log *zap.Logger) *APIKeyAuth {
	return &APIKeyAuth{
		store: store,
		cache: cache.New(time.Minute, 5*time.Minute),
		log:   log,
	}
}

// Invalidate é chamado na revogação para não esperar o TTL nesta instância.
func (a *APIKeyAuth) Invalidate(hash string) {
	a.cache.Delete(hash)
}

func (a *APIKeyAuth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		plain := c.GetHeader(HeaderAPIKey)
		if plain == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_api_key"})
			return
		}

		key, ok := a.lookup(c.Request.Context(), apikey.Hash(plain))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_api_key"})
			return
		}

		c.Set(ContextAPIKeyID, key.ID)
		c.Next()
	}
}

func (a *APIKeyAuth) lookup(ctx context.Context, hash string) (*models.APIKey, bool) {
	if v, found := a.cache.Get(hash); found {
		key, _ := v.(*models.APIKey)
		return key, key != nil
	}

	key, err := a.store.FindActiveByHash(ctx, hash)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		key = nil
	case err != nil:
		a.log.Error("falha ao buscar api key", zap.Error(err))
		return nil, false
	default:
		if err := a.store.Touch(ctx, key.ID); err != nil {
			a.log.Warn("falha ao atualizar last_used_at", zap.String("api_key_id", key.ID.String()), zap.Error(err))
		}
	}

	a.cache.Set(hash, key, cache.DefaultExpiration)
	return key, key != nil
}

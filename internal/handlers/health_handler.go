package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger verifica uma dependência; nil significa dependência não configurada.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	db    Pinger
	redis Pinger
	env   string
}

func NewHealthHandler(db, redis Pinger, env string) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, env: env}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": h.env})
}

// Readiness: Postgres fora derruba; Redis fora só degrada (lock e tempo real
// têm alternativa local).
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	status := "ok"

	if err := ping(ctx, h.db); err != nil {
		deps["postgres"] = "down"
		status = "error"
	} else {
		deps["postgres"] = "ok"
	}

	if h.redis == nil {
		deps["redis"] = "disabled"
	} else if err := ping(ctx, h.redis); err != nil {
		deps["redis"] = "down"
		if status == "ok" {
			status = "degraded"
		}
	} else {
		deps["redis"] = "ok"
	}

	code := http.StatusOK
	if status == "error" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"env":          h.env,
		"dependencies": deps,
	})
}

func ping(ctx context.Context, p Pinger) error {
	if p == nil {
		return context.Canceled
	}
	pctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return p(pctx)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	ctx := c.Request.Context()

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		httperr.NotFound(c, "user_not_found", "Usuário não encontrado.")
		return
	}

	resp := gin.H{"user": userJSON(&user)}

	if user.Role == models.RoleProfessional {
		var pro models.Professional
		if err := h.db.WithContext(ctx).First(&pro, "user_id = ?", user.ID).Error; err == nil {
			resp["professional"] = pro
		}
	}

	c.JSON(http.StatusOK, resp)
}

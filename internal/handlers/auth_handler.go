package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/config"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/httpresp"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	config *config.Config
	audit  audit.Recorder
	log    *zap.Logger

	emailDomainOK func(ctx context.Context, email string) bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config, audit audit.Recorder, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		db:            db,
		config:        cfg,
		audit:         audit,
		log:           log,
		emailDomainOK: validators.NewDomainChecker(time.Hour).Valid,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`

	// patient (padrão) ou professional; admin só via seed
	Role string `json:"role" binding:"omitempty,oneof=patient professional"`
	CRP  string `json:"crp"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !h.emailDomainOK(c.Request.Context(), email) {
		httperr.BadRequest(c, "invalid_email_domain", "O domínio do e-mail informado não parece ser válido.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RolePatient
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(c, "failed_to_hash_password", "Erro ao processar a senha.")
		return
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         role,
	}

	var pro *models.Professional

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if role != models.RoleProfessional {
			return nil
		}

		// profissional nasce pendente, fora do diretório até aprovação
		pro = &models.Professional{
			ID:          uuid.New(),
			UserID:      user.ID,
			Name:        user.Name,
			Email:       user.Email,
			CRP:         strings.TrimSpace(req.CRP),
			Specialties: []string{},
			Approved:    false,
			Status:      string(prodomain.StatusPending),
		}
		return tx.Create(pro).Error
	})
	if errors.Is(err, errEmailTaken) {
		httperr.Conflict(c, "email_already_exists", "Já existe uma conta com este e-mail.")
		return
	}
	if err != nil {
		h.log.Error("register failed", zap.Error(err))
		httperr.Internal(c, "failed_to_create_user", "Erro ao criar conta.")
		return
	}

	var pid *uuid.UUID
	if pro != nil {
		pid = &pro.ID
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, user.ID, user.Role, pid)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Erro ao gerar token.")
		return
	}

	h.audit.Dispatch(audit.Action(user.ID, user.Role, "user_registered", "user", user.ID, nil))

	httpresp.Created(c, gin.H{
		"user":         userJSON(&user),
		"professional": pro,
		"token":        token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ctx := c.Request.Context()

	var user models.User
	if err := h.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
			return
		}
		httperr.Internal(c, "internal_error", "Erro interno. Tente novamente.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "E-mail ou senha inválidos.")
		return
	}

	var pid *uuid.UUID
	if user.Role == models.RoleProfessional {
		var pro models.Professional
		if err := h.db.WithContext(ctx).Select("id").First(&pro, "user_id = ?", user.ID).Error; err == nil {
			pid = &pro.ID
		}
	}

	token, err := middleware.IssueToken(h.config.JWTSecret, user.ID, user.Role, pid)
	if err != nil {
		httperr.Internal(c, "failed_to_generate_token", "Erro ao gerar token.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":            userJSON(&user),
		"professional_id": pid,
		"token":           token,
	})
}

var errEmailTaken = errors.New("email already registered")

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

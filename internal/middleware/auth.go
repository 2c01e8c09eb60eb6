package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/conexaomental/clinica-api/internal/config"
)

const (
	ContextUserID         = "userID"
	ContextUserRole       = "userRole"
	ContextProfessionalID = "professionalID"
)

const TokenTTL = 24 * time.Hour

var errInvalidClaims = errors.New("invalid token claims")

// IssueToken assina o JWT de sessão. pid só vai no token de profissional.
func IssueToken(secret string, userID uuid.UUID, role string, professionalID *uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": role,
		"exp":  now.Add(TokenTTL).Unix(),
		"iat":  now.Unix(),
	}
	if professionalID != nil {
		claims["pid"] = professionalID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type Identity struct {
	UserID         uuid.UUID
	Role           string
	ProfessionalID *uuid.UUID
}

func ParseToken(secret, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errInvalidClaims
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return nil, errInvalidClaims
	}

	id := &Identity{UserID: userID, Role: role}
	if raw, ok := claims["pid"].(string); ok {
		pid, err := uuid.Parse(raw)
		if err != nil {
			return nil, errInvalidClaims
		}
		id.ProfessionalID = &pid
	}
	return id, nil
}

// AuthMiddleware aceita "Authorization: Bearer <jwt>". allowQuery libera
// ?token= para o upgrade de WebSocket, que não envia cabeçalhos no navegador.
func AuthMiddleware(cfg *config.Config, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearer(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			tokenString = c.Query("token")
			ok = tokenString != ""
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		id, err := ParseToken(cfg.JWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUserRole, id.Role)
		if id.ProfessionalID != nil {
			c.Set(ContextProfessionalID, *id.ProfessionalID)
		}

		c.Next()
	}
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole precisa vir depois de AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/httperr"
	"github.com/conexaomental/clinica-api/internal/models"
)

type PatientHandler struct {
	db *gorm.DB
}

func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{db: db}
}

type PatientSummary struct {
	PatientID    *uuid.UUID `json:"patient_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Appointments int64      `json:"appointments"`
	LastSession  time.Time  `json:"last_session"`
}

// ======================================================
// LIST PATIENTS (PROFISSIONAL)
// ======================================================

// List agrupa os pacientes que já agendaram com o profissional logado.
func (h *PatientHandler) List(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.ProfessionalID == nil {
		httperr.Forbidden(c, "forbidden", "Apenas profissionais têm pacientes.")
		return
	}

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Select(`patient_id, patient_name AS name, patient_phone AS phone,
			patient_email AS email, COUNT(*) AS appointments,
			MAX(scheduled_at) AS last_session`).
		Where("professional_id = ?", *actor.ProfessionalID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(patient_name) LIKE ? OR patient_phone LIKE ? OR LOWER(patient_email) LIKE ?",
			like, like, like,
		)
	}

	var patients []PatientSummary
	if err := q.
		Group("patient_id, patient_name, patient_phone, patient_email").
		Order("last_session DESC").
		Scan(&patients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_patients", "Erro ao listar pacientes.")
		return
	}

	if patients == nil {
		patients = []PatientSummary{}
	}
	c.JSON(http.StatusOK, patients)
}

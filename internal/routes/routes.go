package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/conexaomental/clinica-api/internal/audit"
	"github.com/conexaomental/clinica-api/internal/config"
	"github.com/conexaomental/clinica-api/internal/handlers"
	"github.com/conexaomental/clinica-api/internal/infra/payment"
	"github.com/conexaomental/clinica-api/internal/infra/redislock"
	infraRepo "github.com/conexaomental/clinica-api/internal/infra/repository"
	"github.com/conexaomental/clinica-api/internal/infra/storage"
	"github.com/conexaomental/clinica-api/internal/metrics"
	"github.com/conexaomental/clinica-api/internal/middleware"
	"github.com/conexaomental/clinica-api/internal/models"
	"github.com/conexaomental/clinica-api/internal/realtime"
	ucAppointment "github.com/conexaomental/clinica-api/internal/usecase/appointment"
	ucPayment "github.com/conexaomental/clinica-api/internal/usecase/payment"
	ucProfessional "github.com/conexaomental/clinica-api/internal/usecase/professional"
	ucRecording "github.com/conexaomental/clinica-api/internal/usecase/recording"
)

// Infra são os singletons montados no main. Store, Gateway e Redis podem
// ser nil quando o serviço correspondente não está configurado.
type Infra struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Audit    audit.Recorder
	Locker   redislock.Locker
	Store    storage.ObjectStore
	Gateway  payment.Gateway
	Hub      *realtime.Hub
	Redis    *redis.Client
	Limiter  *middleware.IPRateLimiter
}

func RegisterRoutes(r *gin.Engine, in Infra) {
	cfg := in.Config
	log := in.Log

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log, in.Metrics))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	rateLimit := middleware.RateLimit(in.Limiter, log)

	// ======================================================
	// 🔧 INFRA (REPOSITÓRIOS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(in.DB)
	professionalRepo := infraRepo.NewProfessionalGormRepository(in.DB)
	paymentRepo := infraRepo.NewPaymentGormRepository(in.DB)
	recordingRepo := infraRepo.NewRecordingGormRepository(in.DB)
	webhookRepo := infraRepo.NewWebhookGormRepository(in.DB)
	apiKeyRepo := infraRepo.NewAPIKeyGormRepository(in.DB)
	userRepo := infraRepo.NewUserGormRepository(in.DB)

	apiKeyAuth := middleware.NewAPIKeyAuth(apiKeyRepo, log)
	minAdvance := cfg.MinAdvance()

	// ======================================================
	// 🧠 USE CASES - APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		in.Locker,
		in.Audit,
		in.Metrics,
		minAdvance,
	)
	getAppointmentUC := ucAppointment.NewGetAppointment(appointmentRepo)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)
	transitionUC := ucAppointment.NewTransitionAppointment(appointmentRepo, in.Audit, in.Metrics)
	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(appointmentRepo, in.Audit)
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, minAdvance)
	calendarUC := ucAppointment.NewGetCalendar(appointmentRepo)

	// ======================================================
	// 🧠 USE CASES - PROFESSIONALS / PAYMENTS / RECORDINGS
	// ======================================================
	updateAvailabilityUC := ucProfessional.NewUpdateAvailability(professionalRepo, appointmentRepo, transitionUC, in.Audit)
	updateProfileUC := ucProfessional.NewUpdateProfile(professionalRepo, in.Audit)
	uploadPhotoUC := ucProfessional.NewUploadPhoto(professionalRepo, in.Store, in.Audit, log)
	updateStatusUC := ucProfessional.NewUpdateStatus(professionalRepo, in.Audit)
	directoryUC := ucProfessional.NewDirectory(professionalRepo, in.Store, log)

	createPaymentUC := ucPayment.NewCreatePayment(appointmentRepo, paymentRepo, in.Gateway, in.Audit)
	listPaymentsUC := ucPayment.NewListPayments(appointmentRepo, paymentRepo)
	notificationUC := ucPayment.NewHandleNotification(paymentRepo, in.Gateway, log)

	uploadRecordingUC := ucRecording.NewUpload(appointmentRepo, recordingRepo, in.Store, in.Audit)
	listRecordingsUC := ucRecording.NewList(appointmentRepo, recordingRepo, in.Store)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(in.DB, cfg, in.Audit, log)
	meHandler := handlers.NewMeHandler(in.DB)
	patientHandler := handlers.NewPatientHandler(in.DB)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		getAppointmentUC,
		listAppointmentsUC,
		transitionUC,
		deleteAppointmentUC,
		userRepo,
		log,
	)

	publicHandler := handlers.NewPublicHandler(directoryUC, availabilityUC, createAppointmentUC, log)
	calendarHandler := handlers.NewCalendarHandler(calendarUC, log)

	professionalHandler := handlers.NewProfessionalHandler(
		professionalRepo,
		updateAvailabilityUC,
		updateProfileUC,
		uploadPhotoUC,
		updateStatusUC,
		log,
	)

	paymentHandler := handlers.NewPaymentHandler(createPaymentUC, listPaymentsUC, notificationUC, log)
	recordingHandler := handlers.NewRecordingHandler(uploadRecordingUC, listRecordingsUC, log)
	reportHandler := handlers.NewReportHandler(appointmentRepo, paymentRepo, log)
	auditLogsHandler := handlers.NewAuditLogsHandler(in.DB)

	integrationHandler := handlers.NewIntegrationHandler(
		apiKeyRepo,
		webhookRepo,
		apiKeyAuth,
		listAppointmentsUC,
		availabilityUC,
		in.Audit,
		log,
	)

	realtimeHandler := handlers.NewRealtimeHandler(in.Hub)
	healthHandler := handlers.NewHealthHandler(dbPinger(in.DB), redisPinger(in.Redis), cfg.Env)

	// ======================================================
	// 🩺 OPERAÇÃO
	// ======================================================
	r.GET("/health/live", healthHandler.Liveness)
	r.GET("/health/ready", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(in.Gatherer, promhttp.HandlerOpts{})))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/professionals", publicHandler.ListProfessionals)
			publicAPI.GET("/professionals/:id", publicHandler.GetProfessional)
			publicAPI.GET("/professionals/:id/availability", publicHandler.Availability)
			publicAPI.POST("/professionals/:id/appointments", rateLimit, publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", rateLimit, authHandler.Register)
		api.POST("/auth/login", rateLimit, authHandler.Login)

		// ------------------------------
		// 💳 MERCADO PAGO
		// ------------------------------
		api.POST("/payments/mercadopago/notifications", paymentHandler.Notification)

		// ------------------------------
		// 🔌 INTEGRAÇÕES (X-API-Key)
		// ------------------------------
		v1 := api.Group("/integrations/v1")
		v1.Use(apiKeyAuth.Middleware())
		{
			v1.GET("/appointments", integrationHandler.V1Appointments)
			v1.GET("/professionals/:id/availability", integrationHandler.V1Availability)
		}

		// ------------------------------
		// 📡 TEMPO REAL (token na query)
		// ------------------------------
		api.GET("/admin/ws",
			middleware.AuthMiddleware(cfg, true),
			middleware.RequireRole(models.RoleAdmin),
			realtimeHandler.Connect,
		)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg, false))
		{
			secured.GET("/me", meHandler.GetMe)
			secured.GET("/me/appointments", appointmentHandler.ListMine)

			// ------------------------------
			// PROFISSIONAL
			// ------------------------------
			pro := secured.Group("/me")
			pro.Use(middleware.RequireRole(models.RoleProfessional))
			{
				pro.GET("/availability", professionalHandler.GetMyAvailability)
				pro.PUT("/availability", professionalHandler.UpdateMyAvailability)
				pro.PATCH("/profile", professionalHandler.UpdateMyProfile)
				pro.PUT("/photo", professionalHandler.UpdateMyPhoto)
				pro.GET("/calendar", calendarHandler.Mine)
				pro.GET("/patients", patientHandler.List)
			}

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", middleware.RequireRole(models.RolePatient), appointmentHandler.Create)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)

			secured.POST("/appointments/:id/payments", paymentHandler.Create)
			secured.GET("/appointments/:id/payments", paymentHandler.List)

			secured.POST("/appointments/:id/recordings", recordingHandler.Upload)
			secured.GET("/appointments/:id/recordings", recordingHandler.List)

			// ------------------------------
			// 🛡️ ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/appointments", appointmentHandler.AdminCreate)
				admin.GET("/appointments", appointmentHandler.ListAll)
				admin.DELETE("/appointments/:id", appointmentHandler.Delete)

				admin.GET("/professionals", professionalHandler.List)
				admin.PATCH("/professionals/:id/status", professionalHandler.UpdateStatus)
				admin.PUT("/professionals/:id/availability", professionalHandler.UpdateAvailability)
				admin.GET("/professionals/:id/calendar", calendarHandler.ForProfessional)

				admin.GET("/reports/summary", reportHandler.Summary)
				admin.GET("/audit-logs", auditLogsHandler.List)

				admin.POST("/api-keys", integrationHandler.CreateAPIKey)
				admin.GET("/api-keys", integrationHandler.ListAPIKeys)
				admin.DELETE("/api-keys/:id", integrationHandler.RevokeAPIKey)

				admin.POST("/webhooks", integrationHandler.CreateWebhook)
				admin.GET("/webhooks", integrationHandler.ListWebhooks)
				admin.PATCH("/webhooks/:id", integrationHandler.UpdateWebhook)
				admin.DELETE("/webhooks/:id", integrationHandler.DeleteWebhook)
			}
		}
	}
}

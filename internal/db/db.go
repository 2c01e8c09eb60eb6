package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/conexaomental/clinica-api/internal/config"
	"github.com/conexaomental/clinica-api/internal/models"
)

// um agendamento ativo por (profissional, instante); cancelados liberam o horário
const slotIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_slot
	ON appointments (professional_id, scheduled_at)
	WHERE status <> 'cancelado'
`

// NewLogger manda o log de SQL do gorm para o zap. Em produção só queries
// lentas e erros.
func NewLogger(log *zap.Logger, production bool) gormlogger.Interface {
	level := gormlogger.Warn
	if !production {
		level = gormlogger.Info
	}

	return gormlogger.New(
		zap.NewStdLog(log.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      NewLogger(log, cfg.IsProduction()),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Professional{},
		&models.Appointment{},
		&models.AuditLog{},
		&models.OutboxEvent{},
		&models.Webhook{},
		&models.APIKey{},
		&models.Payment{},
		&models.Recording{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec(slotIndex).Error; err != nil {
		return fmt.Errorf("create slot index: %w", err)
	}

	// profissionais legados sem status explícito
	if err := db.Exec(`
		UPDATE professionals
		SET status = CASE WHEN approved THEN 'approved' ELSE 'pending' END
		WHERE status IS NULL OR status = ''
	`).Error; err != nil {
		return fmt.Errorf("backfill professional status: %w", err)
	}

	return nil
}

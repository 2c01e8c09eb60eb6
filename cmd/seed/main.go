package main

import (
	"flag"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/conexaomental/clinica-api/internal/config"
	dbpkg "github.com/conexaomental/clinica-api/internal/db"
	"github.com/conexaomental/clinica-api/internal/domain/availability"
	prodomain "github.com/conexaomental/clinica-api/internal/domain/professional"
	"github.com/conexaomental/clinica-api/internal/logger"
	"github.com/conexaomental/clinica-api/internal/models"
)

var specialties = []string{
	"Ansiedade",
	"Depressão",
	"Terapia de casal",
	"TCC",
	"Psicanálise",
	"Infantil",
	"Luto",
	"Dependência química",
	"Orientação vocacional",
	"Neuropsicologia",
}

// seed cria o admin e dados de demonstração: profissionais aprovados com
// agenda semanal e pacientes com login.
func main() {
	professionals := flag.Int("professionals", 8, "profissionais aprovados")
	patients := flag.Int("patients", 30, "pacientes")
	adminEmail := flag.String("admin-email", "admin@conexaomental.com.br", "e-mail do admin")
	password := flag.String("password", "conexao123", "senha de todos os usuários criados")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := dbpkg.NewDB(cfg, log)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	_ = gofakeit.Seed(time.Now().UnixNano())

	if err := seedAdmin(db, *adminEmail, string(hash)); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	if err := seedProfessionals(db, *professionals, string(hash)); err != nil {
		log.Fatal("seed professionals", zap.Error(err))
	}
	if err := seedPatients(db, *patients, string(hash)); err != nil {
		log.Fatal("seed patients", zap.Error(err))
	}

	log.Info("seed complete",
		zap.String("admin", *adminEmail),
		zap.Int("professionals", *professionals),
		zap.Int("patients", *patients),
	)
}

func seedAdmin(db *gorm.DB, email, hash string) error {
	admin := models.User{
		ID:           uuid.New(),
		Name:         "Administração",
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	// idempotente: rodar de novo não duplica o admin
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error
}

func seedProfessionals(db *gorm.DB, count int, hash string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			name := gofakeit.Name()
			user := models.User{
				ID:           uuid.New(),
				Name:         name,
				Email:        fakeEmail(name),
				PasswordHash: hash,
				Phone:        gofakeit.Phone(),
				Role:         models.RoleProfessional,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			pro := models.Professional{
				ID:           uuid.New(),
				UserID:       user.ID,
				Name:         name,
				Email:        user.Email,
				CRP:          fmt.Sprintf("06/%06d", gofakeit.Number(10000, 999999)),
				Specialties:  pickSpecialties(),
				Bio:          gofakeit.Sentence(18),
				SessionPrice: float64(gofakeit.Number(12, 30) * 10),
				Approved:     true,
				Status:       string(prodomain.StatusApproved),
				Availability: weeklyAvailability(),
			}
			if err := tx.Create(&pro).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedPatients(db *gorm.DB, count int, hash string) error {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		users = append(users, models.User{
			ID:           uuid.New(),
			Name:         name,
			Email:        fakeEmail(name),
			PasswordHash: hash,
			Phone:        gofakeit.Phone(),
			Role:         models.RolePatient,
		})
	}
	return db.CreateInBatches(users, 100).Error
}

func pickSpecialties() []string {
	n := gofakeit.Number(1, 3)
	seen := map[string]bool{}
	out := make([]string, 0, n)
	for len(out) < n {
		s := specialties[gofakeit.Number(0, len(specialties)-1)]
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// weeklyAvailability sorteia um turno por dia útil; fim de semana fechado.
func weeklyAvailability() *availability.Config {
	shifts := []availability.DayHours{
		{Available: true, StartTime: "08:00", EndTime: "12:00"},
		{Available: true, StartTime: "13:00", EndTime: "18:00"},
		{Available: true, StartTime: "09:00", EndTime: "17:00"},
		{Available: false},
	}

	cfg := &availability.Config{Weekdays: map[availability.Weekday]availability.DayHours{}}
	for _, wd := range []availability.Weekday{
		availability.Monday,
		availability.Tuesday,
		availability.Wednesday,
		availability.Thursday,
		availability.Friday,
	} {
		cfg.Weekdays[wd] = shifts[gofakeit.Number(0, len(shifts)-1)]
	}
	cfg.Weekdays[availability.Saturday] = availability.DayHours{Available: false}
	cfg.Weekdays[availability.Sunday] = availability.DayHours{Available: false}
	return cfg
}

// e-mail único mesmo com nomes repetidos
func fakeEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(gofakeit.Username(), " ", ""))
	if local == "" {
		local = strings.ToLower(strings.Fields(name)[0])
	}
	return fmt.Sprintf("%s.%s@example.com", local, uuid.NewString()[:8])
}

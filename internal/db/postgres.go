package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/types"
	"github.com/projektl/projekt-l-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "projektl", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Faction{},
		&types.FactionStat{},
		&types.SkillDomain{},
		&types.UserSkill{},
		&types.Habit{},
		&types.HabitFaction{},
		&types.Quest{},
		&types.QuestPreferences{},
		&types.UserProfile{},
		&types.ActivityLog{},
		&types.AICallLog{},
		&types.OnboardingResponse{},
		&types.NotificationSettings{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	if err := s.seedFactions(); err != nil {
		return err
	}
	return s.seedSkillDomains()
}

func (s *PostgresService) seedFactions() error {
	factions := types.AllFactions()
	rows := make([]*types.Faction, 0, len(factions))
	for i := range factions {
		rows = append(rows, &factions[i])
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(rows).Error
}

// seedSkillDomains creates one default domain per faction so onboarding has a
// target to attach user skills to. Domain IDs are fixed so repeated startups
// are idempotent.
func (s *PostgresService) seedSkillDomains() error {
	seeds := []struct {
		id      string
		faction string
		name    string
	}{
		{"6f1ab0d0-0001-4000-8000-000000000001", types.FactionKarriere, "Beruf & Laufbahn"},
		{"6f1ab0d0-0001-4000-8000-000000000002", types.FactionKoerper, "Fitness & Gesundheit"},
		{"6f1ab0d0-0001-4000-8000-000000000003", types.FactionGeist, "Achtsamkeit & Fokus"},
		{"6f1ab0d0-0001-4000-8000-000000000004", types.FactionFinanzen, "Geld & Vermögen"},
		{"6f1ab0d0-0001-4000-8000-000000000005", types.FactionSozial, "Beziehungen"},
		{"6f1ab0d0-0001-4000-8000-000000000006", types.FactionWissen, "Lernen & Lesen"},
		{"6f1ab0d0-0001-4000-8000-000000000007", types.FactionHobby, "Kreativität & Freizeit"},
	}
	rows := make([]*types.SkillDomain, 0, len(seeds))
	for _, seed := range seeds {
		rows = append(rows, &types.SkillDomain{
			ID:        uuid.MustParse(seed.id),
			FactionID: seed.faction,
			Name:      seed.name,
		})
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(rows).Error
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

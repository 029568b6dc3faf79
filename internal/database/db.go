package database

import (
	"fmt"
	"time"

	"rayenna-crm/internal/config"
	"rayenna-crm/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects to postgres with retries, migrates the schema and seeds the
// default users.
func Init(cfg *config.Config) error {
	var (
		db  *gorm.DB
		err error
	)

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info().Int("attempt", i).Int("max", maxAttempts).Msg("connecting to DB")

		db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			log.Info().Msg("connected to DB")
			break
		}

		log.Warn().Err(err).Msg("failed to connect to DB")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return err
	}
	DB = db

	createDefaultAdmin(db, cfg.AdminUsername, cfg.AdminPassword)
	if cfg.SeedDemoUsers {
		seedDefaultUsers(db)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// the admin account only ever comes from config
func createDefaultAdmin(db *gorm.DB, username, password string) {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("failed to check admin user")
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash default admin password")
		return
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Error().Err(err).Msg("failed to create default admin")
		return
	}

	log.Info().Str("username", username).Msg("created default admin user")
}

// one demo account per non-admin role
func seedDefaultUsers(db *gorm.DB) {
	type seedUser struct {
		Username string
		Password string
		Role     models.UserRole
	}

	users := []seedUser{
		{Username: "sales@rayenna.local", Password: "Sales123!", Role: models.RoleSales},
		{Username: "ops@rayenna.local", Password: "Ops123!", Role: models.RoleOperations},
		{Username: "finance@rayenna.local", Password: "Finance123!", Role: models.RoleFinance},
		{Username: "mgmt@rayenna.local", Password: "Mgmt123!", Role: models.RoleManagement},
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			log.Error().Err(err).Str("username", u.Username).Msg("failed to check seed user")
			continue
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Str("username", u.Username).Msg("failed to hash seed password")
			continue
		}

		user := models.User{
			Username:     u.Username,
			PasswordHash: string(hash),
			Role:         u.Role,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Error().Err(err).Str("username", u.Username).Msg("failed to create seed user")
			continue
		}

		log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("created seed user")
	}
}

package database

import (
	"afilia/config"
	"afilia/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// Driver errors become gorm sentinels (ErrDuplicatedKey et al).
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Affiliate{},
		&models.CommissionRecord{},
		&models.WithdrawalRequest{},
		&models.AdminUser{},
	)
}

// SeedAdmin creates the default back-office account when none exists yet.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.AdminUser{}).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-admin"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	db.Create(&models.AdminUser{
		Email:        "admin@afilia.local",
		PasswordHash: string(hash),
	})
}

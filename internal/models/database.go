package models

import (
	"fmt"

	"github.com/formpulse/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func InitDB(cfg *config.DatabaseConfig) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&FeedbackForm{},
		&FeedbackItem{},
		&AggregateReport{},
		&ExternalComment{},
		&LLMConfig{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData(cfg *config.OpenAIConfig) error {
	// A single default LLM config so the enrichment client works out of the box.
	var llmCount int64
	DB.Model(&LLMConfig{}).Count(&llmCount)
	if llmCount == 0 && cfg.APIKey != "" {
		defaultLLM := LLMConfig{
			Name:      "default-openai",
			Provider:  "openai",
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			IsDefault: true,
			IsActive:  true,
		}
		if err := DB.Create(&defaultLLM).Error; err != nil {
			return err
		}
	}

	return nil
}

package config

import (
	"errors"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yoockh/admission/internal/models"
)

// PostgresDB holds the chat log database. Nil when the audit log is off.
var PostgresDB *gorm.DB

// ErrPostgresDisabled is returned when POSTGRES_URI is unset; the chat log is then off.
var ErrPostgresDisabled = errors.New("POSTGRES_URI environment variable is not set")

type postgresPool struct {
	maxOpen, maxIdle int
	lifetime, idle   time.Duration
}

func postgresPoolFromEnv() postgresPool {
	return postgresPool{
		maxOpen:  envInt("POSTGRES_MAX_OPEN", 20),
		maxIdle:  envInt("POSTGRES_MAX_IDLE", 5),
		lifetime: envDuration("POSTGRES_CONN_LIFETIME", 30*time.Minute),
		idle:     envDuration("POSTGRES_CONN_IDLE", 5*time.Minute),
	}
}

// gormLogLevel follows LOG_LEVEL but never goes below Warn; SQL tracing only at trace.
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "trace":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// InitPostgres opens the chat log database and migrates the chat_logs table.
func InitPostgres() error {
	uri := os.Getenv("POSTGRES_URI")
	if uri == "" {
		return ErrPostgresDisabled
	}
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(os.Getenv("LOG_LEVEL"))),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pool := postgresPoolFromEnv()
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetMaxIdleConns(min(pool.maxIdle, pool.maxOpen))
	sqlDB.SetConnMaxLifetime(pool.lifetime)
	sqlDB.SetConnMaxIdleTime(pool.idle)

	if err := db.AutoMigrate(&models.ChatLog{}); err != nil {
		_ = sqlDB.Close()
		return err
	}

	PostgresDB = db
	return nil
}

package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/points-api/internal/config"
	"github.com/yukikurage/points-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database. The handle is returned to the caller and never stored globally.
func Connect(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if log != nil {
		log.Info("database connection established", slog.String("driver", cfg.Driver), slog.String("name", cfg.Name))
	}
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// AllModels lists every table owned by the service, in creation order.
func AllModels() []any {
	return []any{
		&models.User{},
		&models.Admin{},
		&models.Task{},
		&models.TaskSubmission{},
		&models.TaskCompletion{},
		&models.Invite{},
		&models.Notification{},
		&models.Announcement{},
		&models.CarouselImage{},
	}
}

// Migrate creates or updates the schema and makes sure the uniqueness guards exist.
func Migrate(db *gorm.DB, log *slog.Logger) error {
	if log != nil {
		log.Info("running database migrations")
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := EnsureIndexes(db, log); err != nil {
		return err
	}
	if log != nil {
		log.Info("database migrations completed")
	}
	return nil
}

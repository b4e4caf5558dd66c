package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viktoriatyapkova/RPM/models"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and applies SQLite pragmas.
// The two many-to-many join tables (watchlist, watched) are created by GORM
// alongside the entities, with a composite (user_id, movie_id) primary key,
// so the same pair can never appear twice in one list.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		}
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.Movie{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

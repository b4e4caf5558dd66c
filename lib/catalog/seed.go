package catalog

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/viktoriatyapkova/RPM/lib/kinopoisk"
	"github.com/viktoriatyapkova/RPM/models"
	"gorm.io/gorm"
)

// seedIDs are the Kinopoisk identifiers the catalog is built from.
var seedIDs = []int{
	8244,
	4489198,
	5275429,
	258687,
	677893,
	1355059,
	535341,
	361,
	4370148,
	255611,
	463724,
}

// Fetcher retrieves a single movie from the metadata provider. The seeder
// depends on this rather than the concrete client so it can run in tests
// without network access.
type Fetcher interface {
	FetchMovie(ctx context.Context, externalID int) (*kinopoisk.Movie, error)
}

// Seed populates the movie catalog once. It is a no-op when the table already
// has rows; otherwise it fetches every seed id and bulk-inserts the results.
// A single failed fetch aborts the whole run, leaving no partial catalog.
func Seed(ctx context.Context, db *gorm.DB, fetcher Fetcher, logger *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Movie{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count movies: %w", err)
	}
	if count > 0 {
		logger.Info("Catalog already seeded", slog.Int64("movies", count))
		return nil
	}

	movies := make([]models.Movie, 0, len(seedIDs))
	for _, id := range seedIDs {
		info, err := fetcher.FetchMovie(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch movie %d: %w", id, err)
		}
		movies = append(movies, FromProvider(info))
	}

	if err := db.WithContext(ctx).Create(&movies).Error; err != nil {
		return fmt.Errorf("failed to insert catalog: %w", err)
	}

	logger.Info("Seeded movie catalog", slog.Int("movies", len(movies)))
	return nil
}

// FromProvider maps a provider payload onto a catalog row. Missing provider
// fields stay null; name lists collapse into the comma-delimited columns.
func FromProvider(info *kinopoisk.Movie) models.Movie {
	movie := models.Movie{
		Title:           info.Name,
		Year:            info.Year,
		Description:     info.Description,
		KinopoiskRating: info.RatingKP(),
		PosterURL:       info.PosterURL(),
	}
	movie.Genres = joined(info.GenreNames())
	movie.Actors = joined(info.ActorNames())
	movie.Director = joined(info.DirectorNames())
	return movie
}

func joined(names []string) *string {
	if len(names) == 0 {
		return nil
	}
	s := strings.Join(names, ", ")
	return &s
}

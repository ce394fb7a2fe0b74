package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type FavouritesRepository struct {
	db *sql.DB
}

func NewFavouritesRepository(db *sql.DB) *FavouritesRepository {
	return &FavouritesRepository{db: db}
}

func (r *FavouritesRepository) Add(ctx context.Context, fav domain.FavouriteRecord) (domain.FavouriteRecord, error) {
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favourites(
			user_id, episode_id, show_id, show_title,
			episode_title, season, episode_number, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`,
		fav.UserID, fav.EpisodeID, fav.ShowID, fav.ShowTitle,
		fav.EpisodeTitle, fav.Season, fav.EpisodeNumber,
		fav.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "favourites") {
			return domain.FavouriteRecord{}, ports.ErrConflict
		}
		return domain.FavouriteRecord{}, err
	}
	return fav, nil
}

func (r *FavouritesRepository) Remove(ctx context.Context, userID, episodeID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM favourites WHERE user_id = ? AND episode_id = ?
	`, userID, episodeID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *FavouritesRepository) List(ctx context.Context, userID string) ([]domain.FavouriteRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, episode_id, show_id, show_title,
			episode_title, season, episode_number, created_at
		FROM favourites
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.FavouriteRecord, 0)
	for rows.Next() {
		var fav domain.FavouriteRecord
		var created string
		if err := rows.Scan(
			&fav.UserID, &fav.EpisodeID, &fav.ShowID, &fav.ShowTitle,
			&fav.EpisodeTitle, &fav.Season, &fav.EpisodeNumber, &created,
		); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			fav.CreatedAt = t
		}
		out = append(out, fav)
	}
	return out, rows.Err()
}

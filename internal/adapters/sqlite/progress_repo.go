package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) Get(ctx context.Context, userID, episodeID string) (domain.ProgressRecord, error) {
	var rec domain.ProgressRecord
	var finished int
	var updated string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, episode_id, progress_time, finished, updated_at
		FROM user_audio_progress
		WHERE user_id = ? AND episode_id = ?
	`, userID, episodeID).Scan(&rec.UserID, &rec.EpisodeID, &rec.ProgressTime, &finished, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProgressRecord{}, ports.ErrNotFound
		}
		return domain.ProgressRecord{}, err
	}
	rec.Finished = finished != 0
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, rec domain.ProgressRecord) (domain.ProgressRecord, error) {
	finished := 0
	if rec.Finished {
		finished = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_audio_progress(user_id, episode_id, progress_time, finished, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(user_id, episode_id) DO UPDATE SET
			progress_time = excluded.progress_time,
			finished = excluded.finished,
			updated_at = excluded.updated_at
	`, rec.UserID, rec.EpisodeID, rec.ProgressTime, finished, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	return r.Get(ctx, rec.UserID, rec.EpisodeID)
}

func (r *ProgressRepository) Delete(ctx context.Context, userID, episodeID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM user_audio_progress WHERE user_id = ? AND episode_id = ?
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

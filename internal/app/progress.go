package app

import (
	"context"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type ProgressService struct {
	repo ports.ProgressRepository
}

func NewProgressService(repo ports.ProgressRepository) *ProgressService {
	return &ProgressService{repo: repo}
}

type ProgressDTO struct {
	EpisodeID    string    `json:"episodeId"`
	ProgressTime float64   `json:"progressTime"`
	Finished     bool      `json:"finished"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toProgressDTO(rec domain.ProgressRecord) ProgressDTO {
	return ProgressDTO{
		EpisodeID:    rec.EpisodeID,
		ProgressTime: rec.ProgressTime,
		Finished:     rec.Finished,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func (s *ProgressService) Get(ctx context.Context, userID, episodeID string) (ProgressDTO, error) {
	rec, err := s.repo.Get(ctx, userID, episodeID)
	if err != nil {
		return ProgressDTO{}, err
	}
	return toProgressDTO(rec), nil
}

func (s *ProgressService) Save(ctx context.Context, userID, episodeID string, progressTime float64, finished bool) (ProgressDTO, error) {
	if userID == "" || episodeID == "" {
		return ProgressDTO{}, validationError("missing user or episode id")
	}
	if progressTime < 0 {
		return ProgressDTO{}, validationError("progressTime must be >= 0")
	}
	rec, err := s.repo.Upsert(ctx, domain.ProgressRecord{
		UserID:       userID,
		EpisodeID:    episodeID,
		ProgressTime: progressTime,
		Finished:     finished,
	})
	if err != nil {
		return ProgressDTO{}, err
	}
	return toProgressDTO(rec), nil
}

// Clear supprime la ligne (user, episode). Supprimer une progression
// absente n'est pas une erreur pour l'appelant.
func (s *ProgressService) Clear(ctx context.Context, userID, episodeID string) error {
	err := s.repo.Delete(ctx, userID, episodeID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	return err
}

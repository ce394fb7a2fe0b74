package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
)

// ProgressRepository est le magasin distant de progression d'écoute.
// Get renvoie ErrNotFound en l'absence de ligne (bénin : reprise à 0).
// Upsert est keyé sur (user, episode) : au plus une ligne par paire.
type ProgressRepository interface {
	Get(ctx context.Context, userID, episodeID string) (domain.ProgressRecord, error)
	Upsert(ctx context.Context, rec domain.ProgressRecord) (domain.ProgressRecord, error)
	// Delete renvoie ErrNotFound si aucune ligne n'existait.
	Delete(ctx context.Context, userID, episodeID string) error
}

package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
)

// FavouriteRepository gère les lignes favourites.
// Add renvoie ErrConflict si (user, episode) existe déjà : l'unicité
// est imposée par le store, pas par une lecture préalable.
type FavouriteRepository interface {
	Add(ctx context.Context, fav domain.FavouriteRecord) (domain.FavouriteRecord, error)
	// Remove renvoie ErrNotFound si aucune ligne n'existait.
	Remove(ctx context.Context, userID, episodeID string) error
	List(ctx context.Context, userID string) ([]domain.FavouriteRecord, error)
}

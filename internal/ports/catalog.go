package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
)

// CatalogSource est la source de contenu distante, en lecture seule.
type CatalogSource interface {
	Shows(ctx context.Context) ([]domain.Show, error)
	// ShowDetail renvoie ErrNotFound pour un id inconnu.
	ShowDetail(ctx context.Context, showID string) (domain.ShowDetail, error)
}

package domain

import "time"

// FavouriteRecord marque un épisode comme favori. Les titres et numéros
// sont dénormalisés pour l'affichage sans jointure avec le catalogue.
type FavouriteRecord struct {
	UserID        string
	EpisodeID     string
	ShowID        string
	ShowTitle     string
	EpisodeTitle  string
	Season        int
	EpisodeNumber int
	CreatedAt     time.Time
}

// SortMode pour favoris et shows. "all" = ordre du catalogue, shows
// uniquement.
type SortMode string

const (
	SortNone      SortMode = "all"
	SortTitleAsc  SortMode = "title-asc"
	SortTitleDesc SortMode = "title-desc"
	SortDateAsc   SortMode = "date-asc"
	SortDateDesc  SortMode = "date-desc"
)

// ParseSortMode renvoie SortNone pour une valeur vide ou inconnue.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortTitleAsc, SortTitleDesc, SortDateAsc, SortDateDesc:
		return SortMode(s)
	default:
		return SortNone
	}
}

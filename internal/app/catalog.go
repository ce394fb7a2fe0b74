package app

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CatalogService sert la liste de shows avec recherche floue, filtre
// par genre et tri. La liste est cachée en mémoire et rafraîchie par
// la maintenance ; la source distante n'est interrogée qu'au besoin.
type CatalogService struct {
	logger zerolog.Logger
	src    ports.CatalogSource
	coll   *collate.Collator

	mu        sync.Mutex
	shows     []domain.Show
	fetchedAt time.Time
}

func NewCatalogService(logger zerolog.Logger, src ports.CatalogSource) *CatalogService {
	return &CatalogService{
		logger: logger,
		src:    src,
		coll:   collate.New(language.English),
	}
}

type ShowQuery struct {
	// Search : requête floue sur titre et description. Vide = tout.
	Search string
	// Genre : nom du genre ("Comedy") ou "All"/vide pour tout.
	Genre string
	Sort  domain.SortMode
}

func (s *CatalogService) Shows(ctx context.Context, q ShowQuery) ([]domain.Show, error) {
	shows, err := s.cached(ctx)
	if err != nil {
		return nil, err
	}

	shows = filterByGenre(shows, q.Genre)
	shows = s.search(shows, q.Search)
	s.sortShows(shows, q.Sort)
	return shows, nil
}

func (s *CatalogService) ShowDetail(ctx context.Context, showID string) (domain.ShowDetail, error) {
	detail, err := s.src.ShowDetail(ctx, showID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domain.ShowDetail{}, err
		}
		return domain.ShowDetail{}, remoteUnavailable("show detail fetch failed", err)
	}
	return detail, nil
}

// Refresh recharge la liste depuis la source. En cas d'échec le cache
// précédent reste servi.
func (s *CatalogService) Refresh(ctx context.Context) error {
	shows, err := s.src.Shows(ctx)
	if err != nil {
		return remoteUnavailable("catalog refresh failed", err)
	}
	s.mu.Lock()
	s.shows = shows
	s.fetchedAt = time.Now().UTC()
	s.mu.Unlock()
	s.logger.Debug().Int("shows", len(shows)).Msg("catalog refreshed")
	return nil
}

func (s *CatalogService) cached(ctx context.Context) ([]domain.Show, error) {
	s.mu.Lock()
	have := len(s.shows) > 0
	s.mu.Unlock()
	if !have {
		if err := s.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Show, len(s.shows))
	copy(out, s.shows)
	return out, nil
}

func filterByGenre(shows []domain.Show, genre string) []domain.Show {
	genre = strings.TrimSpace(genre)
	if genre == "" || strings.EqualFold(genre, "All") {
		return shows
	}
	id, ok := domain.GenreID(genre)
	if !ok {
		// Genre inconnu : aucune correspondance possible.
		return []domain.Show{}
	}
	out := make([]domain.Show, 0, len(shows))
	for _, show := range shows {
		for _, g := range show.Genres {
			if g == id {
				out = append(out, show)
				break
			}
		}
	}
	return out
}

// search : correspondance floue avec repli unicode (RankMatchNormalizedFold),
// titre d'abord, description en secours. Les résultats sont ordonnés du
// meilleur rang au pire, le tri explicite éventuel repasse derrière.
func (s *CatalogService) search(shows []domain.Show, query string) []domain.Show {
	query = strings.TrimSpace(query)
	if query == "" {
		return shows
	}

	type ranked struct {
		show domain.Show
		rank int
	}
	matches := make([]ranked, 0, len(shows))
	for _, show := range shows {
		if r := fuzzy.RankMatchNormalizedFold(query, show.Title); r >= 0 {
			matches = append(matches, ranked{show: show, rank: r})
			continue
		}
		if r := fuzzy.RankMatchNormalizedFold(query, show.Description); r >= 0 {
			// Pénalité : une correspondance de description passe après
			// toute correspondance de titre.
			matches = append(matches, ranked{show: show, rank: r + 1<<16})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	out := make([]domain.Show, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.show)
	}
	return out
}

func (s *CatalogService) sortShows(shows []domain.Show, mode domain.SortMode) {
	switch mode {
	case domain.SortTitleAsc:
		sort.SliceStable(shows, func(i, j int) bool {
			return s.coll.CompareString(shows[i].Title, shows[j].Title) < 0
		})
	case domain.SortTitleDesc:
		sort.SliceStable(shows, func(i, j int) bool {
			return s.coll.CompareString(shows[i].Title, shows[j].Title) > 0
		})
	case domain.SortDateAsc:
		sort.SliceStable(shows, func(i, j int) bool {
			return shows[i].Updated.Before(shows[j].Updated)
		})
	case domain.SortDateDesc:
		sort.SliceStable(shows, func(i, j int) bool {
			return shows[j].Updated.Before(shows[i].Updated)
		})
	}
}

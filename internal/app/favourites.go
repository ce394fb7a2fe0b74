package app

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type FavouritesService struct {
	repo ports.FavouriteRepository
	bus  ports.EventBus
}

func NewFavouritesService(repo ports.FavouriteRepository, bus ports.EventBus) *FavouritesService {
	return &FavouritesService{repo: repo, bus: bus}
}

type FavouriteDTO struct {
	EpisodeID     string    `json:"episodeId"`
	ShowID        string    `json:"showId"`
	ShowTitle     string    `json:"showTitle"`
	EpisodeTitle  string    `json:"episodeTitle"`
	Season        int       `json:"season"`
	EpisodeNumber int       `json:"episodeNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toFavouriteDTO(f domain.FavouriteRecord) FavouriteDTO {
	return FavouriteDTO{
		EpisodeID:     f.EpisodeID,
		ShowID:        f.ShowID,
		ShowTitle:     f.ShowTitle,
		EpisodeTitle:  f.EpisodeTitle,
		Season:        f.Season,
		EpisodeNumber: f.EpisodeNumber,
		CreatedAt:     f.CreatedAt,
	}
}

type AddFavouriteRequest struct {
	ShowID        string `json:"showId"`
	ShowTitle     string `json:"showTitle"`
	EpisodeTitle  string `json:"episodeTitle"`
	Season        int    `json:"season"`
	EpisodeNumber int    `json:"episodeNumber"`
}

func (s *FavouritesService) Add(ctx context.Context, userID string, req AddFavouriteRequest) (FavouriteDTO, error) {
	if strings.TrimSpace(req.ShowID) == "" {
		return FavouriteDTO{}, validationError("missing showId")
	}
	if req.Season < 1 || req.EpisodeNumber < 1 {
		return FavouriteDTO{}, validationError("season and episodeNumber are 1-based")
	}

	fav := domain.FavouriteRecord{
		UserID:        userID,
		EpisodeID:     domain.EpisodeKey(req.ShowID, req.Season, req.EpisodeNumber),
		ShowID:        req.ShowID,
		ShowTitle:     req.ShowTitle,
		EpisodeTitle:  req.EpisodeTitle,
		Season:        req.Season,
		EpisodeNumber: req.EpisodeNumber,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := s.repo.Add(ctx, fav)
	if err != nil {
		return FavouriteDTO{}, err
	}
	s.publish("favourite.added", created)
	return toFavouriteDTO(created), nil
}

// Remove est idempotent : retirer un favori absent n'est pas une erreur.
func (s *FavouritesService) Remove(ctx context.Context, userID, episodeID string) error {
	err := s.repo.Remove(ctx, userID, episodeID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	if err == nil {
		s.publishRaw("favourite.removed", map[string]string{"episodeId": episodeID})
	}
	return err
}

func (s *FavouritesService) List(ctx context.Context, userID string, mode domain.SortMode) ([]FavouriteDTO, error) {
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sortFavourites(favs, mode)
	out := make([]FavouriteDTO, 0, len(favs))
	for _, f := range favs {
		out = append(out, toFavouriteDTO(f))
	}
	return out, nil
}

// sortFavourites trie côté client ; comparaison de titres par
// collation anglaise (équivalent localeCompare).
func sortFavourites(favs []domain.FavouriteRecord, mode domain.SortMode) {
	coll := collate.New(language.English)
	switch mode {
	case domain.SortTitleAsc:
		sort.SliceStable(favs, func(i, j int) bool {
			return coll.CompareString(favs[i].ShowTitle, favs[j].ShowTitle) < 0
		})
	case domain.SortTitleDesc:
		sort.SliceStable(favs, func(i, j int) bool {
			return coll.CompareString(favs[i].ShowTitle, favs[j].ShowTitle) > 0
		})
	case domain.SortDateAsc:
		sort.SliceStable(favs, func(i, j int) bool {
			return favs[i].CreatedAt.Before(favs[j].CreatedAt)
		})
	case domain.SortDateDesc:
		sort.SliceStable(favs, func(i, j int) bool {
			return favs[j].CreatedAt.Before(favs[i].CreatedAt)
		})
	}
}

func (s *FavouritesService) publish(topic string, fav domain.FavouriteRecord) {
	if s.bus == nil {
		return
	}
	if b, err := json.Marshal(toFavouriteDTO(fav)); err == nil {
		s.bus.Publish(topic, b)
	}
}

func (s *FavouritesService) publishRaw(topic string, payload any) {
	if s.bus == nil {
		return
	}
	if b, err := json.Marshal(payload); err == nil {
		s.bus.Publish(topic, b)
	}
}

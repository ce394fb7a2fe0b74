package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type fakeFavouriteRepo struct {
	mu   sync.Mutex
	recs map[string]domain.FavouriteRecord
}

func newFakeFavouriteRepo() *fakeFavouriteRepo {
	return &fakeFavouriteRepo{recs: make(map[string]domain.FavouriteRecord)}
}

func (f *fakeFavouriteRepo) Add(ctx context.Context, fav domain.FavouriteRecord) (domain.FavouriteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(fav.UserID, fav.EpisodeID)
	if _, ok := f.recs[k]; ok {
		return domain.FavouriteRecord{}, ports.ErrConflict
	}
	f.recs[k] = fav
	return fav, nil
}

func (f *fakeFavouriteRepo) Remove(ctx context.Context, userID, episodeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(userID, episodeID)
	if _, ok := f.recs[k]; !ok {
		return ports.ErrNotFound
	}
	delete(f.recs, k)
	return nil
}

func (f *fakeFavouriteRepo) List(ctx context.Context, userID string) ([]domain.FavouriteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.FavouriteRecord, 0, len(f.recs))
	for _, rec := range f.recs {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestFavouritesAddListRemove(t *testing.T) {
	svc := NewFavouritesService(newFakeFavouriteRepo(), nil)
	ctx := context.Background()

	req := AddFavouriteRequest{ShowID: "42", ShowTitle: "Zebra Hour", EpisodeTitle: "Pilot", Season: 1, EpisodeNumber: 3}
	dto, err := svc.Add(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if dto.EpisodeID != "42-s01-e03" {
		t.Fatalf("episodeId = %q", dto.EpisodeID)
	}

	list, err := svc.List(ctx, "user-1", domain.SortNone)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].EpisodeID != dto.EpisodeID {
		t.Fatalf("list = %+v", list)
	}

	// Doublon : rejeté, la liste ne bouge pas.
	if _, err := svc.Add(ctx, "user-1", req); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("duplicate add err = %v, want ErrConflict", err)
	}
	list, _ = svc.List(ctx, "user-1", domain.SortNone)
	if len(list) != 1 {
		t.Fatalf("list after duplicate = %d, want 1", len(list))
	}

	if err := svc.Remove(ctx, "user-1", dto.EpisodeID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list, _ = svc.List(ctx, "user-1", domain.SortNone)
	if len(list) != 0 {
		t.Fatalf("list after remove = %d, want 0", len(list))
	}

	// Retrait idempotent.
	if err := svc.Remove(ctx, "user-1", dto.EpisodeID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestFavouritesValidation(t *testing.T) {
	svc := NewFavouritesService(newFakeFavouriteRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "user-1", AddFavouriteRequest{Season: 1, EpisodeNumber: 1}); err == nil {
		t.Fatal("missing showId should fail")
	}
	if _, err := svc.Add(ctx, "user-1", AddFavouriteRequest{ShowID: "42", Season: 0, EpisodeNumber: 1}); err == nil {
		t.Fatal("season 0 should fail")
	}
	var coded *CodedError
	_, err := svc.Add(ctx, "user-1", AddFavouriteRequest{ShowID: "42", Season: 1, EpisodeNumber: 0})
	if !errors.As(err, &coded) || coded.Code != "validation_error" {
		t.Fatalf("err = %v, want validation_error", err)
	}
}

func TestFavouritesSort(t *testing.T) {
	repo := newFakeFavouriteRepo()
	svc := NewFavouritesService(repo, nil)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []domain.FavouriteRecord{
		{UserID: "u", EpisodeID: "b-s01-e01", ShowID: "b", ShowTitle: "Beta", CreatedAt: base.Add(2 * time.Hour)},
		{UserID: "u", EpisodeID: "a-s01-e01", ShowID: "a", ShowTitle: "Alpha", CreatedAt: base},
		{UserID: "u", EpisodeID: "c-s01-e01", ShowID: "c", ShowTitle: "Gamma", CreatedAt: base.Add(time.Hour)},
	}
	for _, rec := range seed {
		if _, err := repo.Add(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	byTitle, err := svc.List(ctx, "u", domain.SortTitleAsc)
	if err != nil {
		t.Fatal(err)
	}
	if byTitle[0].ShowTitle != "Alpha" || byTitle[2].ShowTitle != "Gamma" {
		t.Fatalf("title-asc order: %s .. %s", byTitle[0].ShowTitle, byTitle[2].ShowTitle)
	}

	byDate, err := svc.List(ctx, "u", domain.SortDateDesc)
	if err != nil {
		t.Fatal(err)
	}
	if byDate[0].ShowTitle != "Beta" || byDate[2].ShowTitle != "Alpha" {
		t.Fatalf("date-desc order: %s .. %s", byDate[0].ShowTitle, byDate[2].ShowTitle)
	}
}

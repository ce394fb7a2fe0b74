package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/Podkast/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/Podkast/internal/app"
	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/zerolog"
)

type stubSource struct {
	shows   []domain.Show
	details map[string]domain.ShowDetail
}

func (s *stubSource) Shows(ctx context.Context) ([]domain.Show, error) { return s.shows, nil }
func (s *stubSource) ShowDetail(ctx context.Context, id string) (domain.ShowDetail, error) {
	d, ok := s.details[id]
	if !ok {
		return domain.ShowDetail{}, ports.ErrNotFound
	}
	return d, nil
}

type testEnv struct {
	srv      *httptest.Server
	accounts *app.AccountService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bus := memorybus.New()
	t.Cleanup(bus.Close)

	logger := zerolog.Nop()
	accounts := app.NewAccountService(logger,
		sqlite.NewProfilesRepository(db.SQL),
		sqlite.NewSessionsRepository(db.SQL),
		sqlite.NewLoginCodesRepository(db.SQL),
	)
	source := &stubSource{
		shows: []domain.Show{
			{ID: "42", Title: "Zebra Hour", Genres: []int{4}, Updated: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		details: map[string]domain.ShowDetail{
			"42": {ID: "42", Title: "Zebra Hour", Seasons: []domain.Season{
				{Season: 1, Episodes: []domain.Episode{{Episode: 1, Title: "Pilot", File: "e1.mp3"}}},
			}},
		},
	}
	catalogSvc := app.NewCatalogService(logger, source)
	favourites := app.NewFavouritesService(sqlite.NewFavouritesRepository(db.SQL), bus)
	progress := app.NewProgressService(sqlite.NewProgressRepository(db.SQL))
	notices := app.NewNoticeCenter(bus)

	server := NewServer(logger, accounts, catalogSvc, favourites, progress, notices, bus)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, accounts: accounts}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, b
}

// login passe par RequestCode côté service (le code n'est jamais dans
// une réponse HTTP) puis échange le code sur /auth/verify.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	code, err := e.accounts.RequestCode(context.Background(), email)
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	resp, body := e.request(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": email, "code": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d: %s", resp.StatusCode, body)
	}
	var session app.SessionDTO
	if err := json.Unmarshal(body, &session); err != nil {
		t.Fatal(err)
	}
	if session.Token == "" {
		t.Fatal("empty session token")
	}
	return session.Token
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/v1/version", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("version status = %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodGet, "/api/v1/progress/42-s01-e01", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/v1/favourites/", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", resp.StatusCode)
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.accounts.RequestCode(context.Background(), "ada@example.com"); err != nil {
		t.Fatal(err)
	}
	resp, _ := env.request(t, http.MethodPost, "/api/v1/auth/verify", "", map[string]string{
		"email": "ada@example.com", "code": "000000",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong code status = %d, want 401", resp.StatusCode)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ada@example.com")

	resp, _ := env.request(t, http.MethodGet, "/api/v1/progress/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("initial get status = %d, want 404", resp.StatusCode)
	}

	resp, body := env.request(t, http.MethodPut, "/api/v1/progress/42-s01-e01", token, map[string]any{
		"progressTime": 83.5, "finished": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d: %s", resp.StatusCode, body)
	}

	resp, body = env.request(t, http.MethodGet, "/api/v1/progress/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var dto app.ProgressDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		t.Fatal(err)
	}
	if dto.ProgressTime != 83.5 || dto.EpisodeID != "42-s01-e01" {
		t.Fatalf("dto = %+v", dto)
	}

	// Offset négatif refusé.
	resp, _ = env.request(t, http.MethodPut, "/api/v1/progress/42-s01-e01", token, map[string]any{
		"progressTime": -1,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative offset status = %d, want 400", resp.StatusCode)
	}

	resp, _ = env.request(t, http.MethodDelete, "/api/v1/progress/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/v1/progress/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	// Suppression idempotente côté API.
	resp, _ = env.request(t, http.MethodDelete, "/api/v1/progress/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("second delete status = %d, want 204", resp.StatusCode)
	}
}

func TestFavouritesEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ada@example.com")

	add := map[string]any{
		"showId": "42", "showTitle": "Zebra Hour",
		"episodeTitle": "Pilot", "season": 1, "episodeNumber": 1,
	}
	resp, body := env.request(t, http.MethodPost, "/api/v1/favourites/", token, add)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d: %s", resp.StatusCode, body)
	}
	var fav app.FavouriteDTO
	if err := json.Unmarshal(body, &fav); err != nil {
		t.Fatal(err)
	}
	if fav.EpisodeID != "42-s01-e01" {
		t.Fatalf("episodeId = %q", fav.EpisodeID)
	}

	resp, _ = env.request(t, http.MethodPost, "/api/v1/favourites/", token, add)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}

	resp, body = env.request(t, http.MethodGet, "/api/v1/favourites/?sort=title-asc", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var list []app.FavouriteDTO
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d items, want 1", len(list))
	}

	resp, _ = env.request(t, http.MethodDelete, "/api/v1/favourites/42-s01-e01", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove status = %d, want 204", resp.StatusCode)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/api/v1/shows/?genre=Comedy", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shows status = %d", resp.StatusCode)
	}
	var shows []domain.Show
	if err := json.Unmarshal(body, &shows); err != nil {
		t.Fatal(err)
	}
	if len(shows) != 1 || shows[0].ID != "42" {
		t.Fatalf("shows = %+v", shows)
	}

	resp, _ = env.request(t, http.MethodGet, "/api/v1/shows/42", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("show detail status = %d", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/v1/shows/404", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing show status = %d, want 404", resp.StatusCode)
	}

	resp, body = env.request(t, http.MethodGet, "/api/v1/genres", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("genres status = %d", resp.StatusCode)
	}
	var genres map[int]string
	if err := json.Unmarshal(body, &genres); err != nil {
		t.Fatal(err)
	}
	if genres[4] != "Comedy" || len(genres) != 9 {
		t.Fatalf("genres = %+v", genres)
	}
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ada@example.com")

	resp, body := env.request(t, http.MethodGet, "/api/v1/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status = %d: %s", resp.StatusCode, body)
	}
	var profile app.ProfileDTO
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("email = %q", profile.Email)
	}

	resp, body = env.request(t, http.MethodPut, "/api/v1/profile", token, map[string]string{
		"username": "ada", "website": "https://example.com",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatal(err)
	}
	if profile.Username != "ada" {
		t.Fatalf("username = %q", profile.Username)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "ada@example.com")

	resp, _ := env.request(t, http.MethodPost, "/api/v1/auth/logout", token, map[string]string{})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want 204", resp.StatusCode)
	}
	resp, _ = env.request(t, http.MethodGet, "/api/v1/profile", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d, want 401", resp.StatusCode)
	}
}

// Package catalog est le client HTTP de la source de contenu
// (lecture seule) : https://podcast-api.netlify.app.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

const DefaultBaseURL = "https://podcast-api.netlify.app"

type Client struct {
	BaseURL string
	Client  *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Client: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

func (c *Client) WithBaseURL(base string) *Client {
	if strings.TrimSpace(base) != "" {
		c.BaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return c
}

// Shows récupère les résumés de tous les shows (GET /shows).
func (c *Client) Shows(ctx context.Context) ([]domain.Show, error) {
	var out []showJSON
	if err := c.getJSON(ctx, c.BaseURL+"/shows", &out); err != nil {
		return nil, err
	}
	shows := make([]domain.Show, 0, len(out))
	for _, s := range out {
		shows = append(shows, s.toDomain())
	}
	return shows, nil
}

// ShowDetail récupère un show avec ses saisons (GET /id/{showId}).
func (c *Client) ShowDetail(ctx context.Context, showID string) (domain.ShowDetail, error) {
	if strings.TrimSpace(showID) == "" {
		return domain.ShowDetail{}, ports.ErrNotFound
	}
	var out showDetailJSON
	err := c.getJSON(ctx, c.BaseURL+"/id/"+url.PathEscape(showID), &out)
	if err != nil {
		return domain.ShowDetail{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ports.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog fetch: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// Formes brutes de l'API. L'id peut arriver en nombre ou en chaîne et
// "updated" est une date ISO8601 ; on valide à la frontière plutôt que
// d'exposer du duck-typing plus loin.
type showJSON struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Genres      []int       `json:"genres"`
	Seasons     int         `json:"seasons"`
	Updated     string      `json:"updated"`
}

func (s showJSON) toDomain() domain.Show {
	return domain.Show{
		ID:          s.ID.String(),
		Title:       s.Title,
		Description: s.Description,
		Image:       s.Image,
		Genres:      s.Genres,
		Seasons:     s.Seasons,
		Updated:     parseUpdated(s.Updated),
	}
}

type showDetailJSON struct {
	ID          json.Number  `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Genres      []int        `json:"genres"`
	Seasons     []seasonJSON `json:"seasons"`
	Updated     string       `json:"updated"`
}

type seasonJSON struct {
	Season   int           `json:"season"`
	Title    string        `json:"title"`
	Image    string        `json:"image"`
	Episodes []episodeJSON `json:"episodes"`
}

type episodeJSON struct {
	Episode     int    `json:"episode"`
	Title       string `json:"title"`
	Description string `json:"description"`
	File        string `json:"file"`
}

func (d showDetailJSON) toDomain() domain.ShowDetail {
	seasons := make([]domain.Season, 0, len(d.Seasons))
	for i, s := range d.Seasons {
		season := domain.Season{
			Season: s.Season,
			Title:  s.Title,
			Image:  s.Image,
		}
		if season.Season == 0 {
			season.Season = i + 1
		}
		for _, ep := range s.Episodes {
			season.Episodes = append(season.Episodes, domain.Episode(ep))
		}
		seasons = append(seasons, season)
	}
	return domain.ShowDetail{
		ID:          d.ID.String(),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Genres:      d.Genres,
		Seasons:     seasons,
		Updated:     parseUpdated(d.Updated),
	}
}

func parseUpdated(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

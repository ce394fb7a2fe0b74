// Package reststore implémente les ports de persistance au-dessus de
// l'API HTTP du serveur : c'est le client qu'utilise le lecteur en
// ligne de commande, substituable par un fake en test comme les repos
// sqlite côté serveur.
package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type ProgressClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewProgressClient(baseURL, token string) *ProgressClient {
	return &ProgressClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type progressJSON struct {
	EpisodeID    string    `json:"episodeId"`
	ProgressTime float64   `json:"progressTime"`
	Finished     bool      `json:"finished"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *ProgressClient) Get(ctx context.Context, userID, episodeID string) (domain.ProgressRecord, error) {
	var out progressJSON
	err := c.do(ctx, http.MethodGet, c.url(episodeID), nil, &out)
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	return domain.ProgressRecord{
		UserID:       userID,
		EpisodeID:    out.EpisodeID,
		ProgressTime: out.ProgressTime,
		Finished:     out.Finished,
		UpdatedAt:    out.UpdatedAt,
	}, nil
}

func (c *ProgressClient) Upsert(ctx context.Context, rec domain.ProgressRecord) (domain.ProgressRecord, error) {
	body := map[string]any{
		"progressTime": rec.ProgressTime,
		"finished":     rec.Finished,
	}
	var out progressJSON
	err := c.do(ctx, http.MethodPut, c.url(rec.EpisodeID), body, &out)
	if err != nil {
		return domain.ProgressRecord{}, err
	}
	rec.UpdatedAt = out.UpdatedAt
	return rec, nil
}

func (c *ProgressClient) Delete(ctx context.Context, userID, episodeID string) error {
	return c.do(ctx, http.MethodDelete, c.url(episodeID), nil, nil)
}

func (c *ProgressClient) url(episodeID string) string {
	return c.BaseURL + "/api/v1/progress/" + url.PathEscape(episodeID)
}

func (c *ProgressClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("progress store: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.ErrNotFound
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 400:
		return fmt.Errorf("progress store: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

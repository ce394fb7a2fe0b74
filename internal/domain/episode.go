package domain

import (
	"fmt"
	"time"
)

// Show est le résumé renvoyé par GET /shows.
type Show struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Genres      []int     `json:"genres"`
	Seasons     int       `json:"seasons"`
	Updated     time.Time `json:"updated"`
}

// ShowDetail est renvoyé par GET /id/{showId} et ajoute les saisons.
type ShowDetail struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Genres      []int    `json:"genres"`
	Seasons     []Season `json:"seasons"`
	Updated     time.Time `json:"updated"`
}

type Season struct {
	Season   int       `json:"season"`
	Title    string    `json:"title"`
	Image    string    `json:"image"`
	Episodes []Episode `json:"episodes"`
}

type Episode struct {
	Episode     int    `json:"episode"`
	Title       string `json:"title"`
	Description string `json:"description"`
	File        string `json:"file"`
}

// EpisodeRef identifie une unité jouable. Immuable une fois obtenue
// du catalogue.
type EpisodeRef struct {
	ShowID  string
	Season  int // 1-based
	Episode int
	Title   string
	File    string
}

// Key renvoie l'identifiant composite d'épisode, stable par
// (show, saison, numéro). Le numéro d'épisode seul n'est pas unique
// entre shows.
func (r EpisodeRef) Key() string {
	return EpisodeKey(r.ShowID, r.Season, r.Episode)
}

func EpisodeKey(showID string, season, episode int) string {
	return fmt.Sprintf("%s-s%02d-e%02d", showID, season, episode)
}

// EpisodeAt sélectionne un épisode dans le détail d'un show.
// season est 1-based, episode est le numéro tel que renvoyé par l'API.
func (d ShowDetail) EpisodeAt(season, episode int) (EpisodeRef, bool) {
	if season < 1 || season > len(d.Seasons) {
		return EpisodeRef{}, false
	}
	for _, ep := range d.Seasons[season-1].Episodes {
		if ep.Episode == episode {
			return EpisodeRef{
				ShowID:  d.ID,
				Season:  season,
				Episode: ep.Episode,
				Title:   ep.Title,
				File:    ep.File,
			}, true
		}
	}
	return EpisodeRef{}, false
}

package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ProgressRecord est la position de reprise d'un utilisateur pour un
// épisode. Au plus une ligne par (user, episode), upsert sur cette clé.
type ProgressRecord struct {
	UserID    string
	EpisodeID string

	// ProgressTime en secondes, ≥ 0.
	ProgressTime float64

	// Finished est informatif. Colonne réservée : écrite telle quelle,
	// jamais déduite d'un seuil de complétion.
	Finished bool

	UpdatedAt time.Time
}

// FlushState est l'état de la machine d'écriture débouncée :
// Idle → PendingWrite (timer armé) → Idle.
type FlushState string

const (
	FlushIdle    FlushState = "idle"
	FlushPending FlushState = "pending"
)

var ErrInvalidFlushTransition = errors.New("invalid flush state transition")

func CanFlushTransition(from, to FlushState) bool {
	if from == to {
		return true
	}
	switch from {
	case FlushIdle:
		return to == FlushPending
	case FlushPending:
		return to == FlushIdle
	default:
		return false
	}
}

// FormatTimestamp rend un offset en "minutes:secondes", secondes sur
// deux chiffres. 65 → "1:05". Les valeurs négatives ou NaN rendent "0:00".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	whole := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}

package ports

import (
	"context"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
)

type ProfileRepository interface {
	Get(ctx context.Context, id string) (domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	// Upsert crée ou met à jour le profil (clé : id).
	Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (domain.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type LoginCodeRepository interface {
	// Put remplace le code en attente pour cet email.
	Put(ctx context.Context, c domain.LoginCode) error
	Get(ctx context.Context, email string) (domain.LoginCode, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

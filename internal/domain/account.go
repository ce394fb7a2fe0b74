package domain

import "time"

// Profile est la table profiles du compte utilisateur.
type Profile struct {
	ID        string
	Email     string
	Username  string
	Website   string
	AvatarURL string
	UpdatedAt time.Time
}

// Session est un jeton de session opaque avec expiration.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// LoginCode est un code de connexion à usage unique, stocké haché.
type LoginCode struct {
	Email     string
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c LoginCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// AuthState est le cycle de vie de la session côté client :
// signedOut → pending → signedIn, jamais d'état global ambiant.
type AuthState string

const (
	SignedOut AuthState = "signedOut"
	Pending   AuthState = "pending"
	SignedIn  AuthState = "signedIn"
)

func CanAuthTransition(from, to AuthState) bool {
	if from == to {
		return true
	}
	switch from {
	case SignedOut:
		return to == Pending
	case Pending:
		return to == SignedIn || to == SignedOut
	case SignedIn:
		return to == SignedOut
	default:
		return false
	}
}

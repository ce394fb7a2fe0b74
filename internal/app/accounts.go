package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultCodeTTL    = 10 * time.Minute
	defaultSessionTTL = 24 * time.Hour
)

// AccountService implémente la connexion par code email (équivalent
// magic link) : RequestCode génère un code à usage unique stocké haché,
// VerifyCode l'échange contre un jeton de session.
type AccountService struct {
	logger   zerolog.Logger
	profiles ports.ProfileRepository
	sessions ports.SessionRepository
	codes    ports.LoginCodeRepository

	CodeTTL    time.Duration
	SessionTTL time.Duration
	now        func() time.Time
}

func NewAccountService(logger zerolog.Logger, profiles ports.ProfileRepository, sessions ports.SessionRepository, codes ports.LoginCodeRepository) *AccountService {
	return &AccountService{
		logger:     logger,
		profiles:   profiles,
		sessions:   sessions,
		codes:      codes,
		CodeTTL:    defaultCodeTTL,
		SessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
}

// WithClock injecte une horloge de test.
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	if now != nil {
		s.now = now
	}
	return s
}

// RequestCode valide l'email avant tout appel distant puis dépose un
// code haché. Le code en clair est renvoyé à l'appelant pour livraison
// (ici : loggé, pas de SMTP).
func (s *AccountService) RequestCode(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationError("missing email")
	}
	if !strings.Contains(email, "@") {
		return "", validationError("invalid email")
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	err = s.codes.Put(ctx, domain.LoginCode{
		Email:     email,
		CodeHash:  string(hash),
		CreatedAt: now,
		ExpiresAt: now.Add(s.CodeTTL),
	})
	if err != nil {
		return "", remoteUnavailable("could not store login code", err)
	}
	s.logger.Info().Str("email", email).Msg("login code issued")
	return code, nil
}

type SessionDTO struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VerifyCode échange (email, code) contre une session. Le code est
// consommé quel que soit le résultat d'un essai réussi ; un code faux
// ou périmé renvoie invalid_code sans préciser lequel.
func (s *AccountService) VerifyCode(ctx context.Context, email, code string) (SessionDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(code) == "" {
		return SessionDTO{}, validationError("missing email or code")
	}

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return SessionDTO{}, &CodedError{Code: "invalid_code", Message: "invalid or expired code"}
		}
		return SessionDTO{}, remoteUnavailable("could not read login code", err)
	}
	now := s.now().UTC()
	if stored.Expired(now) {
		_ = s.codes.Delete(ctx, email)
		return SessionDTO{}, &CodedError{Code: "invalid_code", Message: "invalid or expired code"}
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		return SessionDTO{}, &CodedError{Code: "invalid_code", Message: "invalid or expired code"}
	}
	_ = s.codes.Delete(ctx, email)

	profile, err := s.ensureProfile(ctx, email)
	if err != nil {
		return SessionDTO{}, err
	}

	token, err := generateToken()
	if err != nil {
		return SessionDTO{}, err
	}
	session := domain.Session{
		Token:     token,
		UserID:    profile.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return SessionDTO{}, remoteUnavailable("could not create session", err)
	}
	return SessionDTO{Token: session.Token, UserID: session.UserID, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate résout un jeton de session. Une session périmée est
// purgée et renvoie ErrExpired.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Session{}, ports.ErrNotFound
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Expired(s.now().UTC()) {
		_ = s.sessions.Delete(ctx, token)
		return domain.Session{}, ports.ErrExpired
	}
	return session, nil
}

// SignOut est idempotent.
func (s *AccountService) SignOut(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, ports.ErrNotFound) {
		return nil
	}
	return err
}

type ProfileDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Website   string    `json:"website"`
	AvatarURL string    `json:"avatarUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProfileDTO(p domain.Profile) ProfileDTO {
	return ProfileDTO{
		ID:        p.ID,
		Email:     p.Email,
		Username:  p.Username,
		Website:   p.Website,
		AvatarURL: p.AvatarURL,
		UpdatedAt: p.UpdatedAt,
	}
}

func (s *AccountService) Profile(ctx context.Context, userID string) (ProfileDTO, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	return toProfileDTO(p), nil
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatarUrl"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (ProfileDTO, error) {
	existing, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	existing.Username = strings.TrimSpace(req.Username)
	existing.Website = strings.TrimSpace(req.Website)
	existing.AvatarURL = strings.TrimSpace(req.AvatarURL)
	existing.UpdatedAt = s.now().UTC()

	updated, err := s.profiles.Upsert(ctx, existing)
	if err != nil {
		return ProfileDTO{}, err
	}
	return toProfileDTO(updated), nil
}

func (s *AccountService) ensureProfile(ctx context.Context, email string) (domain.Profile, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return domain.Profile{}, remoteUnavailable("could not read profile", err)
	}
	created, err := s.profiles.Upsert(ctx, domain.Profile{
		ID:        xid.New().String(),
		Email:     email,
		UpdatedAt: s.now().UTC(),
	})
	if err != nil {
		return domain.Profile{}, remoteUnavailable("could not create profile", err)
	}
	return created, nil
}

// generateCode : 6 chiffres via crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// generateToken : 32 octets aléatoires en base64 URL-safe.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

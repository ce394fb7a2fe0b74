package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
	"github.com/rs/zerolog"
)

type fakeProfileRepo struct {
	mu   sync.Mutex
	recs map[string]domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{recs: make(map[string]domain.Profile)}
}

func (f *fakeProfileRepo) Get(ctx context.Context, id string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.recs[id]
	if !ok {
		return domain.Profile{}, ports.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.recs {
		if p.Email == email {
			return p, nil
		}
	}
	return domain.Profile{}, ports.ErrNotFound
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[p.ID] = p
	return p, nil
}

type fakeSessionRepo struct {
	mu   sync.Mutex
	recs map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{recs: make(map[string]domain.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[s.Token] = s
	return nil
}

func (f *fakeSessionRepo) Get(ctx context.Context, token string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.recs[token]
	if !ok {
		return domain.Session{}, ports.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recs[token]; !ok {
		return ports.ErrNotFound
	}
	delete(f.recs, token)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for token, s := range f.recs {
		if s.Expired(now) {
			delete(f.recs, token)
			n++
		}
	}
	return n, nil
}

type fakeLoginCodeRepo struct {
	mu   sync.Mutex
	recs map[string]domain.LoginCode
}

func newFakeLoginCodeRepo() *fakeLoginCodeRepo {
	return &fakeLoginCodeRepo{recs: make(map[string]domain.LoginCode)}
}

func (f *fakeLoginCodeRepo) Put(ctx context.Context, c domain.LoginCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[c.Email] = c
	return nil
}

func (f *fakeLoginCodeRepo) Get(ctx context.Context, email string) (domain.LoginCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.recs[email]
	if !ok {
		return domain.LoginCode{}, ports.ErrNotFound
	}
	return c, nil
}

func (f *fakeLoginCodeRepo) Delete(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, email)
	return nil
}

func (f *fakeLoginCodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for email, c := range f.recs {
		if c.Expired(now) {
			delete(f.recs, email)
			n++
		}
	}
	return n, nil
}

func newTestAccounts() *AccountService {
	return NewAccountService(zerolog.Nop(), newFakeProfileRepo(), newFakeSessionRepo(), newFakeLoginCodeRepo())
}

func TestRequestCodeValidation(t *testing.T) {
	svc := newTestAccounts()
	ctx := context.Background()

	var coded *CodedError
	_, err := svc.RequestCode(ctx, "")
	if !errors.As(err, &coded) || coded.Code != "validation_error" {
		t.Fatalf("empty email err = %v", err)
	}
	if _, err := svc.RequestCode(ctx, "   "); err == nil {
		t.Fatal("blank email should fail")
	}
	if _, err := svc.RequestCode(ctx, "not-an-email"); err == nil {
		t.Fatal("email without @ should fail")
	}
}

func TestLoginFlow(t *testing.T) {
	svc := newTestAccounts()
	ctx := context.Background()

	code, err := svc.RequestCode(ctx, "Ada@Example.COM")
	if err != nil {
		t.Fatalf("request code: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code = %q, want 6 digits", code)
	}

	// Mauvais code d'abord : refusé sans consommer le bon.
	if _, err := svc.VerifyCode(ctx, "ada@example.com", "000000"); err == nil {
		t.Fatal("wrong code should fail")
	}

	session, err := svc.VerifyCode(ctx, "ada@example.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if session.Token == "" || session.UserID == "" {
		t.Fatalf("incomplete session: %+v", session)
	}

	// Le code est à usage unique.
	if _, err := svc.VerifyCode(ctx, "ada@example.com", code); err == nil {
		t.Fatal("code reuse should fail")
	}

	resolved, err := svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if resolved.UserID != session.UserID {
		t.Fatalf("userID = %q, want %q", resolved.UserID, session.UserID)
	}

	profile, err := svc.Profile(ctx, session.UserID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("email = %q (normalisation)", profile.Email)
	}

	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("post-signout authenticate = %v", err)
	}
	// SignOut idempotent.
	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("second signout: %v", err)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	svc := newTestAccounts()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	code, err := svc.RequestCode(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(svc.CodeTTL + time.Minute)
	var coded *CodedError
	_, err = svc.VerifyCode(ctx, "ada@example.com", code)
	if !errors.As(err, &coded) || coded.Code != "invalid_code" {
		t.Fatalf("expired code err = %v", err)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	svc := newTestAccounts()
	ctx := context.Background()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	code, err := svc.RequestCode(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	session, err := svc.VerifyCode(ctx, "ada@example.com", code)
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(svc.SessionTTL + time.Minute)
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ports.ErrExpired) {
		t.Fatalf("expired session err = %v", err)
	}
	// La session périmée est purgée au passage.
	if _, err := svc.Authenticate(ctx, session.Token); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("purged session err = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestAccounts()
	ctx := context.Background()

	code, err := svc.RequestCode(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	session, err := svc.VerifyCode(ctx, "ada@example.com", code)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateProfile(ctx, session.UserID, UpdateProfileRequest{
		Username:  "  ada  ",
		Website:   "https://example.com",
		AvatarURL: "https://example.com/a.png",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "ada" {
		t.Fatalf("username = %q", updated.Username)
	}

	got, err := svc.Profile(ctx, session.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Website != "https://example.com" {
		t.Fatalf("website = %q", got.Website)
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/Podkast/internal/domain"
	"github.com/Guilhem-Bonnet/Podkast/internal/ports"
)

type ProfilesRepository struct {
	db *sql.DB
}

func NewProfilesRepository(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

func (r *ProfilesRepository) Get(ctx context.Context, id string) (domain.Profile, error) {
	return r.get(ctx, `WHERE id = ?`, id)
}

func (r *ProfilesRepository) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	return r.get(ctx, `WHERE email = ?`, email)
}

func (r *ProfilesRepository) get(ctx context.Context, where string, arg any) (domain.Profile, error) {
	var p domain.Profile
	var updated string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, website, avatar_url, updated_at
		FROM profiles `+where,
		arg,
	).Scan(&p.ID, &p.Email, &p.Username, &p.Website, &p.AvatarURL, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Profile{}, ports.ErrNotFound
		}
		return domain.Profile{}, err
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		p.UpdatedAt = t
	}
	return p, nil
}

func (r *ProfilesRepository) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles(id, email, username, website, avatar_url, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			website = excluded.website,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at
	`, p.ID, p.Email, p.Username, p.Website, p.AvatarURL, p.UpdatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err, "profiles") {
			return domain.Profile{}, ports.ErrConflict
		}
		return domain.Profile{}, err
	}
	return r.Get(ctx, p.ID)
}

type SessionsRepository struct {
	db *sql.DB
}

func NewSessionsRepository(db *sql.DB) *SessionsRepository {
	return &SessionsRepository{db: db}
}

func (r *SessionsRepository) Create(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions(token, user_id, created_at, expires_at)
		VALUES(?, ?, ?, ?)
	`, s.Token, s.UserID,
		s.CreatedAt.UTC().Format(time.RFC3339),
		s.ExpiresAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (r *SessionsRepository) Get(ctx context.Context, token string) (domain.Session, error) {
	var s domain.Session
	var created, expires string
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?
	`, token).Scan(&s.Token, &s.UserID, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, ports.ErrNotFound
		}
		return domain.Session{}, err
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, expires); err == nil {
		s.ExpiresAt = t
	}
	return s, nil
}

func (r *SessionsRepository) Delete(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *SessionsRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type LoginCodesRepository struct {
	db *sql.DB
}

func NewLoginCodesRepository(db *sql.DB) *LoginCodesRepository {
	return &LoginCodesRepository{db: db}
}

func (r *LoginCodesRepository) Put(ctx context.Context, c domain.LoginCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_codes(email, code_hash, created_at, expires_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			code_hash = excluded.code_hash,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, c.Email, c.CodeHash,
		c.CreatedAt.UTC().Format(time.RFC3339),
		c.ExpiresAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (r *LoginCodesRepository) Get(ctx context.Context, email string) (domain.LoginCode, error) {
	var c domain.LoginCode
	var created, expires string
	err := r.db.QueryRowContext(ctx, `
		SELECT email, code_hash, created_at, expires_at FROM login_codes WHERE email = ?
	`, email).Scan(&c.Email, &c.CodeHash, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LoginCode{}, ports.ErrNotFound
		}
		return domain.LoginCode{}, err
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		c.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, expires); err == nil {
		c.ExpiresAt = t
	}
	return c, nil
}

func (r *LoginCodesRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM login_codes WHERE email = ?`, email)
	return err
}

func (r *LoginCodesRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_codes WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

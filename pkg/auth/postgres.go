package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/manofwisdom/auth/pkg/pg"
)

// PostgresStorage implements Storage over a pgx connection pool. The
// schema lives in internal/db/migrations.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates the repository.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

func (s *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, name, email_verified_at, created_at, updated_at
		 FROM users WHERE email = $1`, email)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &u, nil
}

func (s *PostgresStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, name, email_verified_at, created_at, updated_at
		 FROM users WHERE id = $1`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &u, nil
}

func (s *PostgresStorage) CreateUser(ctx context.Context, user *User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SetUserName(ctx context.Context, id uuid.UUID, name string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	return nil
}

func (s *PostgresStorage) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET email_verified_at = $2, updated_at = now()
		 WHERE id = $1 AND email_verified_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("update email verified: %w", err)
	}
	return nil
}

func (s *PostgresStorage) CreateMagicLink(ctx context.Context, link *MagicLink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO magic_links (id, user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		link.ID, link.UserID, link.Token, link.ExpiresAt, link.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert magic link: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetMagicLinkByToken(ctx context.Context, token string) (*MagicLink, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token, expires_at, used_at, created_at
		 FROM magic_links WHERE token = $1`, token)

	var m MagicLink
	if err := row.Scan(&m.ID, &m.UserID, &m.Token, &m.ExpiresAt, &m.UsedAt, &m.CreatedAt); err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrLinkInvalid
		}
		return nil, fmt.Errorf("query magic link: %w", err)
	}
	return &m, nil
}

// ClaimMagicLink is the atomic single-use guard: the conditional
// UPDATE succeeds for exactly one of any set of racing verifications.
func (s *PostgresStorage) ClaimMagicLink(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE magic_links SET used_at = $2
		 WHERE id = $1 AND used_at IS NULL`, id, usedAt)
	if err != nil {
		return false, fmt.Errorf("claim magic link: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStorage) CreateSession(ctx context.Context, session *Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.TokenHash, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT s.id, s.user_id, s.token_hash, s.expires_at, s.created_at,
		        u.id, u.email, u.name, u.email_verified_at, u.created_at, u.updated_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = $1`, tokenHash)

	var sess Session
	var u User
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.TokenHash, &sess.ExpiresAt, &sess.CreatedAt,
		&u.ID, &u.Email, &u.Name, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	sess.User = &u
	return &sess, nil
}

func (s *PostgresStorage) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStorage) DeleteStaleMagicLinks(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM magic_links WHERE used_at IS NOT NULL OR expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete stale magic links: %w", err)
	}
	return tag.RowsAffected(), nil
}

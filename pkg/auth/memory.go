package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage for tests and local
// development. All operations, including the magic-link claim, run
// under one mutex, giving the same exactly-once guarantee the
// conditional UPDATE provides in PostgreSQL.
type MemoryStorage struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*User
	userEmails map[string]uuid.UUID
	magicLinks map[string]*MagicLink // keyed by raw token
	sessions   map[string]*Session   // keyed by token hash
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:      make(map[uuid.UUID]*User),
		userEmails: make(map[string]uuid.UUID),
		magicLinks: make(map[string]*MagicLink),
		sessions:   make(map[string]*Session),
	}
}

func (s *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.userEmails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *MemoryStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStorage) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.userEmails[user.Email]; ok {
		return ErrEmailTaken
	}

	copied := *user
	s.users[user.ID] = &copied
	s.userEmails[user.Email] = user.ID
	return nil
}

func (s *MemoryStorage) SetUserName(ctx context.Context, id uuid.UUID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerifiedAt = &at
	u.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStorage) CreateMagicLink(ctx context.Context, link *MagicLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *link
	s.magicLinks[link.Token] = &copied
	return nil
}

func (s *MemoryStorage) GetMagicLinkByToken(ctx context.Context, token string) (*MagicLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.magicLinks[token]
	if !ok {
		return nil, ErrLinkInvalid
	}
	copied := *link
	return &copied, nil
}

func (s *MemoryStorage) ClaimMagicLink(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, link := range s.magicLinks {
		if link.ID == id {
			if link.UsedAt != nil {
				return false, nil
			}
			at := usedAt
			link.UsedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStorage) CreateSession(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	copied.Token = "" // raw token is never at rest
	copied.User = nil
	s.sessions[session.TokenHash] = &copied
	return nil
}

func (s *MemoryStorage) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	copied := *sess
	if u, ok := s.users[sess.UserID]; ok {
		user := *u
		copied.User = &user
	}
	return &copied, nil
}

func (s *MemoryStorage) DeleteSession(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, tokenHash)
	return nil
}

func (s *MemoryStorage) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStorage) DeleteStaleMagicLinks(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for tok, link := range s.magicLinks {
		if link.UsedAt != nil || now.After(link.ExpiresAt) {
			delete(s.magicLinks, tok)
			n++
		}
	}
	return n, nil
}

// SessionCount reports stored sessions. Test helper.
func (s *MemoryStorage) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// MagicLinkCount reports stored magic links. Test helper.
func (s *MemoryStorage) MagicLinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.magicLinks)
}

// UserCount reports stored users. Test helper.
func (s *MemoryStorage) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

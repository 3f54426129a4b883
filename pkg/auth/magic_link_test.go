package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manofwisdom/auth/pkg/auth"
	"github.com/manofwisdom/auth/pkg/email"
	"github.com/manofwisdom/auth/pkg/token"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []email.SendParams
	err  error
}

func (f *fakeSender) SendEmail(_ context.Context, params email.SendParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, params)
	return nil
}

func (f *fakeSender) last(t *testing.T) email.SendParams {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// staleReadStorage reports the first n user lookups as not-found even
// when the user exists, reproducing the window where a concurrent
// request inserts the same email between lookup and insert.
type staleReadStorage struct {
	*auth.MemoryStorage
	mu     sync.Mutex
	misses int
}

func (s *staleReadStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	if s.misses > 0 {
		s.misses--
		s.mu.Unlock()
		return nil, auth.ErrUserNotFound
	}
	s.mu.Unlock()
	return s.MemoryStorage.GetUserByEmail(ctx, email)
}

func testConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.BaseURL = "https://wisdom.manofwisdom.co"
	return cfg
}

func newTestServices(t *testing.T, opts ...auth.MagicLinkOption) (*auth.MagicLinkService, *auth.SessionManager, *auth.MemoryStorage, *fakeSender) {
	t.Helper()

	storage := auth.NewMemoryStorage()
	cfg := testConfig()
	sender := &fakeSender{}

	// Pin the dice roll above the threshold so background sweeps never
	// race test assertions about row counts.
	sessions := auth.NewSessionManager(storage, cfg,
		auth.WithCleanupChance(func() float64 { return 1.0 }),
	)
	links := auth.NewMagicLinkService(storage, sessions, sender, cfg, opts...)

	return links, sessions, storage, sender
}

func TestMagicLinkService_Create(t *testing.T) {
	t.Parallel()

	t.Run("issues link and creates user", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)

		req, err := links.Create(context.Background(), "Alice@Example.com ", "Alice")
		require.NoError(t, err)

		assert.Equal(t, "alice@example.com", req.Email)
		assert.True(t, token.Valid(req.Token))
		assert.Equal(t, 1, storage.UserCount())
		assert.Equal(t, 1, storage.MagicLinkCount())

		user, err := storage.GetUserByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Nil(t, user.EmailVerifiedAt)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)

		_, err := links.Create(context.Background(), "not-an-email", "")
		require.ErrorIs(t, err, auth.ErrInvalidEmail)
		assert.Equal(t, 0, storage.UserCount())
	})

	t.Run("second request reuses the user", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)

		first, err := links.Create(context.Background(), "bob@example.com", "")
		require.NoError(t, err)
		second, err := links.Create(context.Background(), "BOB@example.com", "")
		require.NoError(t, err)

		assert.Equal(t, first.UserID, second.UserID)
		assert.NotEqual(t, first.Token, second.Token)
		assert.Equal(t, 1, storage.UserCount())
		assert.Equal(t, 2, storage.MagicLinkCount())
	})

	t.Run("recovers when a concurrent signup wins the insert", func(t *testing.T) {
		t.Parallel()

		storage := auth.NewMemoryStorage()
		racing := &staleReadStorage{MemoryStorage: storage, misses: 1}
		cfg := testConfig()
		sessions := auth.NewSessionManager(racing, cfg,
			auth.WithCleanupChance(func() float64 { return 1.0 }),
		)
		links := auth.NewMagicLinkService(racing, sessions, &fakeSender{}, cfg)
		ctx := context.Background()

		// The other request has already created the user, but our
		// lookup does not see it yet; the insert collides instead.
		existing := &auth.User{ID: uuid.New(), Email: "race@example.com"}
		require.NoError(t, storage.CreateUser(ctx, existing))

		req, err := links.Create(ctx, "race@example.com", "")
		require.NoError(t, err)

		assert.Equal(t, existing.ID, req.UserID)
		assert.Equal(t, 1, storage.UserCount())
		assert.Equal(t, 1, storage.MagicLinkCount())
	})

	t.Run("backfills missing name without overwriting", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)
		ctx := context.Background()

		_, err := links.Create(ctx, "carol@example.com", "")
		require.NoError(t, err)

		_, err = links.Create(ctx, "carol@example.com", "Carol")
		require.NoError(t, err)
		user, err := storage.GetUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Carol", user.Name)

		_, err = links.Create(ctx, "carol@example.com", "Someone Else")
		require.NoError(t, err)
		user, err = storage.GetUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Carol", user.Name)
	})
}

func TestMagicLinkService_Verify(t *testing.T) {
	t.Parallel()

	t.Run("opens session and verifies email", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)
		ctx := context.Background()

		req, err := links.Create(ctx, "dave@example.com", "Dave")
		require.NoError(t, err)

		session, err := links.Verify(ctx, req.Token)
		require.NoError(t, err)

		assert.Equal(t, req.UserID, session.UserID)
		assert.True(t, token.Valid(session.Token))
		require.NotNil(t, session.User)
		assert.Equal(t, "dave@example.com", session.User.Email)
		assert.NotNil(t, session.User.EmailVerifiedAt)
		assert.Equal(t, 1, storage.SessionCount())
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		t.Parallel()

		links, _, _, _ := newTestServices(t)

		_, err := links.Verify(context.Background(), "deadbeef")
		require.ErrorIs(t, err, auth.ErrLinkInvalid)
	})

	t.Run("rejects reuse", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)
		ctx := context.Background()

		req, err := links.Create(ctx, "erin@example.com", "")
		require.NoError(t, err)

		_, err = links.Verify(ctx, req.Token)
		require.NoError(t, err)

		_, err = links.Verify(ctx, req.Token)
		require.ErrorIs(t, err, auth.ErrLinkAlreadyUsed)
		assert.Equal(t, 1, storage.SessionCount())
	})

	t.Run("rejects expired link", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		clock := func() time.Time { return now }
		links, _, _, _ := newTestServices(t, auth.WithMagicLinkClock(func() time.Time { return clock() }))
		ctx := context.Background()

		req, err := links.Create(ctx, "frank@example.com", "")
		require.NoError(t, err)

		clock = func() time.Time { return now.Add(16 * time.Minute) }

		_, err = links.Verify(ctx, req.Token)
		require.ErrorIs(t, err, auth.ErrLinkExpired)
	})

	t.Run("concurrent verification yields one session", func(t *testing.T) {
		t.Parallel()

		links, _, storage, _ := newTestServices(t)
		ctx := context.Background()

		req, err := links.Create(ctx, "grace@example.com", "")
		require.NoError(t, err)

		const workers = 20
		var wg sync.WaitGroup
		results := make(chan error, workers)

		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := links.Verify(ctx, req.Token)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var succeeded int
		for err := range results {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, auth.ErrLinkAlreadyUsed)
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, storage.SessionCount())
	})
}

func TestMagicLinkService_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("builds verification URL", func(t *testing.T) {
		t.Parallel()

		links, _, _, sender := newTestServices(t)
		ctx := context.Background()

		req, err := links.Create(ctx, "henry@example.com", "")
		require.NoError(t, err)

		require.NoError(t, links.SendEmail(ctx, req.Email, req.Token))

		sent := sender.last(t)
		assert.Equal(t, "henry@example.com", sent.SendTo)
		assert.Contains(t, sent.BodyHTML, "https://wisdom.manofwisdom.co/verify?token="+req.Token)
	})

	t.Run("propagates provider failure", func(t *testing.T) {
		t.Parallel()

		links, _, _, sender := newTestServices(t)
		sender.err = assert.AnError

		err := links.SendEmail(context.Background(), "ivy@example.com", "token")
		require.ErrorIs(t, err, assert.AnError)
	})
}

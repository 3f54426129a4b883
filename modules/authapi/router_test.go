package authapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manofwisdom/auth/modules/authapi"
	"github.com/manofwisdom/auth/pkg/auth"
	"github.com/manofwisdom/auth/pkg/email"
	"github.com/manofwisdom/auth/pkg/ratelimiter"
)

type captureSender struct {
	mu   sync.Mutex
	sent []email.SendParams
}

func (c *captureSender) SendEmail(_ context.Context, params email.SendParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, params)
	return nil
}

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

func (c *captureSender) lastToken(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	m := tokenPattern.FindStringSubmatch(c.sent[len(c.sent)-1].BodyHTML)
	require.Len(t, m, 2, "verification URL not found in email body")
	return m[1]
}

type testAPI struct {
	handler http.Handler
	storage *auth.MemoryStorage
	sender  *captureSender
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	storage := auth.NewMemoryStorage()
	sender := &captureSender{}

	cfg := auth.DefaultConfig()
	cfg.BaseURL = "https://wisdom.manofwisdom.co"

	sessions := auth.NewSessionManager(storage, cfg,
		auth.WithCleanupChance(func() float64 { return 1.0 }),
	)
	links := auth.NewMagicLinkService(storage, sessions, sender, cfg)

	loginLimiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.LoginConfig())
	require.NoError(t, err)
	verifyLimiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.VerifyConfig())
	require.NoError(t, err)

	svc := authapi.NewService(links, sessions, loginLimiter, verifyLimiter)

	return &testAPI{
		handler: svc.Router(),
		storage: storage,
		sender:  sender,
	}
}

func (a *testAPI) post(t *testing.T, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.RemoteAddr = "203.0.113.7:51234"
	for _, c := range cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func (a *testAPI) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = "203.0.113.7:51234"
	for _, c := range cookies {
		r.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "mow_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("sends a magic link", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/login", map[string]string{"email": "alice@example.com", "name": "Alice"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Check your email")
		assert.Equal(t, 1, api.storage.UserCount())
		assert.Equal(t, 1, api.storage.MagicLinkCount())

		token := api.sender.lastToken(t)
		assert.Len(t, token, 64)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/login", map[string]string{"email": "not-an-email"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, api.storage.UserCount())
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		r := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{broken"))
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rate limits by client ip", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		body := map[string]string{"email": "bob@example.com"}

		for range 5 {
			rec := api.post(t, "/login", body)
			require.Equal(t, http.StatusOK, rec.Code)
		}

		rec := api.post(t, "/login", body)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("opens a session", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		require.Equal(t, http.StatusOK, api.post(t, "/login", map[string]string{"email": "carol@example.com", "name": "Carol"}).Code)

		rec := api.post(t, "/verify", map[string]string{"token": api.sender.lastToken(t)})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Success bool `json:"success"`
			User    struct {
				Email         string `json:"email"`
				Name          string `json:"name"`
				EmailVerified bool   `json:"email_verified"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "carol@example.com", resp.User.Email)
		assert.Equal(t, "Carol", resp.User.Name)
		assert.True(t, resp.User.EmailVerified)

		c := sessionCookie(t, rec)
		assert.Len(t, c.Value, 64)
		assert.True(t, c.HttpOnly)
	})

	t.Run("link works once", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		require.Equal(t, http.StatusOK, api.post(t, "/login", map[string]string{"email": "dave@example.com"}).Code)
		token := api.sender.lastToken(t)

		require.Equal(t, http.StatusOK, api.post(t, "/verify", map[string]string{"token": token}).Code)

		rec := api.post(t, "/verify", map[string]string{"token": token})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or has expired")
	})

	t.Run("unknown token gets the same generic error", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/verify", map[string]string{"token": "does-not-exist"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid or has expired")
	})

	t.Run("missing token rejected", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/verify", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	t.Run("returns the authenticated user", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		require.Equal(t, http.StatusOK, api.post(t, "/login", map[string]string{"email": "erin@example.com"}).Code)
		verified := api.post(t, "/verify", map[string]string{"token": api.sender.lastToken(t)})
		require.Equal(t, http.StatusOK, verified.Code)

		rec := api.get(t, "/me", sessionCookie(t, verified))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "erin@example.com")
	})

	t.Run("401 without a session", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.get(t, "/me")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("401 with a stale cookie", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.get(t, "/me", &http.Cookie{
			Name:  "mow_session",
			Value: "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("ends the session and clears the cookie", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		require.Equal(t, http.StatusOK, api.post(t, "/login", map[string]string{"email": "frank@example.com"}).Code)
		verified := api.post(t, "/verify", map[string]string{"token": api.sender.lastToken(t)})
		cookie := sessionCookie(t, verified)

		rec := api.post(t, "/logout", nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code)

		cleared := sessionCookie(t, rec)
		assert.Empty(t, cleared.Value)
		assert.Less(t, cleared.MaxAge, 0)
		assert.Equal(t, 0, api.storage.SessionCount())

		// The old cookie no longer authenticates.
		assert.Equal(t, http.StatusUnauthorized, api.get(t, "/me", cookie).Code)
	})

	t.Run("succeeds without a session", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/logout", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogoutAll(t *testing.T) {
	t.Parallel()

	t.Run("revokes every session for the user", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)

		// Two logins, two devices.
		var cookies []*http.Cookie
		for range 2 {
			require.Equal(t, http.StatusOK, api.post(t, "/login", map[string]string{"email": "grace@example.com"}).Code)
			verified := api.post(t, "/verify", map[string]string{"token": api.sender.lastToken(t)})
			require.Equal(t, http.StatusOK, verified.Code)
			cookies = append(cookies, sessionCookie(t, verified))
		}
		require.Equal(t, 2, api.storage.SessionCount())

		rec := api.post(t, "/logout-all", nil, cookies[0])
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, api.storage.SessionCount())

		for _, c := range cookies {
			assert.Equal(t, http.StatusUnauthorized, api.get(t, "/me", c).Code)
		}
	})

	t.Run("requires a live session", func(t *testing.T) {
		t.Parallel()

		api := newTestAPI(t)
		rec := api.post(t, "/logout-all", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

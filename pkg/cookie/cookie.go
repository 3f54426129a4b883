package cookie

import (
	"errors"
	"net/http"
	"time"
)

// Manager reads and writes cookies with a set of default attributes
// applied to every write. Per-call options override the defaults.
//
// It intentionally exposes only get/set/delete: that is the full
// capability set the auth core needs from any cookie store, so
// consumers embedding this module behind another framework only have
// to satisfy these three operations.
type Manager struct {
	defaults Options
}

// New creates a cookie manager. Defaults are HttpOnly, SameSite=Lax,
// Path=/ unless overridden by opts.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		defaults: applyOptions(defaults, opts),
	}
}

// Set writes a cookie to the response.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// Get returns the value of the named request cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

// Delete expires the named cookie. An empty value with a negative
// MaxAge (serialized as Max-Age=0) is used instead of any
// store-specific delete primitive so the same behavior holds across
// cookie-jar implementations. Attributes must match the ones used at
// set time or browsers treat it as a different cookie, so per-call
// options are honored here too.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

package cookie

import "errors"

var (
	// ErrCookieNotFound indicates the request carried no cookie with
	// the requested name.
	ErrCookieNotFound = errors.New("cookie not found")
)

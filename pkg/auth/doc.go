// Package auth is the shared passwordless authentication core of the
// Man of Wisdom suite: magic-link issuance and verification, session
// lifecycle, cross-subdomain cookie handling, CSRF origin validation,
// and the request gate in front of every app.
//
// The flow: a user submits an email, Create issues a one-time link
// (creating the user if new), the link is emailed, Verify consumes it
// exactly once and opens a session whose raw token lives only in the
// browser cookie — storage keeps a SHA-256 hash. Subsequent requests
// pass the Middleware gate; application code resolves the current user
// through the SessionManager.
//
// Magic-link tokens are stored raw while session tokens are hashed.
// The asymmetry is deliberate: a link is single-use and dead in
// minutes, a session is a long-lived bearer credential whose at-rest
// hash limits the blast radius of a database read.
package auth

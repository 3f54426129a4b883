// Package pg bootstraps the PostgreSQL layer: a pgx/v5 connection
// pool with startup retries, goose schema migrations, and readiness
// probing. The auth storage repositories build on the pool directly.
package pg

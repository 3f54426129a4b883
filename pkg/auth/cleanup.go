package auth

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult reports how many records a sweep removed.
type CleanupResult struct {
	Sessions   int64
	MagicLinks int64
}

// Cleanup deletes expired sessions and magic links that are expired or
// already used. Pure deletes, idempotent, safe to run concurrently
// from multiple processes. Correctness never depends on it running:
// expired records are inert before removal (session lookups check
// expiry, verification checks UsedAt and ExpiresAt). It is triggered
// probabilistically from session lookups and exported so a deployment
// can also schedule it.
func Cleanup(ctx context.Context, storage Storage, now time.Time) (CleanupResult, error) {
	var result CleanupResult

	sessions, err := storage.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	result.Sessions = sessions

	links, err := storage.DeleteStaleMagicLinks(ctx, now)
	if err != nil {
		return result, fmt.Errorf("failed to delete stale magic links: %w", err)
	}
	result.MagicLinks = links

	return result, nil
}

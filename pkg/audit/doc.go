// Package audit records security-relevant auth events (login
// requests, verifications, rate-limit rejections, origin mismatches)
// as a write-only structured stream.
//
// The default storage writes through slog; swapping Storage lets a
// deployment persist events elsewhere without touching call sites.
package audit

// Package ratelimiter implements fixed-window request limiting keyed
// by an arbitrary string, in practice the client IP.
//
// The limit is advisory defense in depth against brute force, not a
// hard security boundary. The default MemoryStore is process-local:
// counters reset on restart and horizontally scaled deployments limit
// per instance. Deployments that want one shared limit opt into
// RedisStore explicitly.
package ratelimiter

// Package clientip extracts the originating client address from HTTP
// requests, looking through the proxy headers set by the platforms the
// suite deploys behind. The result keys rate-limit counters and is
// attached to audit events.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP returns the client IP address for the request.
// Header priority:
//  1. CF-Connecting-IP (Cloudflare in front of the apps)
//  2. X-Forwarded-For (standard proxy chain, first valid entry)
//  3. X-Real-IP (nginx reverse proxy)
//  4. RemoteAddr (direct connection fallback)
func GetIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if parsed := parseIP(ip); parsed != "" {
			return parsed
		}
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if parsed := parseIP(ip); parsed != "" {
			return parsed
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, assume it is already an IP.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP string, returning "" when the
// value is not a valid address. Spoofed or malformed header entries
// therefore fall through to the next source.
func parseIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}

	return ip.String()
}

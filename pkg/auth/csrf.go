package auth

// ValidateOrigin checks a request's Origin header against an
// allow-list. An absent Origin is allowed: same-origin requests from
// some clients omit it, and the SameSite=Lax cookie already keeps the
// session cookie off cross-origin state-changing requests — this check
// supplements that, it does not replace it. A present Origin must
// exactly match one allow-list entry; no wildcard or suffix matching.
func ValidateOrigin(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if origin == a {
			return true
		}
	}
	return false
}

// Package environment declares the deployment environments recognized
// by the auth suite. The environment decides cookie scope (shared
// parent domain vs host-only), the Secure cookie flag, and log format.
package environment

// Environment represents the application deployment environment.
type Environment string

const (
	// Development for local development.
	Development Environment = "development"
	// Staging for pre-production deployments.
	Staging Environment = "staging"
	// Production for live deployments.
	Production Environment = "production"
)

// Parse maps an environment string (including common short forms) to a
// known Environment, defaulting to Development for anything unknown so
// that a misconfigured local setup never accidentally gets production
// cookie or logging behavior.
func Parse(s string) Environment {
	switch s {
	case string(Production), "prod":
		return Production
	case string(Staging), "stage":
		return Staging
	default:
		return Development
	}
}

// UnmarshalText maps raw config values through Parse, so ENV=prod in
// an env-tagged struct yields Production rather than a string that
// matches nothing.
func (e *Environment) UnmarshalText(text []byte) error {
	*e = Parse(string(text))
	return nil
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}

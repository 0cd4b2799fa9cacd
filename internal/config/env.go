package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Credentials hold the secrets a run needs, loaded from the
// environment rather than the config file so they never land in
// version control.
type Credentials struct {
	// APIKey is the bearer token for the scoring endpoint.
	APIKey string `env:"TRICKLE_API_KEY"`
}

// CredentialError reports missing or invalid auth configuration.
// Raised before any submission is attempted: failing fast beats
// submitting a whole run anonymously.
type CredentialError struct {
	// Var is the environment variable that was missing or invalid.
	Var string

	// Reason describes the problem.
	Reason string
}

// Error implements the error interface.
func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential %s: %s", e.Var, e.Reason)
}

// LoadCredentials parses credentials from environment variables.
func LoadCredentials() (Credentials, error) {
	var creds Credentials
	if err := env.Parse(&creds); err != nil {
		return Credentials{}, fmt.Errorf("parse env: %w", err)
	}
	return creds, nil
}

// RequireAPIKey returns a CredentialError when no API key is set.
// Called before building an HTTP sink.
func (c Credentials) RequireAPIKey() error {
	if c.APIKey == "" {
		return &CredentialError{Var: "TRICKLE_API_KEY", Reason: "not set"}
	}
	return nil
}

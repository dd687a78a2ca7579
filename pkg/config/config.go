// Package config defines the environment-driven configuration sections
// for the service. Sections are read with cleanenv in the command mains.
package config

import (
	"strings"
)

// ImpersonationConfig configures the admin registry.
type ImpersonationConfig struct {
	// Enabled is the global impersonation feature toggle. Off by
	// default: absence of configuration fails closed.
	Enabled bool `env:"IMPERSONATION_ENABLED" env-default:"false"`

	// AdminAddresses is a comma-separated list of identities allowed to
	// impersonate.
	AdminAddresses string `env:"IMPERSONATION_ADMIN_ADDRESSES" env-default:""`
}

// Admins returns the configured admin identities.
func (c ImpersonationConfig) Admins() []string {
	return SplitAndTrim(c.AdminAddresses, ",")
}

// DbConfig configures the PostgreSQL connection.
type DbConfig struct {
	Host     string `env:"ATLAS_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"ATLAS_PG_PORT" env-default:"5432"`
	Database string `env:"ATLAS_PG_DATABASE" env-default:"atlas_db"`
	User     string `env:"ATLAS_PG_USER" env-default:"atlas"`
	Password string `env:"ATLAS_PG_PASSWORD" env-default:"pwd"`
}

// JwtConfig configures token signing and cookies.
type JwtConfig struct {
	JwtSecret      string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer         string `env:"JWT_ISSUER" env-default:"op-atlas"`
	Audience       string `env:"JWT_AUDIENCE" env-default:"op-atlas"`
	CookieHttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
	CookieSecure   bool   `env:"COOKIE_SECURE" env-default:"false"`
}

// SMTPConfig configures outbound email.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `env:"SMTP_PORT" env-default:"1025"`
	TLS      bool   `env:"SMTP_TLS" env-default:"false"`
	Username string `env:"SMTP_USERNAME" env-default:""`
	Password string `env:"SMTP_PASSWORD" env-default:""`
	From     string `env:"SMTP_FROM" env-default:"no-reply@atlas.local"`
}

// EffectsConfig configures the external effect collaborators.
type EffectsConfig struct {
	AttestationEndpoint string `env:"ATTESTATION_ENDPOINT" env-default:"http://localhost:8091"`
	AttestationAPIKey   string `env:"ATTESTATION_API_KEY" env-default:""`
	StorageBaseURL      string `env:"STORAGE_BASE_URL" env-default:"http://localhost:8092"`
	StorageBucket       string `env:"STORAGE_BUCKET" env-default:"atlas-uploads"`
	VerificationBaseURL string `env:"VERIFICATION_BASE_URL" env-default:"http://localhost:8093"`
	VerificationAPIKey  string `env:"VERIFICATION_API_KEY" env-default:""`
}

// SplitAndTrim splits a string by separator and trims each part.
// Empty parts are filtered out.
func SplitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

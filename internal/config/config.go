// Package config resolves the settings of a publishing run from flags,
// environment variables, and optional .env files.
package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docpublish/internal/errors"
	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// Environment variable names for credentials and server address. Flags take
// precedence; the variables are the defaults.
const (
	EnvAddress  = "CONFLUENCE_ADDR"
	EnvUser     = "CONFLUENCE_USER"
	EnvPassword = "CONFLUENCE_PASSWORD"
)

// Config is a fully resolved run configuration. Validate must pass before
// any network call is made.
type Config struct {
	// ManifestPath is the local path of manifest.json in the generated
	// DocFX site. The site root is its directory.
	ManifestPath string
	// SpaceKey is the target Confluence space.
	SpaceKey string

	Address  string
	User     string
	Password string

	// TitlePrefix is the prefix of derived page titles.
	TitlePrefix string
}

// LoadEnvFiles loads .env then .env.local into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}

// Resolve fills unset fields from the environment and applies defaults.
func (c *Config) Resolve() {
	if c.Address == "" {
		c.Address = os.Getenv(EnvAddress)
	}
	if c.User == "" {
		c.User = os.Getenv(EnvUser)
	}
	if c.Password == "" {
		c.Password = os.Getenv(EnvPassword)
	}
	if c.TitlePrefix == "" {
		c.TitlePrefix = reconcile.DefaultTitlePrefix
	}
}

// Validate reports the first missing required value as a fatal configuration
// error. It runs before any network call.
func (c *Config) Validate() error {
	if c.ManifestPath == "" {
		return errors.ConfigRequired("manifest", "pass --manifest with the path of manifest.json")
	}
	if c.SpaceKey == "" {
		return errors.ConfigRequired("space", "pass --space with the target Confluence space key")
	}
	if c.Address == "" {
		return errors.ConfigRequired("address", "pass --address or set "+EnvAddress)
	}
	if c.User == "" {
		return errors.ConfigRequired("user", "pass --user or set "+EnvUser)
	}
	if c.Password == "" {
		return errors.ConfigRequired("password", "pass --password or set "+EnvPassword)
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docpublish/internal/errors"
)

func validConfig() *Config {
	return &Config{
		ManifestPath: "site/manifest.json",
		SpaceKey:     "TEST",
		Address:      "https://confluence.example.com",
		User:         "publisher",
		Password:     "secret",
	}
}

func TestValidate_CompleteConfigPasses(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_MissingFieldsAreFatalConfigErrors(t *testing.T) {
	clear := []struct {
		name  string
		strip func(*Config)
	}{
		{"manifest", func(c *Config) { c.ManifestPath = "" }},
		{"space", func(c *Config) { c.SpaceKey = "" }},
		{"address", func(c *Config) { c.Address = "" }},
		{"user", func(c *Config) { c.User = "" }},
		{"password", func(c *Config) { c.Password = "" }},
	}

	for _, tc := range clear {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.strip(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.True(t, errors.IsCategory(err, errors.CategoryConfig))

			var pe *errors.PublishError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, errors.SeverityFatal, pe.Severity)
			require.Equal(t, tc.name, pe.Context["field"])
		})
	}
}

func TestResolve_FallsBackToEnvironment(t *testing.T) {
	t.Setenv(EnvAddress, "https://wiki.example.com")
	t.Setenv(EnvUser, "env-user")
	t.Setenv(EnvPassword, "env-pass")

	cfg := &Config{ManifestPath: "m.json", SpaceKey: "TEST"}
	cfg.Resolve()

	require.Equal(t, "https://wiki.example.com", cfg.Address)
	require.Equal(t, "env-user", cfg.User)
	require.Equal(t, "env-pass", cfg.Password)
	require.Equal(t, "DocFX", cfg.TitlePrefix)
	require.NoError(t, cfg.Validate())
}

func TestResolve_FlagsTakePrecedenceOverEnvironment(t *testing.T) {
	t.Setenv(EnvUser, "env-user")

	cfg := validConfig()
	cfg.Resolve()
	require.Equal(t, "publisher", cfg.User)
}

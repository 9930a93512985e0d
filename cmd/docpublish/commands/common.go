package commands

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/confluence"
	"git.home.luguber.info/inful/docpublish/internal/docfx"
	"git.home.luguber.info/inful/docpublish/internal/mapping"
	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	Publish PublishCmd `cmd:"" help:"Publish a generated DocFX site to Confluence"`
	Verify  VerifyCmd  `cmd:"" help:"Report what a publish would do without mutating Confluence"`
	Daemon  DaemonCmd  `cmd:"" help:"Continuously publish on an interval and on site regenerations"`
}

// AfterApply runs after flag parsing; sets up logging and .env defaults once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	config.LoadEnvFiles()
	return nil
}

// ConnectionFlags are the Confluence connection settings shared by every
// command. Address and credentials fall back to environment variables.
type ConnectionFlags struct {
	Manifest    string `required:"" help:"Path of manifest.json in the generated DocFX site" type:"existingfile"`
	Space       string `required:"" help:"Key (short name) of the target Confluence space"`
	Address     string `help:"Base address of the Confluence server (default: $CONFLUENCE_ADDR)"`
	User        string `help:"User name for Confluence authentication (default: $CONFLUENCE_USER)"`
	Password    string `help:"Password for Confluence authentication (default: $CONFLUENCE_PASSWORD)"`
	TitlePrefix string `name:"title-prefix" default:"DocFX" help:"Prefix of derived Confluence page titles"`
}

// resolveConfig turns connection flags into a validated configuration.
func (f *ConnectionFlags) resolveConfig() (*config.Config, error) {
	cfg := &config.Config{
		ManifestPath: f.Manifest,
		SpaceKey:     f.Space,
		Address:      f.Address,
		User:         f.User,
		Password:     f.Password,
		TitlePrefix:  f.TitlePrefix,
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runInputs are the fully loaded inputs of one reconciliation run.
type runInputs struct {
	units      []docfx.Unit
	index      *mapping.Index
	reconciler *reconcile.Reconciler
}

// loadRunInputs loads the manifest and the remote listing fresh; every run
// starts from current state on both sides.
func loadRunInputs(ctx context.Context, cfg *config.Config) (*runInputs, error) {
	units, siteDir, err := docfx.LoadUnits(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	client := confluence.NewClient(cfg.Address, cfg.User, cfg.Password)
	pages, err := client.ListPages(ctx)
	if err != nil {
		return nil, err
	}

	return &runInputs{
		units: units,
		index: mapping.Build(pages),
		reconciler: reconcile.New(client, reconcile.SiteContent{Dir: siteDir}, reconcile.Options{
			SpaceKey:    cfg.SpaceKey,
			TitlePrefix: cfg.TitlePrefix,
		}),
	}, nil
}

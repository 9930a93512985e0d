package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/daemon"
	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// DaemonCmd implements the 'daemon' command: continuous publishing with a
// periodic schedule, a manifest watcher, and a metrics listener.
type DaemonCmd struct {
	ConnectionFlags

	Interval time.Duration `default:"30m" help:"Interval between scheduled syncs (0 disables the schedule)"`
	NoWatch  bool          `name:"no-watch" help:"Disable the manifest watcher"`
	Listen   string        `default:":9180" help:"Listen address for /metrics and /healthz (empty disables)"`
	Journal  string        `default:"docpublish-runs.db" help:"SQLite journal recording each sync run (empty disables)"`
}

func (d *DaemonCmd) Run(_ *Global, _ *CLI) error {
	cfg, err := d.resolveConfig()
	if err != nil {
		return err
	}

	sync := func(ctx context.Context) (*reconcile.Report, error) {
		inputs, err := loadRunInputs(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return inputs.reconciler.Run(ctx, inputs.units, inputs.index)
	}

	opts := daemon.Options{
		Interval:    d.Interval,
		ListenAddr:  d.Listen,
		JournalPath: d.Journal,
	}
	if !d.NoWatch {
		opts.ManifestPath = cfg.ManifestPath
	}

	dmn, err := daemon.New(sync, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return dmn.Run(ctx)
}

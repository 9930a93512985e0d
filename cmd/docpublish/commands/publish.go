package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/config"
	"git.home.luguber.info/inful/docpublish/internal/journal"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// PublishCmd implements the 'publish' command: one full reconciliation run.
type PublishCmd struct {
	ConnectionFlags

	Journal string `help:"Record the run outcome in this SQLite journal (optional)"`
}

func (p *PublishCmd) Run(_ *Global, _ *CLI) error {
	cfg, err := p.resolveConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	started := time.Now()

	report, runErr := p.runOnce(ctx, cfg)
	if report == nil {
		report = reconcile.AbortedReport(started)
	}

	if p.Journal != "" {
		j, err := journal.Open(p.Journal)
		if err != nil {
			slog.Error("Failed to open run journal", logfields.Error(err))
		} else {
			defer func() { _ = j.Close() }()
			if err := j.Record(ctx, report, runErr); err != nil {
				slog.Error("Failed to record run in journal", logfields.Error(err))
			}
		}
	}

	return runErr
}

func (p *PublishCmd) runOnce(ctx context.Context, cfg *config.Config) (*reconcile.Report, error) {
	inputs, err := loadRunInputs(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return inputs.reconciler.Run(ctx, inputs.units, inputs.index)
}

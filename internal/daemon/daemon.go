// Package daemon runs continuous publishing: periodic reconciliation on a
// fixed interval plus syncs triggered by regeneration of the documentation
// site, with metrics and a run journal.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docpublish/internal/journal"
	"git.home.luguber.info/inful/docpublish/internal/logfields"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// SyncFunc performs one full reconciliation run: reload the manifest, list
// remote state, reconcile. The daemon never caches run inputs between syncs.
type SyncFunc func(ctx context.Context) (*reconcile.Report, error)

// Options configures the daemon.
type Options struct {
	// Interval between scheduled syncs. Zero disables the schedule (watch
	// only).
	Interval time.Duration
	// ManifestPath to watch for site regenerations. Empty disables the
	// watcher.
	ManifestPath string
	// ListenAddr for the /metrics and /healthz listener. Empty disables it.
	ListenAddr string
	// JournalPath of the SQLite run journal. Empty disables the journal.
	JournalPath string
}

// Daemon coordinates triggers and serializes sync runs. The reconciliation
// core is strictly sequential; overlapping triggers coalesce into one
// pending sync rather than running concurrently.
type Daemon struct {
	sync     SyncFunc
	opts     Options
	registry *prom.Registry
	recorder *metrics.Recorder
	journal  *journal.Journal

	// trigger carries the trigger name; capacity 1 makes extra triggers
	// during a running sync collapse into a single follow-up.
	trigger chan string
}

// New creates a Daemon around a sync function.
func New(sync SyncFunc, opts Options) (*Daemon, error) {
	d := &Daemon{
		sync:     sync,
		opts:     opts,
		registry: prom.NewRegistry(),
		trigger:  make(chan string, 1),
	}
	d.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	d.recorder = metrics.NewRecorder(d.registry)

	if opts.JournalPath != "" {
		j, err := journal.Open(opts.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("open run journal: %w", err)
		}
		d.journal = j
	}
	return d, nil
}

// Run blocks until ctx is cancelled, executing syncs as triggers arrive. An
// initial sync runs at startup so a freshly started daemon converges without
// waiting for the first interval.
func (d *Daemon) Run(ctx context.Context) error {
	if d.opts.ListenAddr != "" {
		srv := d.startHTTPServer()
		defer d.stopHTTPServer(srv)
	}

	var scheduler gocron.Scheduler
	if d.opts.Interval > 0 {
		var err error
		scheduler, err = d.startScheduler()
		if err != nil {
			return err
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Error("Failed to shut down scheduler", logfields.Error(err))
			}
		}()
	}

	if d.opts.ManifestPath != "" {
		watcher, err := newManifestWatcher(d.opts.ManifestPath, d.requestSync)
		if err != nil {
			return err
		}
		go watcher.run(ctx)
		defer watcher.close()
	}

	if d.journal != nil {
		defer func() { _ = d.journal.Close() }()
	}

	slog.Info("Daemon started",
		slog.Duration("interval", d.opts.Interval),
		logfields.Path(d.opts.ManifestPath),
		slog.String("listen", d.opts.ListenAddr))

	d.requestSync("startup")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Daemon stopping")
			return nil
		case trigger := <-d.trigger:
			d.runSync(ctx, trigger)
		}
	}
}

// requestSync queues a sync. If one is already pending the trigger is
// dropped; the pending sync will pick up the same state.
func (d *Daemon) requestSync(trigger string) {
	select {
	case d.trigger <- trigger:
	default:
		slog.Debug("Sync already pending, coalescing trigger", logfields.Trigger(trigger))
	}
}

func (d *Daemon) runSync(ctx context.Context, trigger string) {
	slog.Info("Starting sync", logfields.Trigger(trigger))
	started := time.Now()

	report, err := d.sync(ctx)
	if report == nil {
		// The sync failed before reconciliation started, so no report
		// exists yet; the failure still has to show up in metrics and the
		// journal.
		report = reconcile.AbortedReport(started)
	}
	d.recorder.ObserveRun(report, err)
	if d.journal != nil {
		if jerr := d.journal.Record(ctx, report, err); jerr != nil {
			slog.Error("Failed to record run in journal", logfields.Error(jerr))
		}
	}

	if err != nil {
		// A failed run aborts with no partial-state persistence; the next
		// trigger re-runs from scratch and matching by UID skips completed
		// work.
		slog.Error("Sync failed", logfields.Trigger(trigger), logfields.Error(err))
		return
	}
	slog.Info("Sync complete",
		logfields.Trigger(trigger),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("warnings", report.Warnings()))
}

func (d *Daemon) startScheduler() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(d.opts.Interval),
		gocron.NewTask(func() { d.requestSync("schedule") }),
		gocron.WithName("periodic-sync"),
	)
	if err != nil {
		return nil, fmt.Errorf("create periodic sync job: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

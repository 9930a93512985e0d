// Package metrics exposes Prometheus counters for reconciliation runs. The
// daemon serves them on its /metrics endpoint.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docpublish/internal/reconcile"
)

// Recorder registers and updates the sync metrics on one registry.
type Recorder struct {
	runsTotal    *prom.CounterVec
	pagesCreated prom.Counter
	pagesUpdated prom.Counter
	warnings     *prom.CounterVec
	runDuration  prom.Histogram
}

// NewRecorder constructs the sync metrics and registers them on reg. reg must
// not already hold a Recorder's metrics; base collectors are the registry
// owner's concern.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		runsTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "sync_runs_total",
			Help:      "Reconciliation runs by outcome",
		}, []string{"outcome"}),
		pagesCreated: prom.NewCounter(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "pages_created_total",
			Help:      "Confluence pages created",
		}),
		pagesUpdated: prom.NewCounter(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "pages_updated_total",
			Help:      "Confluence page content updates",
		}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "sync_warnings_total",
			Help:      "Non-fatal reconciliation warnings by kind",
		}, []string{"kind"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpublish",
			Name:      "sync_run_duration_seconds",
			Help:      "Total reconciliation run duration",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(r.runsTotal, r.pagesCreated, r.pagesUpdated, r.warnings, r.runDuration)
	return r
}

// ObserveRun records a finished (or aborted) run. The run counter is bumped
// even without a report, so failures before reconciliation starts are not
// invisible.
func (r *Recorder) ObserveRun(report *reconcile.Report, runErr error) {
	if r == nil {
		return
	}
	outcome := "success"
	if runErr != nil {
		outcome = "failed"
	}
	r.runsTotal.WithLabelValues(outcome).Inc()
	if report == nil {
		return
	}
	r.pagesCreated.Add(float64(report.Created))
	r.pagesUpdated.Add(float64(report.Updated))
	r.warnings.WithLabelValues("unmatched_uid").Add(float64(len(report.UnmatchedUIDs)))
	r.warnings.WithLabelValues("unresolved_link").Add(float64(len(report.UnresolvedLinks)))
	r.observeDuration(report.Duration)
}

func (r *Recorder) observeDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	r.runDuration.Observe(d.Seconds())
}

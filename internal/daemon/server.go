package daemon

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// startHTTPServer serves /metrics, /healthz, and /runs (recent journal
// entries) on the configured listen address.
func (d *Daemon) startHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/runs", d.handleRuns)

	srv := &http.Server{
		Addr:              d.opts.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Metrics listener started", slog.String("addr", d.opts.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics listener failed", logfields.Error(err))
		}
	}()
	return srv
}

func (d *Daemon) stopHTTPServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Metrics listener shutdown failed", logfields.Error(err))
	}
}

func (d *Daemon) handleRuns(w http.ResponseWriter, r *http.Request) {
	if d.journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	entries, err := d.journal.Recent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		slog.Error("Failed to encode journal entries", logfields.Error(err))
	}
}

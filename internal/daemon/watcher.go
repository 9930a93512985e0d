package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// debounceWindow absorbs the burst of writes a site regeneration produces
// before triggering a single sync.
const debounceWindow = 2 * time.Second

// manifestWatcher triggers a sync when the DocFX manifest is rewritten,
// which is the last thing a site build does.
type manifestWatcher struct {
	manifestPath string
	watcher      *fsnotify.Watcher
	onChange     func(trigger string)
}

func newManifestWatcher(manifestPath string, onChange func(trigger string)) (*manifestWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(manifestPath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}

	// Watch the containing directory; generators typically replace the
	// manifest file rather than writing it in place.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch manifest directory: %w", err)
	}

	return &manifestWatcher{
		manifestPath: absPath,
		watcher:      watcher,
		onChange:     onChange,
	}, nil
}

func (w *manifestWatcher) run(ctx context.Context) {
	slog.Info("Watching manifest for site regenerations", logfields.Path(w.manifestPath))

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.manifestPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("Manifest changed", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				w.onChange("watch")
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Manifest watcher error", logfields.Error(err))
		}
	}
}

func (w *manifestWatcher) close() {
	if err := w.watcher.Close(); err != nil {
		slog.Error("Failed to close manifest watcher", logfields.Error(err))
	}
}

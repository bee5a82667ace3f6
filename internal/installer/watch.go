package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modkit/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-runs the installer whenever module contents change. Events are
// debounced so a burst of writes (an editor save, a git checkout) triggers
// a single install pass.
type Watcher struct {
	installer *Installer
	debounce  time.Duration
	// settle is the quiet period used to discard the events an install
	// pass generates itself; steps write into their own module directory,
	// which is watched.
	settle time.Duration
	fsw    *fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period after the last event before a re-run.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a Watcher around inst.
func NewWatcher(inst *Installer, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		installer: inst,
		debounce:  500 * time.Millisecond,
		settle:    100 * time.Millisecond,
		fsw:       fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Watch runs an initial install pass and then blocks, re-running the
// installer after each debounced change under the modules directory.
// Install failures are reported and watching continues; only watcher
// errors or context cancellation end the loop.
func (w *Watcher) Watch(ctx context.Context) error {
	w.runOnce(ctx)

	if err := w.addWatches(); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching modules directory: %w", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.runOnce(ctx)
			// Pick up module directories created since the last pass.
			if err := w.addWatches(); err != nil {
				return err
			}
			// Install steps write into their own (watched) module
			// directories; without this the pass would schedule the next
			// one forever.
			w.drainEvents(ctx)
		}
	}
}

// drainEvents discards events until none arrive for a settle period, so an
// install pass's own file writes do not re-trigger it.
func (w *Watcher) drainEvents(ctx context.Context) {
	quiet := time.NewTimer(w.settle)
	defer quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			quiet.Reset(w.settle)
		case <-quiet.C:
			return
		}
	}
}

// runOnce executes one install pass, reporting failures without stopping
// the watch loop.
func (w *Watcher) runOnce(ctx context.Context) {
	fmt.Fprintf(w.installer.Out, "Installing modules from %s\n", w.installer.ModulesDir)
	if _, err := w.installer.Run(ctx); err != nil {
		errors.Print(err)
	}
	fmt.Fprintln(w.installer.Out, "\nWatching for changes (Ctrl+C to stop)...")
}

// addWatches watches the modules directory and each module subdirectory.
// fsnotify is not recursive; one level down is enough to see entry point
// creation and edits.
func (w *Watcher) addWatches() error {
	if err := w.fsw.Add(w.installer.ModulesDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.installer.ModulesDir, err)
	}

	entries, err := os.ReadDir(w.installer.ModulesDir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.installer.ModulesDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Adding an already-watched path is a no-op for fsnotify.
		if err := w.fsw.Add(filepath.Join(w.installer.ModulesDir, entry.Name())); err != nil {
			return fmt.Errorf("watching module %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// relevant filters out chmod-only noise; the installer itself flips the
// executable bit on install steps, which must not re-trigger a run.
func relevant(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}

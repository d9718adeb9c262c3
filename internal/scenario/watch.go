package scenario

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"agentictest/internal/errkind"
	"agentictest/pkg/logging"
)

// Watcher watches a scenario file or directory for YAML changes and
// delivers a debounced reload signal whenever the files on disk may have
// changed. Grounded on giantswarm-muster's internal/reconciler
// FilesystemDetector: an fsnotify.Watcher feeding a single debounce
// timer, so a burst of saves from an editor collapses into one reload
// instead of a run per write.
type Watcher struct {
	watcher          *fsnotify.Watcher
	debounceInterval time.Duration
}

// NewWatcher creates a Watcher over configPath, the same file or
// directory passed to Loader.Load. Directories are watched recursively:
// every subdirectory present at construction time gets its own watch,
// mirroring FilesystemDetector's one-watch-per-resource-directory setup.
// Subdirectories created later are not picked up.
func NewWatcher(configPath string, debounceInterval time.Duration) (*Watcher, error) {
	if debounceInterval <= 0 {
		debounceInterval = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errkind.Fatal("scenario.NewWatcher", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		fsw.Close()
		return nil, errkind.Config("scenario.NewWatcher", err)
	}

	if !info.IsDir() {
		if err := fsw.Add(filepath.Dir(configPath)); err != nil {
			fsw.Close()
			return nil, errkind.Config("scenario.NewWatcher", err)
		}
		return &Watcher{watcher: fsw, debounceInterval: debounceInterval}, nil
	}

	walkErr := filepath.WalkDir(configPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if werr := fsw.Add(path); werr != nil {
			logging.Warn("scenario", "failed to watch directory %s: %v", path, werr)
		}
		return nil
	})
	if walkErr != nil {
		fsw.Close()
		return nil, errkind.Config("scenario.NewWatcher", walkErr)
	}

	return &Watcher{watcher: fsw, debounceInterval: debounceInterval}, nil
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch blocks until ctx is cancelled, sending on reload each time a
// YAML file under the watched path is created, written, removed, or
// renamed, debounced to one signal per debounceInterval of quiet.
// reload should be buffered (size 1 is enough) since Watch drops a
// signal rather than block when the receiver hasn't drained the last one.
func (w *Watcher) Watch(ctx context.Context, reload chan<- struct{}) {
	var mu sync.Mutex
	var timer *time.Timer

	fire := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isYAMLFile(event.Name) {
				continue
			}
			logging.Debug("scenario", "detected change: %s %s", event.Op, event.Name)
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounceInterval, fire)
			mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("scenario", "watcher error: %v", err)
		}
	}
}

package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chatpaint/paintd/internal/errors"
)

// DefaultWatchDebounce is the default debounce interval for snapshot changes.
const DefaultWatchDebounce = 500 * time.Millisecond

// Watch reloads the catalog whenever the snapshot file at path changes,
// until ctx is done. Bursts of events within debounce collapse into one
// load. The parent directory is watched so atomic renames are seen.
func (l *Loader) Watch(ctx context.Context, path string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New("P103").Wrap(err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.New("P103").Wrap(err)
	}

	absPath, _ := filepath.Abs(path)
	baseName := filepath.Base(path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventAbs, _ := filepath.Abs(event.Name)
			if filepath.Base(event.Name) != baseName && eventAbs != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			l.logger.Debug("catalog snapshot changed", "path", path)
			l.loadAndLog(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("catalog watch error", "path", path, "error", err)
		}
	}
}

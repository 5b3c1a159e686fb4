package parameters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch watches the env-pointed override file for the given version and
// pushes a freshly-reloaded Config on every write, following the teacher's
// directory-watch-then-filter-by-exact-name idiom (fsnotify fires per
// directory, not per file). The returned channel is closed when ctx is
// cancelled or the watch cannot be established.
func (m *Manager) Watch(ctx context.Context, version string) (<-chan *Config, <-chan error) {
	changes := make(chan *Config, 1)
	errs := make(chan error, 1)

	if m.OverrideEnvVar == "" {
		close(changes)
		close(errs)
		return changes, errs
	}
	overridePath := os.Getenv(m.OverrideEnvVar)
	if overridePath == "" {
		close(changes)
		close(errs)
		return changes, errs
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errs <- fmt.Errorf("parameters: create watcher: %w", err)
		close(changes)
		close(errs)
		return changes, errs
	}

	dir := filepath.Dir(overridePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		errs <- fmt.Errorf("parameters: watch dir %s: %w", dir, err)
		close(changes)
		close(errs)
		return changes, errs
	}

	go func() {
		defer watcher.Close()
		defer close(changes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-watcher.Events:
				if !ok {
					return
				}
				if e.Name != overridePath || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := m.Load(version)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					continue
				}
				select {
				case changes <- cfg:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}
			}
		}
	}()

	return changes, errs
}

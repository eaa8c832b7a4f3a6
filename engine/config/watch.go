package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/framebox/common"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher watches a configuration file for changes and delivers freshly
// parsed configurations on its Events channel. The parent directory is
// watched rather than the file itself so atomic save-via-rename from
// editors is still observed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration

	// Events receives the re-parsed configuration after each change.
	Events chan *Config
	// Errors receives watch and parse failures.
	Errors chan error

	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewWatcher starts watching the configuration file at path.
//
// Reloads are debounced on the trailing edge: a burst of writes produces one
// reload, of the final contents, once the file has been quiet for the
// debounce duration.
//
// Parameters:
//   - path: the configuration file to watch
//   - debounce: quiet period after the last write before reloading (0 uses a 100ms default)
//
// Returns:
//   - *Watcher: the running watcher
//   - error: watcher setup failure
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		path:     filepath.Clean(path),
		debounce: common.Coalesce(debounce, defaultDebounce),
		Events:   make(chan *Config, 1),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher, waits for the watch goroutine to exit, and then
// the goroutine closes the Events and Errors channels on its way out.
// Safe to call multiple times.
//
// Returns:
//   - error: failure closing the underlying filesystem watcher
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// run is the watch loop. It owns the Events and Errors channels: they are
// closed here on exit, never by Close, so a reload delivery can never race a
// channel close.
func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		w.wg.Done()
	}()

	reload := time.NewTimer(w.debounce)
	if !reload.Stop() {
		<-reload.C
	}
	defer reload.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Trailing-edge debounce: every event restarts the quiet-period
			// timer, so a burst reloads once with the final contents.
			if !reload.Stop() {
				select {
				case <-reload.C:
				default:
				}
			}
			reload.Reset(w.debounce)
		case <-reload.C:
			cfg, err := Load(w.path)
			if err != nil {
				w.reportError(err)
				continue
			}
			select {
			case w.Events <- cfg:
			default:
				// Consumer has an unread config pending; drop the stale one.
				select {
				case <-w.Events:
				default:
				}
				w.Events <- cfg
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reportError(err error) {
	select {
	case w.Errors <- err:
	default:
		common.Logger().Warn("config watcher error dropped", "error", err)
	}
}

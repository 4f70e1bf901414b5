package config

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher holds the latest valid configuration read from a file and reloads
// it when the file changes. Readers pick up new values with Config(); a
// running session keeps the values it started with.
type Watcher struct {
	path     string
	logger   *log.Logger
	mu       sync.RWMutex
	current  FlappyConfig
	onChange []func(FlappyConfig)
}

// NewWatcher loads path once. The file must exist and be valid.
func NewWatcher(path string, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &Watcher{path: path, logger: logger}
	cfg, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current = cfg
	return w, nil
}

// Config returns the current (latest valid) configuration.
func (w *Watcher) Config() FlappyConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked whenever the config reloads.
func (w *Watcher) OnChange(fn func(FlappyConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the config on file changes.
// Call the returned stop function to clean up.
func (w *Watcher) Watch() (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := fw.Add(w.path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", w.path, err)
	}

	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := w.Reload(); err != nil {
						w.logger.Warn("config reload failed, keeping previous values", "path", w.path, "err", err)
					}
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Debug("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the config file. An invalid file
// leaves the current configuration in place.
func (w *Watcher) Reload() (FlappyConfig, error) {
	cfg, err := w.load()
	if err != nil {
		return FlappyConfig{}, err
	}
	w.mu.Lock()
	w.current = cfg
	callbacks := make([]func(FlappyConfig), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("config reloaded", "path", w.path)
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (w *Watcher) load() (FlappyConfig, error) {
	cfg, err := readFile(w.path)
	if err != nil {
		return FlappyConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return FlappyConfig{}, err
	}
	return cfg, nil
}

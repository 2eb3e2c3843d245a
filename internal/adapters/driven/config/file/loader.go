package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/caldera-ops/opsync/internal/logger"
)

// Loader reads the TOML configuration file and keeps the parsed result
// available. Watch re-reads the file on change so long-running
// processes pick up edits without a restart.
type Loader struct {
	mu       sync.RWMutex
	filePath string
	current  *Config
	watcher  *fsnotify.Watcher
}

// NewLoader creates a loader for the given config file path. An empty
// path defaults to ~/.opsync/config.toml. A missing file yields the
// built-in defaults.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".opsync", "config.toml")
	}

	l := &Loader{filePath: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Config returns the most recently loaded configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.filePath
}

// Reload re-reads and re-validates the configuration file.
func (l *Loader) Reload() error {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			l.mu.Lock()
			l.current = Default()
			l.mu.Unlock()
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	l.mu.Lock()
	l.current = config
	l.mu.Unlock()
	return nil
}

// Watch starts watching the config file for changes and calls onChange
// with each successfully reloaded configuration. A reload failure
// keeps the previous configuration and is logged.
func (l *Loader) Watch(onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory rather than the file itself: editors replace
	// files on save, which would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(l.filePath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config directory: %w", err)
	}
	l.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != l.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := l.Reload(); err != nil {
					logger.Warn("config reload failed, keeping previous: %v", err)
					continue
				}
				logger.Info("config reloaded from %s", l.filePath)
				if onChange != nil {
					onChange(l.Config())
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: %v", err)
			}
		}
	}()

	return nil
}

// Close stops the watcher if one was started.
func (l *Loader) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc receives the re-read configuration. It is not called when the
// new file fails to parse or validate; the previous configuration stays
// in effect.
type ReloadFunc func(cfg *Config)

// Watcher re-reads the config file when it changes.
//
// The parent directory is watched rather than the file, so editors that
// save by rename and Kubernetes ConfigMap symlink swaps are both seen.
type Watcher struct {
	v        *viper.Viper
	path     string
	onReload ReloadFunc
	logger   *zap.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	stopOnce sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the settle delay.
func WithDebounce(d time.Duration) WatcherOption { return func(w *Watcher) { w.debounce = d } }

// WithWatcherLogger sets the logger.
func WithWatcherLogger(logger *zap.Logger) WatcherOption { return func(w *Watcher) { w.logger = logger } }

// NewWatcher watches the file v was loaded from.
func NewWatcher(v *viper.Viper, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		return nil, errors.New("no config file to watch")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	w := &Watcher{
		v:        v,
		path:     filepath.Clean(abs),
		onReload: onReload,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw
	return w, nil
}

// Start processes file events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Watching config file", zap.String("path", w.path))
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.Reload)
}

// Reload re-reads the file now.
func (w *Watcher) Reload() {
	if err := w.v.ReadInConfig(); err != nil {
		w.logger.Error("Config reload failed, keeping previous configuration", zap.Error(err))
		return
	}
	cfg, err := Decode(w.v)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		w.logger.Error("Reloaded config is invalid, keeping previous configuration", zap.Error(err))
		return
	}
	w.logger.Info("Config reloaded", zap.String("path", w.path))
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Stop closes the file watcher. The event loop exits once it observes the
// closed channels; Done reports when.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} { return w.done }

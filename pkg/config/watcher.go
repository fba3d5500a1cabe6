// Copyright 2025 OpenCVE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches the config file for changes and reloads the Manager
// when modifications are detected, so the admin server picks up
// credential or endpoint changes without a restart.
type Watcher struct {
	manager *Manager
	path    string
	watcher *fsnotify.Watcher

	// debounceDelay is the time to wait before reloading after a change
	// (prevents multiple reloads for rapid successive writes)
	debounceDelay time.Duration

	logger zerolog.Logger

	mu            sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher creates a watcher for the given config file path. The
// parent directory is watched, not the file itself, so atomic
// rename-based rewrites (the common editor save strategy) are seen.
func NewWatcher(manager *Manager, path string, logger zerolog.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config watcher requires a file path")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	return &Watcher{
		manager:       manager,
		path:          path,
		watcher:       fsWatcher,
		debounceDelay: 500 * time.Millisecond,
		logger:        logger,
	}, nil
}

// Start processes file events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer func() { _ = w.watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn().Err(err).Msg("Config watcher error")
			}
		}
	}()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.reload)
}

func (w *Watcher) reload() {
	if err := w.manager.Reload(); err != nil {
		w.logger.Error().Err(err).Str("file", w.path).Msg("Config reload failed, keeping previous configuration")
		return
	}
	w.logger.Info().Str("file", w.path).Msg("Configuration reloaded")
}

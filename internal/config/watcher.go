package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xlog "campfire/internal/log"
	"campfire/internal/metrics"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reparses a tables file whenever it changes and offers the result on
// Updates. Only the newest successfully parsed Tables is kept; consumers pick
// it up on their own goroutine.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	updates  chan *Tables
	logger   zerolog.Logger
	done     chan struct{}
	wg       sync.WaitGroup
}

// WatchTables starts watching path until ctx is cancelled or Close is called.
// The parent directory is watched so editors that replace the file are seen.
func WatchTables(ctx context.Context, path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch tables dir: %w", err)
	}
	w := &Watcher{
		path:     path,
		debounce: debounce,
		fsw:      fsw,
		updates:  make(chan *Tables, 1),
		logger:   xlog.WithComponent("config"),
		done:     make(chan struct{}),
	}
	w.logger.Info().Str("event", "tables.watch_started").Str("path", path).Msg("watching tables for changes")

	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Updates delivers freshly parsed tables.
func (w *Watcher) Updates() <-chan *Tables { return w.updates }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "tables.watch_stopped").Msg("tables watcher stopped")
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().Str("event", "tables.file_changed").Str("op", ev.Op.String()).Msg("tables file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Str("event", "tables.watch_error").Msg("tables watcher error")
		}
	}
}

func (w *Watcher) reload() {
	ts, err := LoadTables(w.path)
	if err != nil {
		metrics.TableReloadsTotal.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).Str("event", "tables.reload_failed").Msg("keeping previous tables")
		return
	}
	metrics.TableReloadsTotal.WithLabelValues("ok").Inc()
	// Replace any update the consumer has not picked up yet.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- ts
	w.logger.Info().Str("event", "tables.reloaded").Strs("tables", ts.Names()).Msg("tables reloaded")
}

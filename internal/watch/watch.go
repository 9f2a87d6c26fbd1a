// Package watch reports changes to a fixed set of header files using
// fsnotify. Events are debounced per file because editors often write
// several times per save.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event for a file before
// its change is reported.
const DefaultDebounce = 50 * time.Millisecond

// Watcher watches the parent directories of a set of files. Watching
// directories keeps files observable across atomic rename-style saves.
type Watcher struct {
	fw       *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	stopped bool
}

// New creates a watcher. A nil logger disables logging.
func New(log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fw: fw, log: log, debounce: DefaultDebounce}, nil
}

// Run watches files until ctx is cancelled or Close is called. onChange
// receives the path of each changed file exactly as it was passed in. Calls
// to onChange never overlap.
func (w *Watcher) Run(ctx context.Context, files []string, onChange func(path string)) error {
	tracked := make(map[string]string, len(files)) // abs path -> caller path
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		tracked[abs] = f
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}

	fired := make(chan string)
	done := make(chan struct{})
	defer close(done)
	var (
		tmu    sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		tmu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		tmu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := tracked[abs]; !ok {
				continue
			}
			tmu.Lock()
			if t, ok := timers[abs]; ok {
				t.Reset(w.debounce)
			} else {
				timers[abs] = time.AfterFunc(w.debounce, func() {
					tmu.Lock()
					delete(timers, abs)
					tmu.Unlock()
					select {
					case fired <- abs:
					case <-done:
					}
				})
			}
			tmu.Unlock()

		case abs := <-fired:
			w.log.Debug("header changed", zap.String("header", tracked[abs]))
			onChange(tracked[abs])

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	return w.fw.Close()
}

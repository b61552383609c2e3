package theme

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a theme file when it changes on disk.
// The parent directory is watched rather than the file itself, so editors that
// save by writing a temporary file and renaming it over the original are seen.
type Watcher struct {
	path     string
	onChange func(*Theme)
	onError  func(error)

	watcher  *fsnotify.Watcher
	closeCh  chan struct{}
	closedWg sync.WaitGroup
	once     sync.Once
}

// Watch starts watching path. onChange receives every successfully reloaded
// theme; onError (optional) receives watch and parse errors. The watcher stops
// when ctx is done or Close is called.
func Watch(ctx context.Context, path string, onChange func(*Theme), onError func(error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving theme path %s: %w", path, err)
	}
	if onError == nil {
		onError = func(error) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating theme watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		onError:  onError,
		watcher:  fsw,
		closeCh:  make(chan struct{}),
	}

	w.closedWg.Add(1)
	go w.processLoop(ctx)

	return w, nil
}

// Path returns the absolute path of the watched theme file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		w.closedWg.Wait()
		err = w.watcher.Close()
	})
	return err
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop(ctx context.Context) {
	defer w.closedWg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			t, err := Load(w.path)
			if err != nil {
				w.onError(err)
				continue
			}
			w.onChange(t)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

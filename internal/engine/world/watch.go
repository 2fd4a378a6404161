package world

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports writes to a scene file so the viewer can reload it.
// Events are delivered on a channel that the main loop drains between frames.
type Watcher struct {
	fs      *fsnotify.Watcher
	path    string
	changed chan struct{}
	done    chan struct{}
	log     *zap.Logger
}

// WatchFile starts watching path. The parent directory is watched so that
// editors that replace the file on save are handled.
func WatchFile(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		fs:      fw,
		path:    abs,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("scene watcher error", zap.Error(err))
		}
	}
}

// Changed returns a channel that receives after the file was written.
// Multiple writes between reads coalesce into one notification.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}

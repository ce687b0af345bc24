package evdev

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher drives onChange whenever /dev/input gains or loses an event node,
// so a caller can re-run crossput.DiscoverDevices on hot-plug instead of
// polling. Mirrors char5742-keyball-gestures's fsnotify-driven device
// monitor, generalized to the provider shape here.
type Watcher struct {
	fsw *fsnotify.Watcher
	done chan struct{}
}

// WatchHotplug starts watching /dev/input and calls onChange (from its own
// goroutine) once for every create/remove event touching an eventN node.
// The returned Watcher must be closed with Stop when no longer needed.
func WatchHotplug(onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add("/dev/input"); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func()) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !eventFileRE.MatchString(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				onChange()
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Stop closes the underlying fsnotify watcher and waits for the run
// goroutine to exit.
func (w *Watcher) Stop() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

package answers

import (
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the table whenever its backing file is rewritten. The
// returned function stops the watcher. Tables loaded from the embedded
// defaults have nothing to watch.
func (t *Table) Watch(onReload func(err error)) (func() error, error) {
	if t.path == "" {
		return func() error { return nil }, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(t.path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Editors replace files with rename+create; catch both.
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					err := t.Reload()
					if onReload != nil {
						onReload(err)
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}

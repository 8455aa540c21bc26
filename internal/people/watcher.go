package people

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"peoplesearch/internal/domain"
)

// Watcher reloads a people file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are picked up.
type Watcher struct {
	path     string
	onChange func([]domain.Person)
	onError  func(error)
}

// NewWatcher creates a watcher for path. onChange receives every successfully
// parsed version of the file; onError receives read, parse and watch errors.
// A failed reload leaves the previous dataset in place.
func NewWatcher(path string, onChange func([]domain.Person), onError func(error)) *Watcher {
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		onError:  onError,
	}
}

// Run watches until ctx is cancelled. It returns an error only if watching
// could not be started.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.onError(fmt.Errorf("watch %s: %w", w.path, err))
		}
	}
}

func (w *Watcher) reload() {
	people, err := LoadFile(w.path)
	if err != nil {
		w.onError(err)
		return
	}
	w.onChange(people)
}

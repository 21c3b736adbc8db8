package source

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange after path is written, created or renamed into place,
// collapsing bursts of events within debounce into a single call. It blocks
// until ctx is done. The parent directory is watched so editors that save
// by rename keep triggering.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("source: resolving %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("source: creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("source: watching %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("[watch] watching %s", abs)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		relOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&relOps == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			log.Printf("[watch] %s changed", abs)
			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] error: %v", err)
		}
	}
}

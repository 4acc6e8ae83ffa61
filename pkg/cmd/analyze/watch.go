package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mpapenbr/race-strategy-engine/log"
)

type watcher struct {
	ctx      context.Context
	dir      string
	debounce time.Duration
	log      *log.Logger
	fsw      *fsnotify.Watcher
}

func newWatcher(ctx context.Context, dir, debounce string) (*watcher, error) {
	d, err := time.ParseDuration(debounce)
	if err != nil {
		return nil, fmt.Errorf("invalid watch debounce: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("could not watch %s: %w", dir, err)
	}
	return &watcher{
		ctx:      ctx,
		dir:      dir,
		debounce: d,
		log:      log.GetFromContext(ctx).Named("watch"),
		fsw:      fsw,
	}, nil
}

// relevant reports whether a change of the file should trigger a re-export.
// Only csv exports are considered, case insensitive.
func relevant(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// run calls onChange after changes to the race exports until the context is done.
// Changes within the debounce duration are collected into one call.
//
//nolint:gocognit // by design
func (w *watcher) run(onChange func()) error {
	defer w.fsw.Close()
	w.log.Info("Watching for changes", log.String("dir", w.dir))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("context done, stopping watcher")
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				w.log.Info("watcher events channel closed, stopping watcher")
				return nil
			}
			w.log.Debug("change detected",
				log.String("file", event.Name), log.Any("event", event))
			if !relevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.log.Info("race data changed, re-exporting")
			onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.log.Info("watcher errors channel closed, stopping watcher")
				return nil
			}
			w.log.Error("watcher error", log.ErrorField(err))
		}
	}
}

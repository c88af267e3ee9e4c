package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the directory holding in.Path and re-resolves the
// configuration whenever it changes. onChange is called with the new value
// only when it differs from the previous one. It runs until ctx is cancelled.
//
// The directory is watched rather than the file so that atomic saves and
// Kubernetes ConfigMap symlink swaps are both seen.
func Watch(ctx context.Context, in Inputs, lookup LookupFunc, current *Resolved, onChange func(*Resolved)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(in.Path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", in.Path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}

			next := Resolve(in, lookup)
			if reflect.DeepEqual(next, current) {
				continue
			}
			current = next

			slog.Info("config: reloaded",
				"path", in.Path,
				"source", next.Source,
				"servers", len(next.Destinations),
				"topic", next.Topic,
			)
			onChange(next)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

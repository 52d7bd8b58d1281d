package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with the freshly loaded Config each
// time the file is written. It blocks until ctx is cancelled.
//
// A failed reload (unreadable file, invalid yaml, validation error) is
// logged and onChange is not called, so the caller keeps running on the
// previous configuration.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("support config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save atomically via rename, which surfaces as a
			// Create rather than a Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("support config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			slog.Info("support config: reloaded", "path", path)
			onChange(cfg)

			// An atomic save replaces the inode; re-add so future writes
			// keep arriving.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("support config: watcher error", "err", err)
		}
	}
}

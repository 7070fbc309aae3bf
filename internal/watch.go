package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	tt "github.com/gnoswap-labs/selparse/internal/types"
)

// WatchDebounce is how long a token file must stay quiet after a change
// before it is parsed again.
var WatchDebounce = 100 * time.Millisecond

// Watch re-parses token files under dirs whenever they are written and hands
// each report to handle. It blocks until ctx is done.
func (e *Engine) Watch(ctx context.Context, dirs []string, handle func(*tt.Report)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := addTree(watcher, dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	e.logger.Info("watching for token file changes", zap.Strings("dirs", dirs))

	done := make(chan struct{})
	defer close(done)

	ready := make(chan string)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						e.logger.Warn("failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !IsTokenFile(event.Name) {
				continue
			}

			// several writes in quick succession are parsed once
			name := event.Name
			if t, ok := pending[name]; ok {
				t.Reset(WatchDebounce)
				continue
			}
			pending[name] = time.AfterFunc(WatchDebounce, func() {
				select {
				case ready <- name:
				case <-done:
				}
			})

		case name := <-ready:
			delete(pending, name)
			report, err := e.Run(name)
			if err != nil {
				e.logger.Error("error parsing file", zap.String("file", name), zap.Error(err))
				continue
			}
			if report != nil {
				handle(report)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

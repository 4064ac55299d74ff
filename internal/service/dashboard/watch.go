package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

const watchDebounce = 500 * time.Millisecond

// Watch пересобирает страницы при изменении html в папках графиков и карты.
// Блокируется до отмены ctx.
func (s *Service) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer w.Close()

	for _, dir := range s.watchDirs() {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("os.MkdirAll: %w", err)
		}
		if err = w.Add(dir); err != nil {
			return fmt.Errorf("watcher.Add %s: %w", dir, err)
		}
		logger.Infof(ctx, "watching %s", dir)
	}

	if err = s.BuildAll(ctx); err != nil {
		logger.Errorf(ctx, "dashboard build: %s", err.Error())
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".html") {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debugf(ctx, "watch: %s", ev.String())
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf(ctx, "watcher: %s", err.Error())
		case <-timer.C:
			if err = s.BuildAll(ctx); err != nil {
				logger.Errorf(ctx, "dashboard rebuild: %s", err.Error())
				continue
			}
			logger.Infof(ctx, "dashboard rebuilt")
		}
	}
}

func (s *Service) watchDirs() []string {
	seen := make(map[string]struct{})
	var dirs []string
	add := func(dir string) {
		if dir == "" || dir == "." {
			return
		}
		dir = filepath.Clean(dir)
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}

	for _, v := range s.viewers {
		add(v.SourceDir)
	}
	if len(s.mapCandidates) > 0 && s.mapCandidates[0] != "" {
		add(filepath.Dir(s.mapCandidates[0]))
	}
	return dirs
}

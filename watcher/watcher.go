// Package watcher flags the scene for rebuild when the files of the active
// effect or image change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/assets"
	"github.com/richinsley/goshadereffect/logging"
)

// Watcher marks itself dirty when a relevant file changes. The render loop
// polls Dirty and rebuilds on its own thread.
type Watcher struct {
	fsw      *fsnotify.Watcher
	relevant func(path string) bool
	dirty    atomic.Bool
	done     chan struct{}
}

// Relevant matches the files the scene for effect and image is built from.
func Relevant(effect, image string) func(path string) bool {
	files := map[string]bool{
		filepath.FromSlash(assets.TemplatePath(effect)):   true,
		filepath.FromSlash(assets.PropertiesPath(effect)): true,
		filepath.FromSlash(assets.ImagePath(image)):       true,
	}
	return func(path string) bool {
		rel := filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path))
		return files[rel]
	}
}

// Watch starts watching the effects and images directories under dir until
// ctx is done or Close is called.
func Watch(ctx context.Context, dir string, relevant func(path string) bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	for _, sub := range []string{assets.EffectsDir, assets.ImagesDir} {
		if err := fsw.Add(filepath.Join(dir, sub)); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", sub, err)
		}
	}
	w := &Watcher{
		fsw:      fsw,
		relevant: relevant,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Watcher) run(ctx context.Context) {
	logger, _ := logging.SubFrom(ctx, "watcher")
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.relevant(event.Name) {
				logger.Info("Resource changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
				w.dirty.Store(true)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// Dirty reports whether a relevant file changed since the last call.
func (w *Watcher) Dirty() bool {
	return w.dirty.Swap(false)
}

func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

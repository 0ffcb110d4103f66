// Package watcher observes the asset folder and feeds newly created image
// files into the generator's single-item path. Events flow through a
// single-consumer queue, so each trigger completes its own gateway round
// trip and store write before the next one starts.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/cosmicsol/listforge/internal/logger"
	"github.com/cosmicsol/listforge/internal/service"
)

// Handler processes one newly detected asset path.
type Handler func(ctx context.Context, path string) error

// Watcher wires filesystem create events to a Handler.
type Watcher struct {
	dir       string
	queueSize int
	handler   Handler
	logger    *logger.Logger
}

// New creates a watcher over dir. queueSize bounds the event queue; when it
// overflows, excess events are dropped and logged (the next batch run picks
// the assets up via the idempotency gate).
func New(dir string, queueSize int, handler Handler, log *logger.Logger) *Watcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Watcher{
		dir:       dir,
		queueSize: queueSize,
		handler:   handler,
		logger:    log,
	}
}

func (w *Watcher) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return w.logger
}

// Run observes the asset folder until ctx is canceled. Only files arriving
// after Run starts trigger the handler; pre-existing files are ignored.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log(ctx).WithField("dir", w.dir).Info("Watch mode armed")

	queue := make(chan string, w.queueSize)

	// Producer: filter raw events into the queue without blocking on the
	// handler's gateway round trips.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !accept(ev) {
					continue
				}
				select {
				case queue <- ev.Name:
				default:
					w.log(ctx).WithField(logger.FieldAsset, filepath.Base(ev.Name)).
						Warn("Event queue full, dropping event")
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log(ctx).WithError(err).Error("Watcher error")
			}
		}
	}()

	// Single consumer: events are handled strictly in arrival order.
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-queue:
			ectx := logger.SetRunID(ctx, uuid.New().String())
			w.log(ectx).WithField(logger.FieldAsset, filepath.Base(path)).Info("New asset detected")
			if err := w.handler(ectx, path); err != nil {
				w.log(ectx).WithField(logger.FieldAsset, filepath.Base(path)).
					WithError(err).Error("Failed to process new asset")
			}
		}
	}
}

// accept filters raw filesystem events down to newly created, visible image
// files. Directories and dot-files never trigger generation.
func accept(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if !service.IsImageAsset(base) {
		return false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || info.IsDir() {
		return false
	}
	return true
}

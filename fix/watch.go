package fix

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher processes program files again whenever they are written.
type Watcher struct {
	pipeline  *Pipeline
	processor Processor
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	cache     *fileCache
	report    func(FileResult, error)

	// Debounce is the delay between a write and the processing of the
	// file, so that consecutive writes are seen as one.
	Debounce time.Duration
}

// NewWatcher returns a watcher handing the outcome of every run of
// processor to report.
func NewWatcher(p *Pipeline, processor Processor, logger *zap.Logger, report func(FileResult, error)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		pipeline:  p,
		processor: processor,
		logger:    logger,
		watcher:   watcher,
		cache:     newFileCache(),
		report:    report,
		Debounce:  100 * time.Millisecond,
	}, nil
}

// Add watches path: a program file, or every directory below path.
func (w *Watcher) Add(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.watcher.Add(path)
	}
	err = filepath.WalkDir(path, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(dir)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run handles file events until ctx is done. The watcher is closed when
// Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !hasDesiredExtension(event.Name) {
		return
	}
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.Debounce):
	}
	hash, err := getFileHash(event.Name)
	if err != nil {
		w.report(FileResult{}, err)
		return
	}
	if w.cache.unchanged(event.Name, hash) {
		w.logger.Debug("program file unchanged", zap.String("file", event.Name))
		return
	}
	w.logger.Debug("program file changed", zap.String("file", event.Name))
	result, err := w.processor(ctx, w.pipeline, event.Name)
	if err != nil {
		w.cache.invalidate(event.Name)
	} else {
		w.cache.set(event.Name, hash)
	}
	w.report(result, err)
}

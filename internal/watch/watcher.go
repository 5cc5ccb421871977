// Package watch reports images that appear in a directory.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"superres/internal/codec"
	"superres/internal/logger"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher emits the path of every supported image created or rewritten in a
// directory once its events have been quiet for the debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	events   chan string
	dir      string
	debounce time.Duration
	logger   logger.Logger

	pending map[string]time.Time
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func New(dir string, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		events:   make(chan string, 100),
		dir:      dir,
		debounce: debounce,
		logger:   log,
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	log.Info("Watcher", "watching directory", map[string]interface{}{"dir": dir})
	return w, nil
}

// Events yields settled image paths. It is closed by Close.
func (w *Watcher) Events() <-chan string {
	return w.events
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer close(w.events)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !Wanted(event.Name) {
				continue
			}
			w.pending[event.Name] = time.Now()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher", err, map[string]interface{}{"dir": w.dir})

		case now := <-ticker.C:
			w.flush(now)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) flush(now time.Time) {
	for path, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, path)

		select {
		case w.events <- path:
		case <-w.done:
			return
		}
	}
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// Wanted reports whether path is a source image worth upscaling. Hidden
// files and previous outputs are ignored so an output folder can be the
// watched folder.
func Wanted(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "-upscaled") {
		return false
	}
	return codec.IsSupported(path)
}

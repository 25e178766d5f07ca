// Package filewatch reloads documents whose linked Markdown file was
// edited outside the editor.
package filewatch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is read.
// Editors often write a file in several steps.
const DefaultSettle = 100 * time.Millisecond

// ChangeHandler receives the full contents of a changed file.
type ChangeHandler func(path, content string)

// Watcher watches linked files. fsnotify watches directories, so each
// file's directory is added and events for other files are dropped.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeHandler
	settle   time.Duration

	mu       sync.Mutex
	watching map[string]func(func()) // path -> debouncer
	done     chan struct{}
}

// New starts a watcher. A non-positive settle uses DefaultSettle.
func New(settle time.Duration, onChange ChangeHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		settle:   settle,
		watching: make(map[string]func(func())),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch starts reporting changes to path.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	if _, ok := w.watching[abs]; !ok {
		w.watching[abs] = debounce.New(w.settle)
	}
	w.mu.Unlock()
	return w.watcher.Add(filepath.Dir(abs))
}

// Unwatch stops reporting changes to path. The directory stays watched.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	delete(w.watching, abs)
	w.mu.Unlock()
}

// Watching returns the watched paths.
func (w *Watcher) Watching() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.watching))
	for p := range w.watching {
		out = append(out, p)
	}
	return out
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors that save by renaming a temp file produce Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			w.mu.Lock()
			debounced, watched := w.watching[abs]
			w.mu.Unlock()
			if watched {
				debounced(func() { w.read(abs) })
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[filewatch] watcher error: %v", err)
		}
	}
}

func (w *Watcher) read(path string) {
	w.mu.Lock()
	_, watched := w.watching[path]
	w.mu.Unlock()
	if !watched {
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[filewatch] read %s: %v", path, err)
		return
	}
	if w.onChange != nil {
		w.onChange(path, string(content))
	}
}

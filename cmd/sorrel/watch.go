package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sorrel-lang/sorrel/pkg/sorrel/config"
	"github.com/sorrel-lang/sorrel/pkg/sorrel/sorrel"
)

// watcher monitors view files and recompiles them as they change
type watcher struct {
	watcher *fsnotify.Watcher
	roots   []string
	opts    sorrel.Options
	stdout  io.Writer
	stderr  io.Writer

	// Track last change per file to debounce rapid changes
	mu         sync.Mutex
	lastChange map[string]time.Time
	debounce   time.Duration
}

// watchAndBuild compiles everything once, then recompiles views as they
// change until interrupted.
func watchAndBuild(paths, files []string, cfg *config.Config, opts sorrel.Options) int {
	// Initial build; watch continues even when it fails
	buildFiles(files, opts)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w, err := newWatcher(paths, cfg, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer w.Close()

	if err := w.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	<-ctx.Done()
	w.logInfo("stopped")
	return 0
}

// newWatcher creates a file watcher over the directories holding the
// given paths.
func newWatcher(paths []string, cfg *config.Config, opts sorrel.Options) (*watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond

	var stdout io.Writer = os.Stdout
	if *quietFlag || *quietLongFlag || cfg.Quiet {
		stdout = io.Discard
	}

	return &watcher{
		watcher:    fsWatcher,
		roots:      watchRoots(paths),
		opts:       opts,
		stdout:     stdout,
		stderr:     os.Stderr,
		lastChange: make(map[string]time.Time),
		debounce:   debounce,
	}, nil
}

// watchRoots returns the unique directories to watch: each directory
// argument itself, and the parent of each file argument.
func watchRoots(paths []string) []string {
	dirs := make(map[string]bool)

	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			dirs[path] = true
		} else {
			dirs[filepath.Dir(path)] = true
		}
	}

	result := make([]string, 0, len(dirs))
	for dir := range dirs {
		result = append(result, dir)
	}
	return result
}

// Start begins watching for file changes
func (w *watcher) Start(ctx context.Context) error {
	for _, dir := range w.roots {
		if err := w.watchDirRecursive(dir); err != nil {
			w.logError("failed to watch %s: %v", dir, err)
		} else {
			w.logInfo("watching: %s", dir)
		}
	}

	// Start event loop
	go w.eventLoop(ctx)

	return nil
}

// watchDirRecursive adds a directory and its subdirectories to the watch list
func (w *watcher) watchDirRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events
func (w *watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Directories created under a watched root join the watch list
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watchDirRecursive(event.Name); err != nil {
						w.logError("failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}

			if filepath.Ext(event.Name) != ".sor" {
				continue
			}

			// Debounce rapid changes to the same file
			w.mu.Lock()
			if time.Since(w.lastChange[event.Name]) < w.debounce {
				w.mu.Unlock()
				continue
			}
			w.lastChange[event.Name] = time.Now()
			w.mu.Unlock()

			w.handleFileChange(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// handleFileChange recompiles one changed view file
func (w *watcher) handleFileChange(path string) {
	w.logInfo("changed: %s", path)
	if _, err := sorrel.CompileFile(path, w.opts); err != nil {
		printCompileError(path, err)
	}
}

// Close stops the watcher
func (w *watcher) Close() error {
	return w.watcher.Close()
}

func (w *watcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *watcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}

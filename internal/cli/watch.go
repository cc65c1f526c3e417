package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/internal/console"
)

const debounceDelay = 300 * time.Millisecond

// Watch revalidates files whenever they change, until ctx is cancelled.
// Directories are watched rather than files so editors that replace files
// on save keep being tracked.
func Watch(ctx context.Context, v *docschema.Validator, files []string, opts ValidateOptions, w io.Writer, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]string, len(files))
	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		tracked[abs] = f
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	out := &watchOutput{w: w}
	defer out.close()
	revalidate := func(files []string) {
		if ctx.Err() != nil {
			return
		}
		results := ValidateFiles(v, files, opts)
		if err := out.print(ctx, results, opts); err != nil {
			logger.Error("failed to print results", "error", err)
		}
	}

	revalidate(files)
	fmt.Fprintln(w, console.FormatInfoMessage("Watching for file changes"))

	var debounceTimer *time.Timer
	var pendingMu sync.Mutex
	pending := make(map[string]struct{})
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			name, ok := tracked[filepath.Clean(event.Name)]
			if !ok || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("detected change", "file", name, "op", event.Op.String())

			pendingMu.Lock()
			pending[name] = struct{}{}
			pendingMu.Unlock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				pendingMu.Lock()
				changed := make([]string, 0, len(pending))
				for f := range pending {
					changed = append(changed, f)
				}
				pending = make(map[string]struct{})
				pendingMu.Unlock()
				if len(changed) > 0 {
					revalidate(changed)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// watchOutput serializes result printing and stops it once Watch returns, so
// a debounce callback that already fired cannot write afterwards.
type watchOutput struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

func (o *watchOutput) print(ctx context.Context, results []FileResult, opts ValidateOptions) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || ctx.Err() != nil {
		return nil
	}
	_, err := PrintResults(o.w, results, opts)
	return err
}

func (o *watchOutput) close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
}

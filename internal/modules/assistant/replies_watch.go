package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// LoadReplyFile reads a reply table from a YAML file.
func LoadReplyFile(path string) (*ReplyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read replies file: %w", err)
	}
	return ParseReplies(data)
}

// ReplyWatcher serves replies from a file and reloads it whenever it changes.
// A reload that fails to parse keeps the previous table.
type ReplyWatcher struct {
	path    string
	current atomic.Pointer[ReplyTable]
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// reloaded is signalled after every reload attempt; tests wait on it.
	reloaded chan error
}

// WatchReplies loads path and starts watching it for changes.
func WatchReplies(path string, logger *slog.Logger) (*ReplyWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)

	table, err := LoadReplyFile(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file system watcher: %w", err)
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &ReplyWatcher{
		path:     path,
		watcher:  watcher,
		logger:   logger.With("component", "reply_watcher", "path", path),
		cancel:   cancel,
		done:     make(chan struct{}),
		reloaded: make(chan error, 1),
	}
	w.current.Store(table)
	go w.run(ctx)

	w.logger.Debug("Watching assistant replies for changes")
	return w, nil
}

// Lookup answers from the most recently loaded table.
func (w *ReplyWatcher) Lookup(message string) string {
	return w.current.Load().Lookup(message)
}

// Close stops watching. The last loaded table stays available.
func (w *ReplyWatcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *ReplyWatcher) run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File system watcher error", "error", err)
		}
	}
}

func (w *ReplyWatcher) reload() {
	table, err := LoadReplyFile(w.path)
	if err != nil {
		w.logger.Warn("Keeping previous replies, reload failed", "error", err)
	} else {
		w.current.Store(table)
		w.logger.Info("Assistant replies reloaded")
	}

	select {
	case w.reloaded <- err:
	default:
	}
}

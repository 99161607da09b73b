package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type.
type WatchEvent string

// Watch event types.
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// WatchOptions defines options for watching filesystem changes.
type WatchOptions struct {
	// Events to watch for (create, modify, delete, rename, chmod).
	// If empty, all events are watched.
	Events []WatchEvent

	// Whether to watch subdirectories recursively.
	Recursive bool

	// Timeout duration (0 means watch until the context is canceled).
	Timeout time.Duration

	Logger *zap.Logger
}

// WatchMessage contains information about a filesystem event.
type WatchMessage struct {
	Path  string     // Full path to the entry
	Name  string     // Base name of the entry
	Dir   string     // Directory containing the entry
	Kind  Kind       // Entry kind (KindUnknown for deleted entries)
	Event WatchEvent // Event type
	Time  time.Time  // Event time
}

// WatchResult represents a watch event result.
type WatchResult struct {
	Message WatchMessage
	Error   error
}

// WatchHandler is a function that processes watch events.
type WatchHandler func(ctx context.Context, result WatchResult) error

// defaultWatchHandler returns a handler that prints events.
func defaultWatchHandler() WatchHandler {
	return func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		fmt.Printf("%s: %s\n", strings.ToUpper(string(result.Message.Event)), result.Message.Path)
		return nil
	}
}

// Watch monitors a directory for filesystem changes until the context is
// canceled or the optional timeout elapses. With Recursive set, the initial
// registration walks the tree and every directory created afterwards is
// registered as well; entries that already exist inside a newly created
// directory are announced as creations, since they can land before the
// watch on their parent is in place.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	if handler == nil {
		handler = defaultWatchHandler()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("error watching directory %s: %w", root, err)
	}

	if opts.Recursive {
		walkOpts := WalkOptions{
			Logger: logger,
			OnError: func(path string, err error) {
				logger.Warn("error listing directory", zap.String("path", path), zap.Error(err))
			},
		}
		for rec := range Walk(root, walkOpts) {
			if rec.Path == root {
				continue
			}
			if err := watcher.Add(rec.Path); err != nil {
				logger.Warn("error watching directory", zap.String("path", rec.Path), zap.Error(err))
			}
		}
	}

	eventMap := makeEventMap(opts.Events)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				eventType, match := classifyEvent(event, eventMap)
				if !match {
					continue
				}

				msg := WatchMessage{
					Path:  event.Name,
					Name:  filepath.Base(event.Name),
					Dir:   filepath.Dir(event.Name),
					Event: eventType,
					Time:  time.Now(),
				}

				if eventType == EventCreate {
					ent, err := lstatEntry(msg.Dir, msg.Name)
					if err != nil {
						// Gone again already; report the bare event.
						msg.Kind = KindUnknown
					} else {
						msg.Kind = ent.Meta.Kind
						if ent.Meta.Kind == KindDir && opts.Recursive {
							registerNewDirectory(ctx, watcher, event.Name, handler, logger)
						}
					}
				}

				if err := handler(ctx, WatchResult{Message: msg}); err != nil {
					handler(ctx, WatchResult{
						Error: fmt.Errorf("error handling event: %w", err),
					})
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				handler(ctx, WatchResult{
					Error: fmt.Errorf("watcher error: %w", err),
				})

			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	wg.Wait()
	return nil
}

// registerNewDirectory adds a freshly created directory to the watcher and
// announces the entries already inside it, which would otherwise be missed.
func registerNewDirectory(ctx context.Context, watcher *fsnotify.Watcher, dir string, handler WatchHandler, logger *zap.Logger) {
	if err := watcher.Add(dir); err != nil {
		handler(ctx, WatchResult{
			Error: fmt.Errorf("error watching new directory %s: %w", dir, err),
		})
		return
	}

	entries, err := ReadDirents(dir)
	if err != nil {
		logger.Warn("error listing new directory", zap.String("path", dir), zap.Error(err))
		return
	}
	for _, ent := range entries {
		msg := WatchMessage{
			Path:  filepath.Join(dir, ent.Name),
			Name:  ent.Name,
			Dir:   dir,
			Kind:  ent.Meta.Kind,
			Event: EventCreate,
			Time:  time.Now(),
		}
		if err := handler(ctx, WatchResult{Message: msg}); err != nil {
			handler(ctx, WatchResult{
				Error: fmt.Errorf("error handling event: %w", err),
			})
		}
		if ent.Meta.Kind == KindDir {
			registerNewDirectory(ctx, watcher, msg.Path, handler, logger)
		}
	}
}

func makeEventMap(events []WatchEvent) map[fsnotify.Op]bool {
	eventMap := make(map[fsnotify.Op]bool)
	if len(events) == 0 {
		eventMap[fsnotify.Create] = true
		eventMap[fsnotify.Write] = true
		eventMap[fsnotify.Remove] = true
		eventMap[fsnotify.Rename] = true
		eventMap[fsnotify.Chmod] = true
		return eventMap
	}
	for _, e := range events {
		switch e {
		case EventCreate:
			eventMap[fsnotify.Create] = true
		case EventModify:
			eventMap[fsnotify.Write] = true
		case EventDelete:
			eventMap[fsnotify.Remove] = true
		case EventRename:
			eventMap[fsnotify.Rename] = true
		case EventChmod:
			eventMap[fsnotify.Chmod] = true
		}
	}
	return eventMap
}

func classifyEvent(event fsnotify.Event, eventMap map[fsnotify.Op]bool) (WatchEvent, bool) {
	switch {
	case event.Has(fsnotify.Create) && eventMap[fsnotify.Create]:
		return EventCreate, true
	case event.Has(fsnotify.Write) && eventMap[fsnotify.Write]:
		return EventModify, true
	case event.Has(fsnotify.Remove) && eventMap[fsnotify.Remove]:
		return EventDelete, true
	case event.Has(fsnotify.Rename) && eventMap[fsnotify.Rename]:
		return EventRename, true
	case event.Has(fsnotify.Chmod) && eventMap[fsnotify.Chmod]:
		return EventChmod, true
	}
	return "", false
}

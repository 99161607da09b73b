package walk

import (
	"context"
	"iter"

	internal "github.com/amblefs/amble/internal/scan"
	"go.uber.org/zap"
)

// Re-export the types from the internal package.
type (
	// Kind classifies a directory entry.
	Kind = internal.Kind

	// Metadata is the normalized per-entry metadata record.
	Metadata = internal.Metadata

	// Entry is one directory listing result.
	Entry = internal.Entry

	// Scanner is a forward-only cursor over one directory's entries.
	Scanner = internal.Scanner

	// ScanError wraps a failed enumeration operation.
	ScanError = internal.ScanError

	// WalkOrder selects pre-order or post-order record production.
	WalkOrder = internal.WalkOrder

	// WalkOptions configures a Walk.
	WalkOptions = internal.WalkOptions

	// WalkRecord is the per-directory unit produced by Walk.
	WalkRecord = internal.WalkRecord

	// ErrorFn receives per-directory listing failures during a Walk.
	ErrorFn = internal.ErrorFn

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// Re-export watch types.
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchMessage = internal.WatchMessage
	WatchResult  = internal.WatchResult
	WatchHandler = internal.WatchHandler
)

// Re-export the constants.
const (
	// Entry kinds
	KindUnknown = internal.KindUnknown
	KindFile    = internal.KindFile
	KindDir     = internal.KindDir
	KindSymlink = internal.KindSymlink

	// Traversal orders
	TopDown  = internal.TopDown
	BottomUp = internal.BottomUp

	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	// Watch event constants
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// Scan opens a lazy enumeration of one directory. Open failures surface
// immediately; the entry sequence is produced on demand.
func Scan(dir string) (*Scanner, error) {
	return internal.Scan(dir)
}

// ReadDirents returns all entries of dir in enumeration order.
func ReadDirents(dir string) ([]Entry, error) {
	return internal.ReadDirents(dir)
}

// ReadDirnames returns the base names of all entries of dir in enumeration
// order, as a faster drop-in for a plain name listing.
func ReadDirnames(dir string) ([]string, error) {
	return internal.ReadDirnames(dir)
}

// Walk returns a lazy sequence of per-directory records for the tree rooted
// at top.
func Walk(top string, opts WalkOptions) iter.Seq[WalkRecord] {
	return internal.Walk(top, opts)
}

// Watch monitors a directory for filesystem changes.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, opts, handler)
}

// NewLogger creates a zap logger with the specified log level, matching the
// logger the CLI uses.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

package scan

import (
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// WalkOrder selects when a directory's record is produced relative to its
// descendants' records.
type WalkOrder int

const (
	// TopDown yields a directory's record before descending into it.
	TopDown WalkOrder = iota
	// BottomUp yields a directory's record after all of its descendants'.
	BottomUp
)

// ErrorFn receives the failure when opening or listing a directory fails.
// The walk never aborts for such a failure; the directory and everything
// below it simply contribute no records. Without a callback, failures are
// dropped silently.
type ErrorFn func(path string, err error)

// WalkOptions configures a Walk.
type WalkOptions struct {
	Order       WalkOrder
	FollowLinks bool // descend into symlinks that point at directories
	OnError     ErrorFn
	Logger      *zap.Logger
}

// WalkRecord is produced once per directory visited: the directory's path
// and its immediate entries partitioned into subdirectories and
// non-directories, both in enumeration order. Every entry's kind has been
// resolved by the time the record is yielded; KindUnknown never escapes.
type WalkRecord struct {
	Path  string
	Dirs  []Entry
	Files []Entry
}

// DirNames returns the subdirectory base names in enumeration order.
func (r WalkRecord) DirNames() []string { return entryNames(r.Dirs) }

// FileNames returns the non-directory base names in enumeration order.
func (r WalkRecord) FileNames() []string { return entryNames(r.Files) }

func entryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Walk returns a lazy sequence of WalkRecords for the tree rooted at top.
// The sequence is single-pass and pull-driven: no directory is opened until
// the consumer asks for the next record, and breaking out of the range at
// any point releases every listing handle still open along the recursion
// stack. At most one handle per recursion level is open at a time, because
// each directory's listing is fully drained and closed before any of its
// subdirectories are entered.
//
// Symbolic links always appear in the records of their parent directory
// (under Dirs when their target is a directory), but are only descended
// into when opts.FollowLinks is set. With FollowLinks, cycle avoidance is
// the caller's responsibility.
func Walk(top string, opts WalkOptions) iter.Seq[WalkRecord] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(yield func(WalkRecord) bool) {
		logger.Debug("starting walk",
			zap.String("top", top),
			zap.Bool("bottom_up", opts.Order == BottomUp),
			zap.Bool("follow_links", opts.FollowLinks),
		)
		walkInto(top, &opts, logger, yield)
	}
}

// walkInto visits one directory and recurses. It returns false only when
// the consumer stopped pulling, which unwinds the whole walk; a failed
// directory returns true so that siblings keep going.
func walkInto(dir string, opts *WalkOptions, logger *zap.Logger, yield func(WalkRecord) bool) bool {
	rec, ok := readRecord(dir, opts, logger)
	if !ok {
		return true
	}

	if opts.Order == TopDown && !yield(rec) {
		return false
	}
	for i := range rec.Dirs {
		ent := &rec.Dirs[i]
		if ent.Meta.Kind == KindSymlink && !opts.FollowLinks {
			continue
		}
		if !walkInto(filepath.Join(dir, ent.Name), opts, logger, yield) {
			return false
		}
	}
	if opts.Order == BottomUp && !yield(rec) {
		return false
	}
	return true
}

// readRecord drains one directory's enumeration into a classified record.
// The listing handle is released before readRecord returns, so recursion
// never multiplies open handles beyond the current depth. Any failure —
// opening the directory, advancing the listing, or the one fallback stat
// for an unresolved entry — voids the whole record and is routed to
// OnError.
func readRecord(dir string, opts *WalkOptions, logger *zap.Logger) (WalkRecord, bool) {
	sc, err := Scan(dir)
	if err != nil {
		reportWalkError(dir, err, opts, logger)
		return WalkRecord{}, false
	}
	defer sc.Close()

	rec := WalkRecord{Path: dir}
	for sc.Scan() {
		ent := sc.Entry()
		if ent.Meta.Kind == KindUnknown {
			resolved, err := lstatEntry(dir, ent.Name)
			if err != nil {
				reportWalkError(dir, err, opts, logger)
				return WalkRecord{}, false
			}
			ent = resolved
		}
		switch ent.Meta.Kind {
		case KindDir:
			rec.Dirs = append(rec.Dirs, ent)
		case KindSymlink:
			// Classify by the link target, the way a stat-based listing
			// would; a dangling link counts as a file.
			if targetIsDir(filepath.Join(dir, ent.Name)) {
				rec.Dirs = append(rec.Dirs, ent)
			} else {
				rec.Files = append(rec.Files, ent)
			}
		default:
			rec.Files = append(rec.Files, ent)
		}
	}
	if err := sc.Err(); err != nil {
		reportWalkError(dir, err, opts, logger)
		return WalkRecord{}, false
	}
	return rec, true
}

// lstatEntry is the fallback metadata query for entries whose kind the
// native listing could not resolve. Exactly one stat per unresolved entry,
// never a blanket per-entry pass.
func lstatEntry(dir, name string) (Entry, error) {
	fi, err := os.Lstat(filepath.Join(dir, name))
	if err != nil {
		return Entry{}, &ScanError{Op: "lstat", Path: filepath.Join(dir, name), Err: err}
	}
	return entryFromFileInfo(fi), nil
}

func targetIsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func reportWalkError(dir string, err error, opts *WalkOptions, logger *zap.Logger) {
	logger.Debug("skipping directory", zap.String("path", dir), zap.Error(err))
	if opts.OnError != nil {
		opts.OnError(dir, err)
	}
}

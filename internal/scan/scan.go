// Package scan provides low-level directory enumeration that reuses the type
// information the operating system already returns per entry, instead of
// issuing a separate stat call for every name.
package scan

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"
	"time"
)

// --------------------------------------------------------------------------
// Entry model
// --------------------------------------------------------------------------

// Kind classifies a directory entry.
type Kind uint8

const (
	// KindUnknown means the enumeration primitive did not resolve the entry
	// type; callers must stat the entry before branching on it.
	KindUnknown Kind = iota
	KindFile
	KindDir
	KindSymlink
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Metadata is a normalized stand-in for a full stat record. Kind is always
// set (possibly to KindUnknown). The remaining fields are only meaningful
// when Full is true, which backends set when the platform listing carries
// full per-entry attributes (Windows) or when the entry has been resolved
// with an explicit stat. AccessTime and ChangeTime are additionally
// platform-dependent and may stay zero even then.
type Metadata struct {
	Kind       Kind
	Size       int64
	Mode       fs.FileMode
	ModTime    time.Time
	AccessTime time.Time
	ChangeTime time.Time
	Full       bool
}

// Entry is one directory listing result: a base name plus whatever metadata
// the enumeration produced for it.
type Entry struct {
	Name string
	Meta Metadata
}

// IsDir reports whether the entry's resolved kind is a directory.
func (e Entry) IsDir() bool { return e.Meta.Kind == KindDir }

// kindFromMode maps a stat mode to an entry kind. Non-regular entries that
// are neither directories nor symlinks (FIFOs, sockets, devices) classify
// as files, matching what directory-bit-only platforms report.
func kindFromMode(mode fs.FileMode) Kind {
	switch mode & fs.ModeType {
	case fs.ModeDir:
		return KindDir
	case fs.ModeSymlink:
		return KindSymlink
	default:
		return KindFile
	}
}

// entryFromFileInfo builds a fully-populated Entry from a stat result.
func entryFromFileInfo(fi fs.FileInfo) Entry {
	atime, ctime := statTimes(fi)
	return Entry{
		Name: fi.Name(),
		Meta: Metadata{
			Kind:       kindFromMode(fi.Mode()),
			Size:       fi.Size(),
			Mode:       fi.Mode(),
			ModTime:    fi.ModTime(),
			AccessTime: atime,
			ChangeTime: ctime,
			Full:       true,
		},
	}
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ScanError wraps a failed enumeration operation with the directory it was
// issued against. errors.Is with fs.ErrNotExist or fs.ErrPermission
// distinguishes missing directories and forbidden listings from other I/O
// failures.
type ScanError struct {
	Op   string // "open", "readdirent", "close", or "lstat"
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// --------------------------------------------------------------------------
// Scanner
// --------------------------------------------------------------------------

// Backend contract implemented by the build-tagged platform files
// (scan_linux.go, scan_portable.go). next returns io.EOF when the listing
// is exhausted; names are raw, including "." and "..".
var _ func(string) (*dirReader, error) = openDirReader

var _ interface {
	next() (Entry, error)
	close() error
} = (*dirReader)(nil)

// openHandles counts currently-open native listing handles. A long-running
// traversal that leaks handles exhausts finite OS resources, so tests
// assert this returns to zero on every termination path.
var openHandles atomic.Int64

// OpenHandles reports the number of native directory handles currently held
// by live Scanners.
func OpenHandles() int64 { return openHandles.Load() }

// Scanner is a forward-only cursor over one directory's entries. It holds
// exactly one native listing handle, released when the listing is exhausted,
// when an error occurs, or when Close is called, whichever comes first.
// A Scanner is not restartable; call Scan again for a fresh pass.
//
// Usage follows bufio.Scanner:
//
//	sc, err := scan.Scan(dir)
//	if err != nil { ... }
//	defer sc.Close()
//	for sc.Scan() {
//		ent := sc.Entry()
//		...
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	dir    string
	rd     *dirReader
	ent    Entry
	err    error
	closed bool
}

// Scan opens an enumeration of dir. Open failures (missing directory,
// permission denied, other I/O errors) surface here, eagerly, even though
// the entry sequence itself is produced lazily.
func Scan(dir string) (*Scanner, error) {
	rd, err := openDirReader(dir)
	if err != nil {
		return nil, &ScanError{Op: "open", Path: dir, Err: err}
	}
	openHandles.Add(1)
	return &Scanner{dir: dir, rd: rd}, nil
}

// Scan advances to the next entry, skipping the "." and ".." pseudo-entries.
// It returns false at the end of the listing or on error; the two cases are
// distinguished by Err. The underlying handle is released as soon as Scan
// returns false.
func (s *Scanner) Scan() bool {
	if s.closed || s.err != nil {
		return false
	}
	for {
		ent, err := s.rd.next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = &ScanError{Op: "readdirent", Path: s.dir, Err: err}
			}
			s.Close()
			return false
		}
		if ent.Name == "." || ent.Name == ".." {
			continue
		}
		s.ent = ent
		return true
	}
}

// Entry returns the entry produced by the most recent call to Scan.
func (s *Scanner) Entry() Entry { return s.ent }

// Err returns the first error encountered while advancing the listing.
// Normal exhaustion is not an error.
func (s *Scanner) Err() error { return s.err }

// Name returns the directory this Scanner enumerates.
func (s *Scanner) Name() string { return s.dir }

// Close releases the native listing handle. It is safe to call multiple
// times and after exhaustion.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	openHandles.Add(-1)
	if err := s.rd.close(); err != nil {
		return &ScanError{Op: "close", Path: s.dir, Err: err}
	}
	return nil
}

// --------------------------------------------------------------------------
// Convenience listings
// --------------------------------------------------------------------------

// ReadDirents returns all entries of dir in enumeration order.
func ReadDirents(dir string) ([]Entry, error) {
	sc, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	var entries []Entry
	for sc.Scan() {
		entries = append(entries, sc.Entry())
	}
	return entries, sc.Err()
}

// ReadDirnames returns the base names of all entries of dir in enumeration
// order. It is a drop-in replacement for a plain name listing that shares
// the Scanner's cost profile.
func ReadDirnames(dir string) ([]string, error) {
	sc, err := Scan(dir)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	var names []string
	for sc.Scan() {
		names = append(names, sc.Entry().Name)
	}
	return names, sc.Err()
}

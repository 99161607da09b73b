//go:build !linux

package scan

import (
	"io"
	"io/fs"
	"os"
	"time"
)

// readdirBatchSize bounds how many stat records one Readdir call returns,
// so a huge directory never has to be materialized at once.
const readdirBatchSize = 128

// dirReader is the portable enumeration backend: batched os.File.Readdir
// over an open directory handle. On Windows, Readdir is backed by the
// FindFirstFile/FindNextFile data, so each entry arrives with its full
// attributes without extra syscalls; elsewhere this is the classic
// list-plus-stat fallback, behaviorally identical to the native path.
type dirReader struct {
	f       *os.File
	batch   []os.FileInfo
	i       int
	pending error
}

func openDirReader(dir string) (*dirReader, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	return &dirReader{f: f}, nil
}

func (r *dirReader) next() (Entry, error) {
	for r.i >= len(r.batch) {
		if r.pending != nil {
			return Entry{}, r.pending
		}
		batch, err := r.f.Readdir(readdirBatchSize)
		if len(batch) == 0 {
			if err == nil {
				err = io.EOF
			}
			return Entry{}, err
		}
		// Surface a partial-read error only after its entries are consumed.
		r.batch, r.i, r.pending = batch, 0, err
	}
	fi := r.batch[r.i]
	r.i++
	return entryFromFileInfo(fi), nil
}

func (r *dirReader) close() error {
	return r.f.Close()
}

// statTimes extracts access and change times from a stat result. The
// portable stat carries them in platform-specific shapes; only the
// modification time is reported uniformly.
func statTimes(fs.FileInfo) (atime, ctime time.Time) {
	return time.Time{}, time.Time{}
}

package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// makeListingFixture creates a directory with two files, a subdirectory,
// and (except on Windows) a symlink, returning its path.
func makeListingFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}
	if runtime.GOOS != "windows" {
		if err := os.Symlink("a.txt", filepath.Join(dir, "link")); err != nil {
			t.Fatalf("Failed to create symlink: %v", err)
		}
	}
	return dir
}

// TestScanListsEntries tests that every entry is produced with a usable kind
func TestScanListsEntries(t *testing.T) {
	dir := makeListingFixture(t)

	entries, err := ReadDirents(dir)
	if err != nil {
		t.Fatalf("ReadDirents failed: %v", err)
	}

	want := map[string]Kind{
		"a.txt": KindFile,
		"b.txt": KindFile,
		"sub":   KindDir,
	}
	if runtime.GOOS != "windows" {
		want["link"] = KindSymlink
	}

	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for _, ent := range entries {
		wantKind, ok := want[ent.Name]
		if !ok {
			t.Errorf("Unexpected entry %q", ent.Name)
			continue
		}
		// Filesystems without in-band typing may report unknown; anything
		// else must be the true kind.
		if ent.Meta.Kind != KindUnknown && ent.Meta.Kind != wantKind {
			t.Errorf("Entry %q: expected kind %v, got %v", ent.Name, wantKind, ent.Meta.Kind)
		}
	}
}

// TestScanFiltersDotEntries tests that "." and ".." are never yielded
func TestScanFiltersDotEntries(t *testing.T) {
	dir := makeListingFixture(t)

	names, err := ReadDirnames(dir)
	if err != nil {
		t.Fatalf("ReadDirnames failed: %v", err)
	}
	for _, name := range names {
		if name == "." || name == ".." {
			t.Errorf("Pseudo-entry %q was yielded", name)
		}
	}
}

// TestScanEmptyDirectory tests scanning a directory with no entries
func TestScanEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	sc, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	defer sc.Close()

	if sc.Scan() {
		t.Errorf("Expected no entries, got %q", sc.Entry().Name)
	}
	if err := sc.Err(); err != nil {
		t.Errorf("Expected nil error after exhaustion, got %v", err)
	}
}

// TestScanNotFound tests that a missing directory fails at open time
func TestScanNotFound(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("Expected error for missing directory, got nil")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}

	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("Expected *ScanError, got %T", err)
	}
	if scanErr.Op != "open" {
		t.Errorf("Expected op %q, got %q", "open", scanErr.Op)
	}
}

// TestScanPermissionDenied tests that a forbidden listing fails at open time
func TestScanPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("chmod-based permission test not applicable on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Failed to chmod directory: %v", err)
	}
	defer os.Chmod(locked, 0o755)

	_, err := Scan(locked)
	if err == nil {
		t.Fatal("Expected error for unreadable directory, got nil")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Errorf("Expected fs.ErrPermission, got %v", err)
	}
}

// TestReadDirnamesMatchesOSReadDir tests name parity with the standard listing
func TestReadDirnamesMatchesOSReadDir(t *testing.T) {
	dir := makeListingFixture(t)

	names, err := ReadDirnames(dir)
	if err != nil {
		t.Fatalf("ReadDirnames failed: %v", err)
	}

	stdEntries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("os.ReadDir failed: %v", err)
	}
	stdNames := make([]string, len(stdEntries))
	for i, e := range stdEntries {
		stdNames[i] = e.Name()
	}

	sort.Strings(names)
	sort.Strings(stdNames)

	if len(names) != len(stdNames) {
		t.Fatalf("Expected %d names, got %d", len(stdNames), len(names))
	}
	for i := range names {
		if names[i] != stdNames[i] {
			t.Errorf("Name mismatch at %d: expected %q, got %q", i, stdNames[i], names[i])
		}
	}
}

// TestScannerReleasesHandle tests the handle release contract on every exit path
func TestScannerReleasesHandle(t *testing.T) {
	dir := makeListingFixture(t)
	baseline := OpenHandles()

	// Exhaustion releases the handle without an explicit Close.
	sc, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if got := OpenHandles(); got != baseline+1 {
		t.Fatalf("Expected %d open handles, got %d", baseline+1, got)
	}
	for sc.Scan() {
	}
	if got := OpenHandles(); got != baseline {
		t.Errorf("Expected %d open handles after exhaustion, got %d", baseline, got)
	}

	// Early Close releases the handle mid-listing.
	sc, err = Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	sc.Scan()
	if err := sc.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if got := OpenHandles(); got != baseline {
		t.Errorf("Expected %d open handles after early Close, got %d", baseline, got)
	}

	// Close is idempotent.
	if err := sc.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if got := OpenHandles(); got != baseline {
		t.Errorf("Expected %d open handles after double Close, got %d", baseline, got)
	}

	// Scan after Close reports nothing.
	if sc.Scan() {
		t.Error("Expected Scan to return false after Close")
	}
}

// TestScannerNotRestartable tests that an exhausted scanner stays exhausted
func TestScannerNotRestartable(t *testing.T) {
	dir := makeListingFixture(t)

	sc, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	defer sc.Close()

	count := 0
	for sc.Scan() {
		count++
	}
	if count == 0 {
		t.Fatal("Expected entries on first pass")
	}
	if sc.Scan() {
		t.Error("Expected exhausted scanner to stay exhausted")
	}
}

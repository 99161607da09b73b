package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/karrick/godirwalk"
)

// createBenchDirectoryStructure creates a test directory structure with the
// specified depth and files per directory
func createBenchDirectoryStructure(b *testing.B, root string, depth, filesPerDir int) {
	if depth <= 0 {
		return
	}

	// Create files in the current directory
	for i := 0; i < filesPerDir; i++ {
		filename := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(filename, []byte("test"), 0644); err != nil {
			b.Fatalf("Failed to create test file: %v", err)
		}
	}

	// Create subdirectories
	for i := 0; i < 3; i++ {
		subdir := filepath.Join(root, "dir"+string(rune('a'+i)))
		if err := os.Mkdir(subdir, 0755); err != nil {
			b.Fatalf("Failed to create test directory: %v", err)
		}
		createBenchDirectoryStructure(b, subdir, depth-1, filesPerDir)
	}
}

func BenchmarkWalk(b *testing.B) {
	tmpDir := b.TempDir()
	createBenchDirectoryStructure(b, tmpDir, 5, 10)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		count := 0
		for rec := range Walk(tmpDir, WalkOptions{}) {
			count += len(rec.Files)
		}
		if count == 0 {
			b.Fatal("No files found")
		}
	}
}

func BenchmarkWalkComparison(b *testing.B) {
	tmpDir := b.TempDir()
	createBenchDirectoryStructure(b, tmpDir, 5, 10)

	b.ResetTimer()

	b.Run("Walk", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			for rec := range Walk(tmpDir, WalkOptions{}) {
				count += len(rec.Dirs) + len(rec.Files)
			}
			if count == 0 {
				b.Fatal("No entries found")
			}
		}
	})

	b.Run("filepath.WalkDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.WalkDir(tmpDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No entries found")
			}
		}
	})

	b.Run("filepath.Walk", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				count++
				return nil
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No entries found")
			}
		}
	})

	b.Run("godirwalk.Walk", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			count := 0
			err := godirwalk.Walk(tmpDir, &godirwalk.Options{
				Unsorted: true,
				Callback: func(path string, de *godirwalk.Dirent) error {
					count++
					return nil
				},
			})
			if err != nil {
				b.Fatalf("Error walking directory: %v", err)
			}
			if count == 0 {
				b.Fatal("No entries found")
			}
		}
	})
}

func BenchmarkReadDirnames(b *testing.B) {
	tmpDir := b.TempDir()
	createBenchDirectoryStructure(b, tmpDir, 1, 26)

	b.ResetTimer()

	b.Run("ReadDirnames", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			names, err := ReadDirnames(tmpDir)
			if err != nil {
				b.Fatalf("ReadDirnames failed: %v", err)
			}
			if len(names) == 0 {
				b.Fatal("No names found")
			}
		}
	})

	b.Run("os.ReadDir", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			entries, err := os.ReadDir(tmpDir)
			if err != nil {
				b.Fatalf("os.ReadDir failed: %v", err)
			}
			if len(entries) == 0 {
				b.Fatal("No entries found")
			}
		}
	})
}

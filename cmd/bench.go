package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	amble "github.com/amblefs/amble/internal/scan"
	"github.com/karrick/godirwalk"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// Bench command options
	benchDepth   int
	benchDirs    int
	benchFiles   int
	benchKeep    bool
	benchBaseDir string
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench [path]",
	Short: "Benchmark the walker against stat-based traversals",
	Long: `Benchmark the walker against filepath.Walk and godirwalk.Walk.

Without a path, a synthetic directory tree named "benchtree" is created in
the working directory (and removed afterwards unless --keep is given). With
a path, that tree is walked instead.

Examples:
  amble bench
  amble bench --depth=5 --dirs=3 --files=100
  amble bench /usr/share`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return runBench(args[0])
		}

		tree := filepath.Join(benchBaseDir, "benchtree")
		if _, err := os.Stat(tree); os.IsNotExist(err) {
			fmt.Printf("Creating tree at %s: depth=%d, dirs=%d, files=%d\n",
				tree, benchDepth, benchDirs, benchFiles)
			if err := createBenchTree(tree, benchDepth); err != nil {
				return err
			}
			if !benchKeep {
				defer os.RemoveAll(tree)
			}
		}
		return runBench(tree)
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchDepth, "depth", 4, "Depth of the synthetic tree")
	benchCmd.Flags().IntVar(&benchDirs, "dirs", 5, "Subdirectories per level")
	benchCmd.Flags().IntVar(&benchFiles, "files", 50, "Files per directory")
	benchCmd.Flags().BoolVar(&benchKeep, "keep", false, "Keep the synthetic tree after the run")
	benchCmd.Flags().StringVar(&benchBaseDir, "base-dir", ".", "Where to create the synthetic tree")
}

// createBenchTree builds a tree with benchDirs subdirectories and benchFiles
// files at each of depth levels, with one large file per directory so file
// sizes are not uniform.
func createBenchTree(path string, depth int) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		return err
	}
	line := "The quick brown fox jumps over the lazy dog.\n"
	for i := 0; i < benchFiles; i++ {
		name := filepath.Join(path, fmt.Sprintf("file%03d.txt", i))
		var content string
		if i == 0 {
			content = strings.Repeat(line, 20000)
		} else {
			content = strings.Repeat(line, i*10)
		}
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			return err
		}
	}
	if depth <= 1 {
		return nil
	}
	for i := 0; i < benchDirs; i++ {
		if err := createBenchTree(filepath.Join(path, fmt.Sprintf("dir%03d", i)), depth-1); err != nil {
			return err
		}
	}
	return nil
}

func runBench(root string) error {
	doWalk := func() (dirs, files int) {
		for rec := range amble.Walk(root, amble.WalkOptions{}) {
			dirs++
			files += len(rec.Files)
		}
		return dirs, files
	}

	doFilepathWalk := func() (dirs, files int) {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				dirs++
			} else {
				files++
			}
			return nil
		})
		return dirs, files
	}

	doGodirwalk := func() (dirs, files int) {
		godirwalk.Walk(root, &godirwalk.Options{
			Unsorted: true,
			Callback: func(path string, de *godirwalk.Dirent) error {
				if de.IsDir() {
					dirs++
				} else {
					files++
				}
				return nil
			},
			ErrorCallback: func(string, error) godirwalk.ErrorAction {
				return godirwalk.SkipNode
			},
		})
		return dirs, files
	}

	// One untimed pass so the benchmark measures traversal, not cold cache I/O.
	doWalk()

	p := message.NewPrinter(language.English)
	p.Printf("Benchmarking walks on %s\n", root)

	start := time.Now()
	dirs, files := doWalk()
	ambleTime := time.Since(start)
	p.Printf("amble.Walk     %8.3fs  (%d dirs, %d files)\n", ambleTime.Seconds(), dirs, files)

	start = time.Now()
	dirs, files = doFilepathWalk()
	stdTime := time.Since(start)
	p.Printf("filepath.Walk  %8.3fs  (%d dirs, %d files)\n", stdTime.Seconds(), dirs, files)

	start = time.Now()
	dirs, files = doGodirwalk()
	gdwTime := time.Since(start)
	p.Printf("godirwalk.Walk %8.3fs  (%d dirs, %d files)\n", gdwTime.Seconds(), dirs, files)

	if ambleTime > 0 {
		p.Printf("amble was %.2fx as fast as filepath.Walk, %.2fx godirwalk\n",
			stdTime.Seconds()/ambleTime.Seconds(), gdwTime.Seconds()/ambleTime.Seconds())
	}
	return nil
}

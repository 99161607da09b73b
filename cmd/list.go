package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	amble "github.com/amblefs/amble/internal/scan"
	"github.com/spf13/cobra"
)

var (
	// List command options
	listNamesOnly bool
	listLong      bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [path]",
	Short: "List a single directory",
	Long: `List the entries of one directory (no recursion), with the entry
type reported by the enumeration itself.

Examples:
  amble list /var/log
  amble list --long /var/log
  amble list --names /var/log`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return runList(dir)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listNamesOnly, "names", false, "Print names only, like a plain listing")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Print kind, size, and modification time per entry")
}

func runList(dir string) error {
	if listNamesOnly {
		names, err := amble.ReadDirnames(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	sc, err := amble.Scan(dir)
	if err != nil {
		return err
	}
	defer sc.Close()

	for sc.Scan() {
		ent := sc.Entry()
		if !listLong {
			fmt.Printf("%-8s %s\n", ent.Meta.Kind, ent.Name)
			continue
		}
		meta := ent.Meta
		if !meta.Full {
			// The native listing only carried the type; fetch the rest.
			fi, err := os.Lstat(filepath.Join(dir, ent.Name))
			if err != nil {
				fmt.Fprintf(os.Stderr, "amble: %v\n", err)
				continue
			}
			meta.Size = fi.Size()
			meta.Mode = fi.Mode()
			meta.ModTime = fi.ModTime()
		}
		fmt.Printf("%-8s %10d  %s  %s\n", ent.Meta.Kind, meta.Size, meta.ModTime.Format(time.RFC3339), ent.Name)
	}
	return sc.Err()
}

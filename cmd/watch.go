package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	amble "github.com/amblefs/amble/internal/scan"
	"github.com/spf13/cobra"
)

var (
	// Watch command options
	watchEvents    []string
	watchRecursive bool
	watchTimeout   time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch for filesystem changes",
	Long: `Watch a directory for changes and print each event with the entry's
type as reported by enumeration.

Examples:
  amble watch /path/to/watch
  amble watch --events=create,delete --recursive /path/to/watch
  amble watch --timeout=30s /path/to/watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watchDir := "."
		if len(args) > 0 {
			watchDir = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var events []amble.WatchEvent
		for _, e := range watchEvents {
			switch strings.ToLower(e) {
			case "create":
				events = append(events, amble.EventCreate)
			case "modify":
				events = append(events, amble.EventModify)
			case "delete":
				events = append(events, amble.EventDelete)
			case "rename":
				events = append(events, amble.EventRename)
			case "chmod":
				events = append(events, amble.EventChmod)
			default:
				return fmt.Errorf("unknown event type: %s", e)
			}
		}

		logger := walkLogger()
		defer logger.Sync()

		opts := amble.WatchOptions{
			Events:    events,
			Recursive: watchRecursive,
			Timeout:   watchTimeout,
			Logger:    logger,
		}

		fmt.Printf("Watching %s for changes...\n", watchDir)
		return amble.Watch(ctx, watchDir, opts, func(ctx context.Context, result amble.WatchResult) error {
			if result.Error != nil {
				fmt.Fprintf(os.Stderr, "amble: %v\n", result.Error)
				return nil
			}
			msg := result.Message
			fmt.Printf("%s %s %s\n", strings.ToUpper(string(msg.Event)), msg.Kind, msg.Path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchEvents, "events", nil, "Events to watch for (create,modify,delete,rename,chmod)")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "Watch subdirectories recursively")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Stop watching after this duration (0 = no timeout)")
}

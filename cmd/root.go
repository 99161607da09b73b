package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	amble "github.com/amblefs/amble/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "amble [options] <path>",
	Short: "A fast directory tree walker",
	Long: `amble walks a directory tree using native directory enumeration,
printing one record per directory visited: the directory's path, its
subdirectories, and its files. Entry types come from the enumeration
itself rather than a per-entry stat call.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		return runWalk(path)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.Flags().Bool("bottom-up", false, "Yield each directory after its subdirectories instead of before")
	rootCmd.Flags().BoolP("follow-symlinks", "L", false, "Descend into symlinks that point at directories")
	rootCmd.Flags().String("format", "text", "Output format (text|json)")
	rootCmd.Flags().Bool("summary", false, "Print totals after the walk")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("silent", false, "Disable all output except errors")

	// Bind flags to viper
	viper.BindPFlag("bottom-up", rootCmd.Flags().Lookup("bottom-up"))
	viper.BindPFlag("follow-symlinks", rootCmd.Flags().Lookup("follow-symlinks"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("summary", rootCmd.Flags().Lookup("summary"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("silent", rootCmd.PersistentFlags().Lookup("silent"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".amble" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".amble")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// walkLogger builds the logger the commands share from the verbose/silent flags.
func walkLogger() *zap.Logger {
	switch {
	case viper.GetBool("verbose"):
		return amble.NewLogger(amble.LogLevelDebug)
	case viper.GetBool("silent"):
		return amble.NewLogger(amble.LogLevelError)
	default:
		return amble.NewLogger(amble.LogLevelInfo)
	}
}

func runWalk(root string) error {
	logger := walkLogger()
	defer logger.Sync()

	opts := amble.WalkOptions{
		FollowLinks: viper.GetBool("follow-symlinks"),
		Logger:      logger,
		OnError: func(path string, err error) {
			fmt.Fprintf(os.Stderr, "amble: %v\n", err)
		},
	}
	if viper.GetBool("bottom-up") {
		opts.Order = amble.BottomUp
	}

	asJSON := viper.GetString("format") == "json"
	silent := viper.GetBool("silent")

	var dirs, files int
	for rec := range amble.Walk(root, opts) {
		dirs++
		files += len(rec.Files)
		if silent {
			continue
		}
		if asJSON {
			out, _ := json.Marshal(map[string]interface{}{
				"path":  rec.Path,
				"dirs":  rec.DirNames(),
				"files": rec.FileNames(),
			})
			fmt.Println(string(out))
		} else {
			fmt.Printf("%s: %d dirs, %d files\n", rec.Path, len(rec.Dirs), len(rec.Files))
		}
	}

	if viper.GetBool("summary") {
		p := message.NewPrinter(language.English)
		p.Printf("visited %d directories, %d files\n", dirs, files)
	}
	return nil
}

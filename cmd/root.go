package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/praxy/internal/config"
	"github.com/dotcommander/praxy/internal/logging"
)

var (
	cfgFile      string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// exitFunc is swapped out in tests
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "praxy",
	Short: "Praxy - scoring for cold-call and root-cause practice sessions",
	Long: `Praxy scores practice sessions against fixed rubrics.

Cold-call transcripts are graded on opening, value, objection handling,
professionalism and outcome. Root-cause analyses are compared with the
reference answer of their case. When an AI provider is configured it grades
the session; otherwise a deterministic scorer is used.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default .praxyrc.{json,yaml,yml})")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file for reports (requires --format)")
}

// initConfig binds the persistent flags and loads the configuration.
// Flags are bound on every run so a viper.Reset between runs is harmless.
func initConfig(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	for _, name := range []string{"quiet", "verbose", "format", "output"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	loaded, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	level, err := logging.ParseLevel(loaded.Log.Level)
	if err != nil {
		return err
	}
	if loaded.Verbose {
		level = min(level, slog.LevelDebug)
	}
	logging.Init(level, loaded.Log.Format, cmd.ErrOrStderr())

	cfg = loaded
	return nil
}

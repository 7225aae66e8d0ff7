// Package cli implements the autotunebench command-line tool: a cobra
// root command plus one file per subcommand.
//
// Grounded on kevin-buckham-MMCd-Go's internal/cli (root.go's
// persistentFlags + cobra.OnInitialize(initLogging) shape).
package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	cfgSeed    int64
	cfgVerbose bool
	logger     *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "autotunebench",
	Short: "Drive the fixed-wing rate-PID autotuner through scripted bench scenarios",
	Long: `autotunebench runs pkg/tuner against scripted stick-demand scenarios
(quiet hover, clean steps, overshoot, noisy mixed traffic) and reports how
the gain law and envelope slewer respond, without requiring a flight
controller or real PID loop.`,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&cfgSeed, "seed", 1, "random seed for noisy scenarios (0 disables jitter)")
	rootCmd.PersistentFlags().BoolVarP(&cfgVerbose, "verbose", "v", false, "enable debug logging")
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	level := log.InfoLevel
	if cfgVerbose {
		level = log.DebugLevel
	}
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "autotunebench", Level: level})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

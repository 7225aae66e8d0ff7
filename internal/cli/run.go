package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flightcore/fwautotune/pkg/bench"
	"github.com/flightcore/fwautotune/pkg/benchconfig"
	"github.com/flightcore/fwautotune/pkg/report"
)

var (
	runScenario   string
	runConfigPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one or all bench scenarios and print a summary table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bench.DefaultConfig()
		if runConfigPath != "" {
			f, err := benchconfig.Load(runConfigPath)
			if err != nil {
				return err
			}
			cfg, err = f.ToBenchConfig()
			if err != nil {
				return err
			}
		}

		g := bench.NewGenerator(cfgSeed)
		all := g.GenerateAll()

		var scenarios []bench.Scenario
		if runScenario == "" || runScenario == "all" {
			for _, s := range all {
				scenarios = append(scenarios, s)
			}
		} else {
			s, ok := all[runScenario]
			if !ok {
				return fmt.Errorf("unknown scenario %q, see 'autotunebench list'", runScenario)
			}
			scenarios = append(scenarios, s)
		}

		var summaries []report.Summary
		for _, s := range scenarios {
			logger.Debug("running scenario", "name", s.Name, "samples", len(s.Samples))
			summaries = append(summaries, report.Summarize(bench.Run(s, cfg)))
		}
		report.WriteTable(os.Stdout, summaries)

		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runScenario, "scenario", "all", "scenario to run, or \"all\"")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "bench config YAML file (see benchconfig.File); default gains used if omitted")
	rootCmd.AddCommand(runCmd)
}

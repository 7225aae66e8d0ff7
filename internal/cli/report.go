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
	reportConfigPath string
	reportOut        string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run every bench scenario and write an HTML chart report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bench.DefaultConfig()
		if reportConfigPath != "" {
			f, err := benchconfig.Load(reportConfigPath)
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

		var results []bench.Result
		for _, s := range all {
			logger.Debug("running scenario", "name", s.Name, "samples", len(s.Samples))
			results = append(results, bench.Run(s, cfg))
		}

		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("create report file: %w", err)
		}
		defer f.Close()

		if err := report.WriteHTMLReport(f, results); err != nil {
			return err
		}
		logger.Info("wrote HTML report", "path", reportOut)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportConfigPath, "config", "", "bench config YAML file; default gains used if omitted")
	reportCmd.Flags().StringVar(&reportOut, "out", "autotune-report.html", "path to write the HTML report")
	rootCmd.AddCommand(reportCmd)
}

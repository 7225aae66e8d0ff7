package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flightcore/fwautotune/pkg/bench"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available bench scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		g := bench.NewGenerator(cfgSeed)
		all := g.GenerateAll()

		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			s := all[name]
			fmt.Printf("%-16s %s\n", name, s.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// Command autotunebench drives pkg/tuner through the scripted scenarios in
// pkg/bench and reports the result, standing in for the teacher's
// cmd/simulator entrypoint.
//
// Grounded on kevin-buckham-MMCd-Go's internal/cli package: a cobra root
// command with persistent flags plus one file per subcommand
// (list/run/report here against log/test/review/sensors there).
package main

import (
	"fmt"
	"os"

	"github.com/flightcore/fwautotune/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command servicecore-demo boots a demo ServiceRegistry, registers a
// handful of services at different priorities, and exposes status and
// shutdown subcommands to inspect and drive the runtime — grounded on
// akumar23-fleet's cmd/fleet entry point and internal/cli table output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "servicecore-demo",
		Short: "Inspect and drive a demo service runtime",
	}
	root.PersistentFlags().String("metrics-addr", "", "if set, serve Prometheus metrics at http://<addr>/metrics")
	root.AddCommand(newStatusCmd(), newShutdownCmd())
	return root
}

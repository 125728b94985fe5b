package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newShutdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Run the coordinated shutdown protocol and report the exception count",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDemo()
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("metrics-addr")
			startMetricsServer(addr, d)

			start := time.Now()
			exceptions := d.coordinator.SystemShutdown(context.Background())
			d.collector.RecordShutdown(exceptions, time.Since(start).Seconds())

			if exceptions == 0 {
				fmt.Println(color.GreenString("shutdown completed cleanly"))
			} else {
				fmt.Println(color.RedString("shutdown completed with %d exception(s)", exceptions))
			}
			// spec.md §6's process exit contract: exit status equals the
			// accumulated shutdown-hook exception count.
			os.Exit(exceptions)
			return nil
		},
	}
}

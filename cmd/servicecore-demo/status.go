package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print pool occupancy for every registered service",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDemo()
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("metrics-addr")
			startMetricsServer(addr, d)
			printStatus(d)
			return nil
		},
	}
}

func printStatus(d *demo) {
	header := color.New(color.FgWhite, color.Bold).Sprint
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{header("SERVICE"), header("PRIORITY"), header("RUNNING"), header("FREE"), header("MAX")})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, svc := range d.registry.Services() {
		stats := svc.PrimaryPool().Stats()
		d.collector.ObservePool(stats)
		table.Append([]string{
			svc.Name(),
			fmt.Sprintf("%d", svc.Priority()),
			fmt.Sprintf("%d", stats.Running),
			fmt.Sprintf("%d", stats.Free),
			fmt.Sprintf("%d", stats.Max),
		})
	}

	static := d.registry.StaticPoolStats()
	d.collector.ObservePool(static)
	table.Append([]string{
		color.New(color.FgCyan).Sprint("(registry static)"),
		"-",
		fmt.Sprintf("%d", static.Running),
		fmt.Sprintf("%d", static.Free),
		fmt.Sprintf("%d", static.Max),
	})

	table.Render()
}

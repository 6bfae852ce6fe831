package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roadscan/roadscan-cli/internal/model"
	"github.com/roadscan/roadscan-cli/internal/report"
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan <address>",
	Short: "Scan one street address for road defects",
	Long:  "Geocodes the address, fetches the street view image, runs defect detection, and writes a PDF report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		p, cleanup, err := initPipeline(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := p.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		cmd.Print(formatScanResult(result))
		return nil
	},
}

// formatScanResult renders the one-shot scan summary printed to stdout.
func formatScanResult(result *model.ScanResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Address: %s\n", result.Address)
	if result.Coordinates != nil {
		fmt.Fprintf(&b, "Location: %s\n", result.Coordinates.MapsURL())
	}

	b.WriteString("Detected defects:\n")
	if len(result.Detections) == 0 {
		fmt.Fprintf(&b, "  %s\n", report.NoDefectsLine)
	}
	for _, d := range result.Detections {
		fmt.Fprintf(&b, "  - %s\n", d.Line())
	}

	fmt.Fprintf(&b, "Report: %s\n", result.ReportPath)
	return b.String()
}

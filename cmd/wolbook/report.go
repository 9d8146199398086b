package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/report"
	"github.com/user/wolbook/internal/util"
)

var (
	reportLast   string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a wake report",
	Long: `Generate a markdown report of registered hosts and wake history.

Examples:
  wolbook report --last 24h
  wolbook report --last 7d -o -
  wolbook report --last 1h --output ./report.md`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportLast, "last", "7d",
		"Time range (e.g., 1h, 24h, 7d)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "",
		"Output file path, - for stdout (default: report dir)")
}

func runReport(cmd *cobra.Command, args []string) error {
	duration, err := util.ParseDuration(reportLast)
	if err != nil {
		return fmt.Errorf("invalid time range: %w", err)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.history == nil {
		return errors.New("wake history is not available")
	}

	until := time.Now()
	gen := report.NewGenerator(s.reg, s.history)
	data, err := gen.Generate(model.ReportOptions{
		Since:      until.Add(-duration),
		Until:      until,
		Format:     "markdown",
		OutputPath: reportOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	out := cmd.OutOrStdout()
	switch reportOutput {
	case "":
		path, err := report.WriteMarkdownFile(data, cfg.ReportOutputDir)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(out, "Report saved to: %s\n", path)
	case "-":
		fmt.Fprintln(out, report.FormatMarkdown(data))
		return nil
	default:
		if err := os.WriteFile(reportOutput, []byte(report.FormatMarkdown(data)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(out, "Report saved to: %s\n", reportOutput)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Report Summary:")
	fmt.Fprintf(out, "  Hosts: %d (%d unwakeable)\n", len(data.Hosts), data.UnwakeableCount)
	fmt.Fprintf(out, "  Wake attempts: %d (%d failed)\n", data.WakeCount, data.FailedCount)
	fmt.Fprintf(out, "  Address changes: %d\n", len(data.AddressChanges))

	return nil
}

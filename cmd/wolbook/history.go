package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
)

var (
	historyLast string
	historyHost string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show wake history",
	Long: `Show recorded wake attempts.

Examples:
  wolbook history
  wolbook history --last 7d --host desk`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyLast, "last", "24h",
		"Time range (e.g., 1h, 24h, 7d)")
	historyCmd.Flags().StringVar(&historyHost, "host", "",
		"Only show this host")
}

func runHistory(cmd *cobra.Command, args []string) error {
	duration, err := util.ParseDuration(historyLast)
	if err != nil {
		return fmt.Errorf("invalid time range: %w", err)
	}

	db, err := storage.Open(cfg.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	events, err := storage.NewWakeStorage(db).GetHistory(time.Now().Add(-duration), historyHost)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintf(out, "No wake attempts in the last %s\n", historyLast)
		return nil
	}

	for _, ev := range events {
		result := okStyle.Render("sent")
		if !ev.Success {
			result = badStyle.Render("failed: " + ev.Error)
		}
		fmt.Fprintf(out, "%s  %-16s %s:%d  %s\n",
			labelStyle.Render(ev.Timestamp.Local().Format("2006-01-02 15:04:05")),
			ev.Name, ev.Address, ev.Port, result)
	}
	return nil
}

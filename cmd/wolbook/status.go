package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/daemon"
	"github.com/user/wolbook/internal/registry"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show host list, history and server status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	field := func(label, value string) {
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
	}

	fmt.Fprintln(out, titleStyle.Render("wolbook Status"))

	hosts := s.reg.List()
	dynamic, unwakeable := 0, 0
	for _, h := range hosts {
		if h.IsDynamic() {
			dynamic++
		}
		if !registry.Wakeable(h) {
			unwakeable++
		}
	}
	field("Host list:", s.reg.StorePath())
	field("Hosts:", fmt.Sprintf("%d (%d DDNS)", len(hosts), dynamic))
	if unwakeable > 0 {
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Unwakeable:"), badStyle.Render(fmt.Sprintf("%d", unwakeable)))
	}
	printFailures(out, s.failures)

	if s.history != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("Wake History"))
		if count, err := s.history.Wakes.Count(); err == nil {
			field("Total wakes:", fmt.Sprintf("%d", count))
		}
		if count, err := s.history.Wakes.CountFailedSince(time.Now().Add(-24 * time.Hour)); err == nil {
			field("Failed (24h):", fmt.Sprintf("%d", count))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Server"))
	running, pid := daemon.CheckRunning(cfg.DataDir)
	if !running {
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Server:"), badStyle.Render("Stopped"))
		return nil
	}
	fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("Server:"), okStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))

	if sf, err := daemon.ReadStatusFile(cfg.DataDir); err == nil {
		field("Started:", sf.StartTime)
		field("Uptime:", sf.Uptime)
		if sf.LastSync != "" {
			field("Last sync:", sf.LastSync)
		}
		for _, job := range sf.Jobs {
			state := "idle"
			if job.Running {
				state = "running"
			}
			fmt.Fprintf(out, "  %s %s (last: %s, errors: %d)\n",
				labelStyle.Render(job.Name+":"),
				valueStyle.Render(state),
				job.LastRun.Format("15:04:05"),
				job.ErrorCount)
		}
	}

	return nil
}

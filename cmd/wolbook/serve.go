package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/daemon"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and keep DDNS addresses fresh",
	Long: `Run the HTTP API and dashboard in the foreground. DDNS addresses are
re-resolved every sync_interval, on SIGHUP, and on POST /api/sync.

Examples:
  wolbook serve
  wolbook serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running serve process",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Web server port (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if running, pid := daemon.CheckRunning(cfg.DataDir); running {
		fmt.Fprintf(cmd.OutOrStdout(), "Server is already running (PID %d)\n", pid)
		return nil
	}

	util.InitLogger(cfg.LogLevel, cfg.LogFile, true)

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	printFailures(cmd.ErrOrStderr(), s.failures)

	port := servePort
	if port == 0 {
		port = cfg.WebPort
	}

	d := daemon.New(cfg, s.reg)
	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	srv := web.NewServer(s.reg, s.history, cfg, port)
	srv.AttachDaemon(d)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://localhost:%d (Ctrl+C to stop)\n", port)

	select {
	case <-d.Done():
	case err = <-errCh:
		d.Stop()
	}

	srv.Stop()
	d.Wait()
	return err
}

func runStop(cmd *cobra.Command, args []string) error {
	running, pid := daemon.CheckRunning(cfg.DataDir)
	if !running {
		fmt.Fprintln(cmd.OutOrStdout(), "Server is not running")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopping server (PID %d)...\n", pid)

	if err := daemon.SendStop(cfg.DataDir); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	for i := 0; i < 30; i++ {
		time.Sleep(time.Second)
		if running, _ := daemon.CheckRunning(cfg.DataDir); !running {
			fmt.Fprintln(cmd.OutOrStdout(), "Server stopped")
			return nil
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Warning: server may not have stopped completely")
	return nil
}

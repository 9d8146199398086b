package main

import (
	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/tui"
	"github.com/user/wolbook/internal/util"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal interface",
	Long: `Launch an interactive host list.

Keys:
  n        add a host
  e        edit the selected host
  d, del   delete the selected host
  enter    wake the selected host
  s        re-resolve DDNS addresses
  q        quit`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	// Log lines on stderr would tear the screen.
	util.InitLogger(cfg.LogLevel, cfg.LogFile, false)

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	return tui.NewApp(s.reg, s.failures).Run()
}

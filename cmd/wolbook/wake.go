package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var wakeCmd = &cobra.Command{
	Use:   "wake REF",
	Short: "Send a magic packet to a host (REF is its number or name)",
	Long: `Send one Wake-on-LAN magic packet to a registered host.

Examples:
  wolbook wake 1
  wolbook wake desk --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runWake,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Re-resolve every DDNS address",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	wakeCmd.Flags().BoolVarP(&assumeOK, "yes", "y", false, "do not ask for confirmation")
}

func runWake(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	printFailures(cmd.ErrOrStderr(), s.failures)

	index, err := resolveRef(s.reg, args[0])
	if err != nil {
		return err
	}

	rec, err := s.reg.PrepareWake(index)
	if err != nil {
		return wakeError(rec, err)
	}

	if !assumeOK && !confirm(cmd, fmt.Sprintf("Wake %s (%s via %s:%d)?", rec.Name, rec.HardwareAddress, rec.Address, rec.Port)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	rec, err = s.reg.Wake(cmd.Context(), index)
	if err != nil {
		return wakeError(rec, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Wake up signal sent to %s", rec.Name)))
	return nil
}

// runSync relies on the synchronization openSession already performed.
func runSync(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dynamic := 0
	for _, h := range s.reg.List() {
		if h.IsDynamic() {
			dynamic++
		}
	}

	if len(s.failures) > 0 {
		printFailures(cmd.ErrOrStderr(), s.failures)
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d DDNS addresses resolved\n", dynamic-len(s.failures), dynamic)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "All %d DDNS addresses resolved\n", dynamic)
	return nil
}

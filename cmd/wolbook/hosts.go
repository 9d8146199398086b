package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List registered hosts",
	RunE:    runList,
}

var (
	hostName string
	hostIP   string
	hostDDNS string
	hostMAC  string
	hostPort int
	assumeOK bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a host",
	Long: `Register a host by fixed IPv4 address or by dynamic DNS name.

Examples:
  wolbook add --name desk --ip 192.168.1.10 --mac AA:BB:CC:DD:EE:FF
  wolbook add --name home --ddns home.example.com --mac aa-bb-cc-dd-ee-ff --port 7`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit REF",
	Short: "Change a host (REF is its number or name)",
	Long: `Change the fields given as flags. Setting --ip clears the DDNS name and
setting --ddns replaces the address with the name's resolution.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:     "delete REF",
	Aliases: []string{"rm"},
	Short:   "Remove a host (REF is its number or name)",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringVar(&hostName, "name", "", "host name")
		c.Flags().StringVar(&hostIP, "ip", "", "IPv4 address")
		c.Flags().StringVar(&hostDDNS, "ddns", "", "dynamic DNS name")
		c.Flags().StringVar(&hostMAC, "mac", "", "MAC address (AA:BB:CC:DD:EE:FF or AA-BB-CC-DD-EE-FF)")
		c.Flags().IntVar(&hostPort, "port", 0, "UDP port (default from config, usually 9)")
	}
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("mac")
	addCmd.MarkFlagsOneRequired("ip", "ddns")

	deleteCmd.Flags().BoolVarP(&assumeOK, "yes", "y", false, "do not ask for confirmation")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	printFailures(cmd.ErrOrStderr(), s.failures)

	hosts := s.reg.List()
	if len(hosts) == 0 {
		fmt.Fprintln(out, "No hosts registered. Add one with: wolbook add --name NAME --ip IP --mac MAC")
		return nil
	}

	fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("%-3s %-16s %-15s %-24s %-17s %5s", "#", "NAME", "IP", "DDNS", "MAC", "PORT")))
	for i, h := range hosts {
		line := fmt.Sprintf("%-3d %-16s %-15s %-24s %-17s %5d",
			i+1, h.Name, dash(h.Address), dash(h.DynamicName), h.HardwareAddress, h.Port)
		if registry.Wakeable(h) {
			fmt.Fprintln(out, line)
		} else {
			fmt.Fprintln(out, line+" "+badStyle.Render("unwakeable"))
		}
	}
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	printFailures(cmd.ErrOrStderr(), s.failures)

	rec := model.HostRecord{
		Name:            hostName,
		Address:         hostIP,
		DynamicName:     hostDDNS,
		HardwareAddress: hostMAC,
		Port:            hostPort,
	}
	if rec.Port == 0 {
		rec.Port = cfg.DefaultPort
	}

	added, index, err := s.reg.Add(cmd.Context(), rec)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s (%s:%d)\n", index+1, added.Name, added.Address, added.Port)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	rec, err := s.reg.Get(index)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		rec.Name = hostName
	}
	if flags.Changed("mac") {
		rec.HardwareAddress = hostMAC
	}
	if flags.Changed("port") {
		rec.Port = hostPort
	}
	if flags.Changed("ip") {
		rec.Address = hostIP
		rec = registry.ReconcileExclusiveFields(rec, model.FieldAddress)
	}
	if flags.Changed("ddns") {
		rec.DynamicName = hostDDNS
		rec = registry.ReconcileExclusiveFields(rec, model.FieldDynamicName)
	}

	updated, err := s.reg.Edit(cmd.Context(), index, rec)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s (%s:%d)\n", index+1, updated.Name, updated.Address, updated.Port)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	index, err := resolveRef(s.reg, args[0])
	if err != nil {
		return err
	}
	rec, err := s.reg.Get(index)
	if err != nil {
		return err
	}

	if !assumeOK && !confirm(cmd, fmt.Sprintf("Delete #%d %s?", index+1, rec.Name)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	if _, err := s.reg.Delete(index); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", rec.Name)
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package report

import (
	"fmt"
	"strings"
)

// GenerateWakeDiagram creates a Mermaid flowchart of where each host's magic
// packet is sent. Dynamic hosts route through their DDNS name.
func GenerateWakeDiagram(hosts []HostSummary) string {
	if len(hosts) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("flowchart LR\n")
	sb.WriteString("    Source[wolbook]:::source\n\n")

	for _, h := range hosts {
		hostID := fmt.Sprintf("H%d", h.Number)
		target := "unresolved"
		if h.Record.Address != "" {
			target = fmt.Sprintf("%s:%d", h.Record.Address, h.Record.Port)
		}
		label := fmt.Sprintf("%s\\n%s\\n%s", escapeLabel(h.Record.Name), target, h.Record.HardwareAddress)

		class := ""
		if !h.Wakeable {
			class = ":::unwakeable"
		}
		fmt.Fprintf(&sb, "    %s[%s]%s\n", hostID, label, class)

		if h.Record.DynamicName != "" {
			dnsID := nodeID(h.Record.DynamicName)
			fmt.Fprintf(&sb, "    %s([%s]):::ddns\n", dnsID, h.Record.DynamicName)
			fmt.Fprintf(&sb, "    Source --> %s --> %s\n", dnsID, hostID)
		} else {
			fmt.Fprintf(&sb, "    Source --> %s\n", hostID)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef source fill:#90EE90\n")
	sb.WriteString("    classDef ddns fill:#87CEEB\n")
	sb.WriteString("    classDef unwakeable fill:#FFB6C1,stroke:#FF0000\n")
	sb.WriteString("```\n")

	return sb.String()
}

func nodeID(name string) string {
	return "D_" + strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func escapeLabel(s string) string {
	return strings.NewReplacer("[", "(", "]", ")", "\"", "'").Replace(s)
}

// Package report generates wake history reports.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
)

// Generator creates wake history reports.
type Generator struct {
	registry *registry.Registry
	history  *storage.History
}

// NewGenerator creates a new report generator.
func NewGenerator(reg *registry.Registry, history *storage.History) *Generator {
	return &Generator{
		registry: reg,
		history:  history,
	}
}

// ReportData holds all data for a report.
type ReportData struct {
	GeneratedAt time.Time
	Since       time.Time
	Until       time.Time

	// Hosts section
	Hosts           []HostSummary
	UnwakeableCount int

	// Wake section
	Wakes       []model.WakeEvent
	WakeCount   int
	FailedCount int

	// Dynamic address section
	Resolves       []model.ResolveEvent
	AddressChanges []AddressChange
}

// HostSummary is one registry entry with its most recent wake.
type HostSummary struct {
	Number   int
	Record   model.HostRecord
	Wakeable bool
	LastWake *model.WakeEvent
}

// AddressChange is a dynamic name moving to a new address.
type AddressChange struct {
	DynamicName string
	OldIP       string
	NewIP       string
	Timestamp   time.Time
}

// Generate creates a report for the specified time range.
func (g *Generator) Generate(opts model.ReportOptions) (*ReportData, error) {
	data := &ReportData{
		GeneratedAt: time.Now(),
		Since:       opts.Since,
		Until:       opts.Until,
	}

	for i, rec := range g.registry.List() {
		h := HostSummary{
			Number:   i + 1,
			Record:   rec,
			Wakeable: registry.Wakeable(rec),
		}
		if !h.Wakeable {
			data.UnwakeableCount++
		}
		latest, err := g.history.Wakes.GetLatest(rec.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to get last wake for %s: %w", rec.Name, err)
		}
		h.LastWake = latest
		data.Hosts = append(data.Hosts, h)
	}

	wakes, err := g.history.Wakes.GetHistory(opts.Since, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get wake history: %w", err)
	}
	data.Wakes = inRange(wakes, opts.Until)
	data.WakeCount = len(data.Wakes)
	for _, w := range data.Wakes {
		if !w.Success {
			data.FailedCount++
		}
	}

	resolves, err := g.history.Resolves.GetHistory(opts.Since)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolve history: %w", err)
	}
	data.Resolves = resolves
	data.AddressChanges = detectAddressChanges(resolves)

	return data, nil
}

func inRange(wakes []model.WakeEvent, until time.Time) []model.WakeEvent {
	if until.IsZero() {
		return wakes
	}
	out := wakes[:0]
	for _, w := range wakes {
		if !w.Timestamp.After(until) {
			out = append(out, w)
		}
	}
	return out
}

// detectAddressChanges expects events newest first, as storage returns them.
func detectAddressChanges(events []model.ResolveEvent) []AddressChange {
	byName := make(map[string][]model.ResolveEvent)
	for _, ev := range events {
		if ev.Success {
			byName[ev.DynamicName] = append(byName[ev.DynamicName], ev)
		}
	}

	var changes []AddressChange
	for name, evs := range byName {
		for i := 0; i < len(evs)-1; i++ {
			if evs[i].Address != evs[i+1].Address {
				changes = append(changes, AddressChange{
					DynamicName: name,
					OldIP:       evs[i+1].Address,
					NewIP:       evs[i].Address,
					Timestamp:   evs[i].Timestamp,
				})
			}
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Timestamp.After(changes[j].Timestamp)
	})
	return changes
}

// FormatMarkdown renders a report as markdown.
func FormatMarkdown(data *ReportData) string {
	var sb strings.Builder

	sb.WriteString("# Wake-on-LAN Report\n\n")
	fmt.Fprintf(&sb, "Generated %s, covering %s to %s.\n\n",
		data.GeneratedAt.Format("2006-01-02 15:04"),
		data.Since.Format("2006-01-02 15:04"),
		data.Until.Format("2006-01-02 15:04"))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Hosts | %d |\n", len(data.Hosts))
	fmt.Fprintf(&sb, "| Unwakeable hosts | %d |\n", data.UnwakeableCount)
	fmt.Fprintf(&sb, "| Wake attempts | %d |\n", data.WakeCount)
	fmt.Fprintf(&sb, "| Failed wakes | %d |\n", data.FailedCount)
	fmt.Fprintf(&sb, "| Address changes | %d |\n\n", len(data.AddressChanges))

	sb.WriteString("## Hosts\n\n")
	if len(data.Hosts) == 0 {
		sb.WriteString("_No hosts registered._\n\n")
	} else {
		sb.WriteString("| # | Name | IP | DDNS | MAC | Port | Status | Last wake |\n")
		sb.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, h := range data.Hosts {
			status := "ready"
			if !h.Wakeable {
				status = "unwakeable"
			}
			last := "never"
			if h.LastWake != nil {
				last = h.LastWake.Timestamp.Local().Format("2006-01-02 15:04")
				if !h.LastWake.Success {
					last += " (failed)"
				}
			}
			fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %d | %s | %s |\n",
				h.Number, h.Record.Name, orDash(h.Record.Address), orDash(h.Record.DynamicName),
				h.Record.HardwareAddress, h.Record.Port, status, last)
		}
		sb.WriteString("\n")
		sb.WriteString(GenerateWakeDiagram(data.Hosts))
		sb.WriteString("\n")
	}

	sb.WriteString("## Wake History\n\n")
	if len(data.Wakes) == 0 {
		sb.WriteString("_No wake attempts in this period._\n\n")
	} else {
		sb.WriteString("| Time | Host | Target | Result |\n|---|---|---|---|\n")
		for _, w := range data.Wakes {
			result := "sent"
			if !w.Success {
				result = "failed: " + w.Error
			}
			fmt.Fprintf(&sb, "| %s | %s | %s:%d | %s |\n",
				w.Timestamp.Local().Format("2006-01-02 15:04:05"), w.Name, w.Address, w.Port, result)
		}
		sb.WriteString("\n")
	}

	if len(data.AddressChanges) > 0 {
		sb.WriteString("## Dynamic Address Changes\n\n")
		sb.WriteString("| Time | DDNS | Old | New |\n|---|---|---|---|\n")
		for _, c := range data.AddressChanges {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				c.Timestamp.Local().Format("2006-01-02 15:04:05"), c.DynamicName, c.OldIP, c.NewIP)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteMarkdownFile writes the report into dir under a timestamped name and
// returns its path.
func WriteMarkdownFile(data *ReportData, dir string) (string, error) {
	if err := util.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	name := fmt.Sprintf("wolbook_report_%s.md", data.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(FormatMarkdown(data)), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

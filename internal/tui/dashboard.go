package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
)

// Dashboard is the host list view.
type Dashboard struct {
	table  table.Model
	width  int
	height int
}

// NewDashboard creates the host table.
func NewDashboard() *Dashboard {
	t := table.New(
		table.WithColumns(hostColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return &Dashboard{table: t}
}

func hostColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 16},
		{Title: "IP", Width: 15},
		{Title: "DDNS", Width: 24},
		{Title: "MAC", Width: 17},
		{Title: "Port", Width: 5},
		{Title: "", Width: 10},
	}
}

// SetHosts replaces the table rows, keeping the cursor in range.
func (d *Dashboard) SetHosts(hosts []model.HostRecord) {
	rows := make([]table.Row, len(hosts))
	for i, h := range hosts {
		state := ""
		if !registry.Wakeable(h) {
			state = "unwakeable"
		}
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			h.Name,
			h.Address,
			h.DynamicName,
			h.HardwareAddress,
			strconv.Itoa(h.Port),
			state,
		}
	}
	d.table.SetRows(rows)

	if c := d.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		d.table.SetCursor(len(rows) - 1)
	}
}

// Selected returns the selected index, or -1 on an empty table.
func (d *Dashboard) Selected() int {
	if len(d.table.Rows()) == 0 {
		return -1
	}
	return d.table.Cursor()
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
	if h := height - 8; h > 3 {
		d.table.SetHeight(h)
	}
}

// View renders the dashboard.
func (d *Dashboard) View(status string) string {
	var sb strings.Builder

	sb.WriteString(HeaderStyle.Render("wolbook"))
	sb.WriteString("\n\n")

	if len(d.table.Rows()) == 0 {
		sb.WriteString(DimStyle.Render("No hosts registered. Press n to add one."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(d.table.View())
		sb.WriteString("\n")
	}

	if status != "" {
		sb.WriteString("\n" + status + "\n")
	}

	sb.WriteString(HelpStyle.Render(fmt.Sprintf("%s • %s • %s • %s • %s • %s",
		"n new", "e edit", "d delete", "enter wake", "s sync", "q quit")))

	return sb.String()
}

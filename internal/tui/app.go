// Package tui provides the interactive terminal interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/validate"
	"github.com/user/wolbook/internal/wol"
)

const opTimeout = 30 * time.Second

// App is the main TUI application.
type App struct {
	registry *registry.Registry
	failures []registry.ResolutionError
}

// NewApp creates a new TUI application. failures are the unresolved dynamic
// names from the sync performed at load; they are shown on the first screen.
func NewApp(reg *registry.Registry, failures []registry.ResolutionError) *App {
	return &App{
		registry: reg,
		failures: failures,
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(newModel(a.registry, a.failures), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

// confirmation is a pending yes/no question.
type confirmation struct {
	prompt string
	action tea.Cmd
}

// appModel is the main bubbletea model.
type appModel struct {
	registry  *registry.Registry
	dashboard *Dashboard
	form      *hostForm
	confirm   *confirmation
	spinner   spinner.Model
	mode      mode
	busy      string
	status    string
	width     int
	height    int
}

func newModel(reg *registry.Registry, failures []registry.ResolutionError) appModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(Primary)

	m := appModel{
		registry:  reg,
		dashboard: NewDashboard(),
		spinner:   s,
	}
	m.dashboard.SetHosts(reg.List())
	if len(failures) > 0 {
		m.status = failureStatus(failures)
	}
	return m
}

// Init initializes the model.
func (m appModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.dashboard.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncDoneMsg:
		m.busy = ""
		m.refresh()
		switch {
		case msg.err != nil:
			m.status = ErrorStyle.Render("Sync failed: " + msg.err.Error())
		case len(msg.failures) > 0:
			m.status = failureStatus(msg.failures)
		default:
			m.status = SuccessStyle.Render("Dynamic addresses synchronized")
		}
		return m, nil

	case wakeDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.status = ErrorStyle.Render(wakeErrorText(msg.rec, msg.err))
		} else {
			m.status = SuccessStyle.Render(fmt.Sprintf("Wake up signal sent to %s", msg.rec.Name))
		}
		return m, nil

	case savedMsg:
		m.busy = ""
		if msg.err != nil {
			m.status = ErrorStyle.Render(msg.err.Error())
			var verr *validate.ValidationError
			if m.form != nil && errors.As(msg.err, &verr) {
				return m, m.form.focusField(verr.Field)
			}
			return m, nil
		}
		m.form = nil
		m.mode = modeList
		m.refresh()
		m.status = SuccessStyle.Render(fmt.Sprintf("%s %s", msg.verb, msg.rec.Name))
		return m, nil

	case deletedMsg:
		m.busy = ""
		m.refresh()
		if msg.err != nil {
			m.status = ErrorStyle.Render(msg.err.Error())
		} else {
			m.status = SuccessStyle.Render("Deleted " + msg.rec.Name)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy != "" {
			return m, nil
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeForm && m.form != nil {
		return m, m.form.update(msg)
	}
	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected := m.dashboard.Selected()

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "n":
		m.form = newHostForm(-1, model.HostRecord{Port: wol.DefaultPort})
		m.mode = modeForm
		m.status = ""
		return m, nil

	case "e":
		if selected < 0 {
			return m, nil
		}
		rec, err := m.registry.Get(selected)
		if err != nil {
			m.status = ErrorStyle.Render(err.Error())
			return m, nil
		}
		m.form = newHostForm(selected, rec)
		m.mode = modeForm
		m.status = ""
		return m, nil

	case "d", "delete":
		if selected < 0 {
			return m, nil
		}
		rec, _ := m.registry.Get(selected)
		m.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete %s?", rec.Name),
			action: deleteCmd(m.registry, selected),
		}
		m.mode = modeConfirm
		return m, nil

	case "enter":
		if selected < 0 {
			return m, nil
		}
		// Report format problems before asking.
		rec, err := m.registry.PrepareWake(selected)
		if err != nil {
			m.status = ErrorStyle.Render(wakeErrorText(rec, err))
			return m, nil
		}
		m.confirm = &confirmation{
			prompt: fmt.Sprintf("Wake %s (%s)?", rec.Name, rec.HardwareAddress),
			action: wakeCmd(m.registry, selected),
		}
		m.mode = modeConfirm
		return m, nil

	case "s":
		m.busy = "Synchronizing dynamic addresses..."
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, syncCmd(m.registry))
	}

	var cmd tea.Cmd
	m.dashboard.table, cmd = m.dashboard.table.Update(msg)
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.mode = modeList
		m.status = ""
		return m, nil
	case "tab", "down":
		return m, m.form.setFocus(m.form.focus + 1)
	case "shift+tab", "up":
		return m, m.form.setFocus(m.form.focus - 1)
	case "enter":
		if m.form.focus < len(m.form.inputs)-1 {
			return m, m.form.setFocus(m.form.focus + 1)
		}
		return m.submit()
	case "ctrl+s":
		return m.submit()
	}
	return m, m.form.update(msg)
}

func (m appModel) submit() (tea.Model, tea.Cmd) {
	rec := m.form.record()
	if rec.DynamicName != "" {
		m.busy = "Resolving " + rec.DynamicName + "..."
	} else {
		m.busy = "Saving..."
	}
	return m, tea.Batch(m.spinner.Tick, saveCmd(m.registry, m.form.index, rec))
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action := m.confirm.action
		m.confirm = nil
		m.mode = modeList
		m.busy = "Working..."
		return m, tea.Batch(m.spinner.Tick, action)
	case "n", "N", "esc", "q":
		m.confirm = nil
		m.mode = modeList
		m.status = DimStyle.Render("Cancelled")
	}
	return m, nil
}

func (m *appModel) refresh() {
	m.dashboard.SetHosts(m.registry.List())
}

// View renders the UI.
func (m appModel) View() string {
	status := m.status
	if m.busy != "" {
		status = m.spinner.View() + " " + m.busy
	}

	switch m.mode {
	case modeForm:
		v := m.form.view()
		if status != "" {
			v += "\n" + status
		}
		return v
	case modeConfirm:
		return m.dashboard.View("") + "\n\n" +
			ConfirmStyle.Render(m.confirm.prompt+"  "+DimStyle.Render("[y/n]"))
	}
	return m.dashboard.View(status)
}

// Messages
type syncDoneMsg struct {
	failures []registry.ResolutionError
	err      error
}

type wakeDoneMsg struct {
	rec model.HostRecord
	err error
}

type savedMsg struct {
	verb string
	rec  model.HostRecord
	err  error
}

type deletedMsg struct {
	rec model.HostRecord
	err error
}

func syncCmd(reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		failures, err := reg.SynchronizeDynamicAddresses(ctx)
		return syncDoneMsg{failures: failures, err: err}
	}
}

func wakeCmd(reg *registry.Registry, index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		rec, err := reg.Wake(ctx, index)
		return wakeDoneMsg{rec: rec, err: err}
	}
}

func saveCmd(reg *registry.Registry, index int, rec model.HostRecord) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if index < 0 {
			saved, _, err := reg.Add(ctx, rec)
			return savedMsg{verb: "Added", rec: saved, err: err}
		}
		saved, err := reg.Edit(ctx, index, rec)
		return savedMsg{verb: "Updated", rec: saved, err: err}
	}
}

func deleteCmd(reg *registry.Registry, index int) tea.Cmd {
	return func() tea.Msg {
		rec, err := reg.Delete(index)
		return deletedMsg{rec: rec, err: err}
	}
}

func wakeErrorText(rec model.HostRecord, err error) string {
	var rerr *registry.ResolutionError
	if errors.As(err, &rerr) {
		return fmt.Sprintf("%s cannot be woken: %v", rec.Name, err)
	}
	return err.Error()
}

func failureStatus(failures []registry.ResolutionError) string {
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = f.DynamicName
	}
	return WarningStyle.Render("Unresolved DDNS addresses: " + strings.Join(names, ", "))
}

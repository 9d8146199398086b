package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, name string) (string, bool) {
	ip, ok := m[name]
	return ip, ok
}

type countingSender struct{ calls int }

func (s *countingSender) Send(context.Context, string, string, int) error {
	s.calls++
	return nil
}

func newTestModel(t *testing.T, hosts ...model.HostRecord) (appModel, *registry.Registry, *countingSender) {
	t.Helper()
	store := registry.NewStore(filepath.Join(t.TempDir(), "hosts.json"))
	require.NoError(t, store.Save(hosts))
	sender := &countingSender{}
	reg := registry.New(store, registry.Options{
		Resolver: mapResolver{"home.example.com": "203.0.113.7"},
		Sender:   sender,
	})
	require.NoError(t, reg.Load())
	return newModel(reg, nil), reg, sender
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(appModel)
	}
	return m
}

func typeText(t *testing.T, m appModel, text string) appModel {
	t.Helper()
	for _, r := range text {
		m = press(t, m, string(r))
	}
	return m
}

var desk = model.HostRecord{Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9}

func TestFormReconcilesAddressAndDynamicName(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "n")
	require.Equal(t, modeForm, m.mode)

	m = press(t, m, "tab")
	assert.Equal(t, model.FieldAddress, m.form.focused())
	m = typeText(t, m, "10.0.0.1")

	m = press(t, m, "tab")
	m = typeText(t, m, "h")
	assert.Equal(t, "h", m.form.value(model.FieldDynamicName))
	assert.Empty(t, m.form.value(model.FieldAddress))

	m.form.setFocus(fieldIndex(model.FieldAddress))
	m = typeText(t, m, "1")
	assert.Equal(t, "1", m.form.value(model.FieldAddress))
	assert.Empty(t, m.form.value(model.FieldDynamicName))
}

func TestFormLiveValidation(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "n")

	assert.False(t, m.form.valid(model.FieldName))
	assert.False(t, m.form.valid(model.FieldAddress))
	assert.True(t, m.form.valid(model.FieldPort))

	m.form.setFocus(fieldIndex(model.FieldHardwareAddress))
	m = typeText(t, m, "AA:BB:CC:DD:EE")
	assert.False(t, m.form.valid(model.FieldHardwareAddress))
	m = typeText(t, m, ":FF")
	assert.True(t, m.form.valid(model.FieldHardwareAddress))

	assert.Contains(t, m.View(), "New Host")
}

func TestAddHostThroughForm(t *testing.T) {
	m, reg, _ := newTestModel(t)
	m = press(t, m, "n")
	m = typeText(t, m, "home")
	m.form.setFocus(fieldIndex(model.FieldDynamicName))
	m = typeText(t, m, "home.example.com")
	m.form.setFocus(fieldIndex(model.FieldHardwareAddress))
	m = typeText(t, m, "aa:bb:cc:dd:ee:ff")

	rec := m.form.record()
	msg := saveCmd(reg, m.form.index, rec)()
	next, _ := m.Update(msg)
	m = next.(appModel)

	assert.Equal(t, modeList, m.mode)
	assert.Nil(t, m.form)
	require.Equal(t, 1, reg.Len())
	got, _ := reg.Get(0)
	assert.Equal(t, "203.0.113.7", got.Address)
	assert.Contains(t, m.View(), "home")
}

func TestSaveValidationErrorFocusesField(t *testing.T) {
	m, reg, _ := newTestModel(t)
	m = press(t, m, "n")
	m = typeText(t, m, "desk")
	m.form.setFocus(fieldIndex(model.FieldAddress))
	m = typeText(t, m, "10.0.0.1")

	msg := saveCmd(reg, -1, m.form.record())()
	next, _ := m.Update(msg)
	m = next.(appModel)

	assert.Equal(t, modeForm, m.mode)
	assert.Equal(t, model.FieldHardwareAddress, m.form.focused())
	assert.Contains(t, m.status, "invalid MAC Address")
	assert.Equal(t, 0, reg.Len())
}

func TestWakeRequiresConfirmation(t *testing.T) {
	m, reg, sender := newTestModel(t, desk)

	m = press(t, m, "enter")
	require.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Wake desk")

	m = press(t, m, "n")
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, 0, sender.calls)

	m = press(t, m, "enter", "y")
	assert.NotEmpty(t, m.busy)

	next, _ := m.Update(wakeCmd(reg, 0)())
	m = next.(appModel)
	assert.Empty(t, m.busy)
	assert.Equal(t, 1, sender.calls)
	assert.Contains(t, m.status, "Wake up signal sent to desk")
}

func TestUnresolvedHostIsNotOfferedForWake(t *testing.T) {
	m, _, _ := newTestModel(t, model.HostRecord{Name: "gone", DynamicName: "gone.example.com", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9})

	m = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)
	assert.Contains(t, m.status, "cannot be woken")
}

func TestDeleteAndSync(t *testing.T) {
	m, reg, _ := newTestModel(t, desk,
		model.HostRecord{Name: "gone", DynamicName: "gone.example.com", Address: "198.51.100.1", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9})

	next, _ := m.Update(syncCmd(reg)())
	m = next.(appModel)
	assert.Contains(t, m.status, "gone.example.com")
	assert.Contains(t, m.View(), "unwakeable")

	m = press(t, m, "d")
	require.Equal(t, modeConfirm, m.mode)
	m = press(t, m, "y")

	next, _ = m.Update(deleteCmd(reg, 0)())
	m = next.(appModel)
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, m.status, "Deleted desk")
}

func TestStartupFailuresShown(t *testing.T) {
	store := registry.NewStore(filepath.Join(t.TempDir(), "hosts.json"))
	reg := registry.New(store, registry.Options{})
	require.NoError(t, reg.Load())

	m := newModel(reg, []registry.ResolutionError{{Index: 0, Name: "home", DynamicName: "home.example.com"}})
	assert.Contains(t, m.View(), "Unresolved DDNS addresses: home.example.com")
}

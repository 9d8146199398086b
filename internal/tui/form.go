package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/validate"
)

// hostForm edits one HostRecord. index is -1 for a new host.
type hostForm struct {
	index  int
	inputs []textinput.Model
	focus  int
}

func newHostForm(index int, rec model.HostRecord) *hostForm {
	f := &hostForm{index: index}
	for _, field := range model.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 253
		ti.Width = 32
		switch field {
		case model.FieldAddress:
			ti.Placeholder = "192.168.1.10"
		case model.FieldDynamicName:
			ti.Placeholder = "host.example.com"
		case model.FieldHardwareAddress:
			ti.Placeholder = "AA:BB:CC:DD:EE:FF"
		case model.FieldPort:
			ti.CharLimit = 5
		}
		f.inputs = append(f.inputs, ti)
	}
	f.setRecord(rec)
	f.inputs[0].Focus()
	return f
}

func (f *hostForm) setRecord(rec model.HostRecord) {
	f.inputs[fieldIndex(model.FieldName)].SetValue(rec.Name)
	f.inputs[fieldIndex(model.FieldAddress)].SetValue(rec.Address)
	f.inputs[fieldIndex(model.FieldDynamicName)].SetValue(rec.DynamicName)
	f.inputs[fieldIndex(model.FieldHardwareAddress)].SetValue(rec.HardwareAddress)
	port := ""
	if rec.Port != 0 {
		port = strconv.Itoa(rec.Port)
	}
	f.inputs[fieldIndex(model.FieldPort)].SetValue(port)
}

// record builds a HostRecord from the inputs. An unparsable port becomes 0,
// which validation rejects.
func (f *hostForm) record() model.HostRecord {
	port, _ := strconv.Atoi(strings.TrimSpace(f.value(model.FieldPort)))
	return model.HostRecord{
		Name:            f.value(model.FieldName),
		Address:         f.value(model.FieldAddress),
		DynamicName:     f.value(model.FieldDynamicName),
		HardwareAddress: f.value(model.FieldHardwareAddress),
		Port:            port,
	}
}

func (f *hostForm) value(field model.Field) string {
	return f.inputs[fieldIndex(field)].Value()
}

func (f *hostForm) focused() model.Field {
	return model.Fields[f.focus]
}

func (f *hostForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	i = ((i % n) + n) % n
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

func (f *hostForm) focusField(field model.Field) tea.Cmd {
	return f.setFocus(fieldIndex(field))
}

// update forwards msg to the focused input and keeps the address and the
// dynamic name mutually exclusive while typing.
func (f *hostForm) update(msg tea.Msg) tea.Cmd {
	field := f.focused()
	before := f.value(field)

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)

	if f.value(field) != before && (field == model.FieldAddress || field == model.FieldDynamicName) {
		rec := registry.ReconcileExclusiveFields(f.record(), field)
		f.inputs[fieldIndex(model.FieldAddress)].SetValue(rec.Address)
		f.inputs[fieldIndex(model.FieldDynamicName)].SetValue(rec.DynamicName)
	}
	return cmd
}

// valid reports live feedback for one field.
func (f *hostForm) valid(field model.Field) bool {
	v := strings.TrimSpace(f.value(field))
	switch field {
	case model.FieldName:
		return v != ""
	case model.FieldAddress:
		if v == "" {
			return strings.TrimSpace(f.value(model.FieldDynamicName)) != ""
		}
		return validate.IsValidAddress(v)
	case model.FieldDynamicName:
		return v == "" || validate.IsValidDynamicName(v)
	case model.FieldHardwareAddress:
		return validate.IsValidHardwareAddress(v)
	case model.FieldPort:
		_, err := validate.ParsePort(v)
		return err == nil
	}
	return false
}

func (f *hostForm) view() string {
	var sb strings.Builder

	title := "New Host"
	if f.index >= 0 {
		title = "Edit Host #" + strconv.Itoa(f.index+1)
	}
	sb.WriteString(SectionTitleStyle.Render(title))
	sb.WriteString("\n")

	for i, field := range model.Fields {
		marker := "  "
		if i == f.focus {
			marker = ValueStyle.Render("> ")
		}
		mark := RenderStatus(true, "", "")
		if !f.valid(field) {
			mark = RenderStatus(false, "", "invalid")
		}
		sb.WriteString(marker + LabelStyle.Render(field.Label()) + " " + f.inputs[i].View() + " " + mark + "\n")
	}

	sb.WriteString(HelpStyle.Render("tab/↑↓ move • enter next/save • ctrl+s save • esc cancel"))
	return SectionStyle.Render(sb.String())
}

func fieldIndex(field model.Field) int {
	for i, f := range model.Fields {
		if f == field {
			return i
		}
	}
	return 0
}

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/storage"
)

func setup(t *testing.T) (*Generator, *storage.History) {
	t.Helper()
	dir := t.TempDir()

	store := registry.NewStore(filepath.Join(dir, "hosts.json"))
	require.NoError(t, store.Save([]model.HostRecord{
		{Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9},
		{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9},
	}))
	reg := registry.New(store, registry.Options{})
	require.NoError(t, reg.Load())

	db, err := storage.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := storage.NewHistory(db)

	return NewGenerator(reg, history), history
}

func TestGenerate(t *testing.T) {
	gen, history := setup(t)
	now := time.Now()

	require.NoError(t, history.RecordWake(&model.WakeEvent{
		Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9,
		Success: true, Timestamp: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, history.RecordWake(&model.WakeEvent{
		Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9,
		Success: false, Error: "no route to host", Timestamp: now.Add(-time.Hour),
	}))
	for i, ip := range []string{"203.0.113.1", "203.0.113.9"} {
		require.NoError(t, history.RecordResolve(&model.ResolveEvent{
			DynamicName: "home.example.com", Address: ip, Success: true,
			Timestamp: now.Add(time.Duration(i-3) * time.Hour),
		}))
	}

	data, err := gen.Generate(model.ReportOptions{Since: now.Add(-24 * time.Hour), Until: now})
	require.NoError(t, err)

	require.Len(t, data.Hosts, 2)
	assert.True(t, data.Hosts[0].Wakeable)
	assert.False(t, data.Hosts[1].Wakeable)
	assert.Equal(t, 1, data.UnwakeableCount)
	require.NotNil(t, data.Hosts[0].LastWake)
	assert.False(t, data.Hosts[0].LastWake.Success)
	assert.Nil(t, data.Hosts[1].LastWake)

	assert.Equal(t, 2, data.WakeCount)
	assert.Equal(t, 1, data.FailedCount)

	require.Len(t, data.AddressChanges, 1)
	assert.Equal(t, "203.0.113.1", data.AddressChanges[0].OldIP)
	assert.Equal(t, "203.0.113.9", data.AddressChanges[0].NewIP)

	md := FormatMarkdown(data)
	assert.Contains(t, md, "# Wake-on-LAN Report")
	assert.Contains(t, md, "| 1 | desk | 192.168.1.10 | - |")
	assert.Contains(t, md, "unwakeable")
	assert.Contains(t, md, "failed: no route to host")
	assert.Contains(t, md, "## Dynamic Address Changes")
	assert.Contains(t, md, "```mermaid")
}

func TestWriteMarkdownFile(t *testing.T) {
	gen, _ := setup(t)

	data, err := gen.Generate(model.ReportOptions{Since: time.Now().Add(-time.Hour), Until: time.Now()})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteMarkdownFile(data, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "wolbook_report_"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "_No wake attempts in this period._")
}

func TestGenerateWakeDiagram(t *testing.T) {
	diagram := GenerateWakeDiagram([]HostSummary{
		{Number: 1, Record: model.HostRecord{Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9}, Wakeable: true},
		{Number: 2, Record: model.HostRecord{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9}},
	})

	assert.Contains(t, diagram, "Source --> H1")
	assert.Contains(t, diagram, "Source --> D_home_example_com --> H2")
	assert.Contains(t, diagram, "H2[home\\nunresolved\\nAA:BB:CC:DD:EE:01]:::unwakeable")
	assert.Empty(t, GenerateWakeDiagram(nil))
}

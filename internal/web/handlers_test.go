package web

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wolbook/internal/daemon"
	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/wol"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(_ context.Context, name string) (string, bool) {
	ip, ok := m[name]
	return ip, ok
}

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(_ context.Context, address, _ string, port int) error {
	s.calls++
	if s.err != nil {
		return &wol.SendError{Address: address, Port: port, Err: s.err}
	}
	return nil
}

type fixture struct {
	handler http.Handler
	server  *Server
	cfg     *util.Config
	reg     *registry.Registry
	sender  *stubSender
	history *storage.History
}

func newFixture(t *testing.T, hosts ...model.HostRecord) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := util.DefaultConfig()
	cfg.DataDir = dir

	store := registry.NewStore(filepath.Join(dir, "hosts.json"))
	require.NoError(t, store.Save(hosts))

	db, err := storage.Open(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := storage.NewHistory(db)

	sender := &stubSender{}
	reg := registry.New(store, registry.Options{
		Resolver: mapResolver{"home.example.com": "203.0.113.7"},
		Sender:   sender,
		Recorder: history,
	})
	require.NoError(t, reg.Load())

	srv := NewServer(reg, history, cfg, 0)
	return &fixture{
		handler: srv.Handler(),
		server:  srv,
		cfg:     cfg,
		reg:     reg,
		sender:  sender,
		history: history,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var desk = model.HostRecord{Name: "desk", Address: "192.168.1.10", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: 9}

func TestListHosts(t *testing.T) {
	f := newFixture(t, desk, model.HostRecord{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9})

	rec := f.do(t, http.MethodGet, "/api/hosts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	hosts := decode[[]map[string]interface{}](t, rec)
	require.Len(t, hosts, 2)
	assert.Equal(t, "desk", hosts[0]["name"])
	assert.Equal(t, float64(0), hosts[0]["index"])
	assert.Equal(t, true, hosts[0]["wakeable"])
	assert.Equal(t, false, hosts[1]["wakeable"])
}

func TestCreateHost(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/hosts", `{"name":"home","ddns":"home.example.com","mac":"aa-bb-cc-dd-ee-ff"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "203.0.113.7", body["ip"])
	assert.Equal(t, float64(9), body["port"])
	assert.Equal(t, 1, f.reg.Len())

	rec = f.do(t, http.MethodPost, "/api/hosts", `{"name":"bad","ip":"300.1.1.1","mac":"zz","port":9}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ip", decode[map[string]string](t, rec)["field"])

	rec = f.do(t, http.MethodPost, "/api/hosts", `{"name":"gone","ddns":"gone.example.com","mac":"AA:BB:CC:DD:EE:FF","port":9}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/hosts", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, f.reg.Len())
}

func TestUpdateAndDeleteHost(t *testing.T) {
	f := newFixture(t, desk)

	rec := f.do(t, http.MethodPut, "/api/hosts/0", `{"name":"desk","ip":"192.168.1.20","mac":"AA:BB:CC:DD:EE:FF","port":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got, err := f.reg.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20", got.Address)
	assert.Equal(t, 7, got.Port)

	rec = f.do(t, http.MethodPut, "/api/hosts/3", `{"name":"x","ip":"1.2.3.4","mac":"AA:BB:CC:DD:EE:FF","port":7}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/hosts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/hosts/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.reg.Len())
}

func TestWakeHost(t *testing.T) {
	f := newFixture(t, desk, model.HostRecord{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9})

	rec := f.do(t, http.MethodPost, "/api/hosts/0/wake", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, f.sender.calls)

	// Loaded with an empty address and never synchronized.
	rec = f.do(t, http.MethodPost, "/api/hosts/1/wake", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, f.sender.calls)

	f.sender.err = errors.New("network is unreachable")
	rec = f.do(t, http.MethodPost, "/api/hosts/0/wake", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/history?since=1h&host=desk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]model.WakeEvent](t, rec)
	require.Len(t, events, 2)
	assert.False(t, events[0].Success)
	assert.True(t, events[1].Success)

	rec = f.do(t, http.MethodGet, "/api/history?since=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSync(t *testing.T) {
	f := newFixture(t,
		model.HostRecord{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9},
		model.HostRecord{Name: "gone", DynamicName: "gone.example.com", Address: "198.51.100.1", HardwareAddress: "AA:BB:CC:DD:EE:02", Port: 9},
	)

	rec := f.do(t, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Failures []failureView `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Failures, 1)
	assert.Equal(t, "gone.example.com", body.Failures[0].DynamicName)
	assert.Equal(t, 1, body.Failures[0].Index)

	home, _ := f.reg.Get(0)
	assert.Equal(t, "203.0.113.7", home.Address)
	gone, _ := f.reg.Get(1)
	assert.Empty(t, gone.Address)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/validate?ip=192.168.1.1&mac=AA:BB:CC:DD:EE&port=70000&ddns=home.example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[map[string]bool](t, rec)
	assert.Equal(t, map[string]bool{"ip": true, "mac": false, "port": false, "ddns": true}, got)
}

func TestStatusAndDashboard(t *testing.T) {
	f := newFixture(t, desk)

	rec := f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(1), status["hosts"])
	assert.Equal(t, false, status["running"])

	rec = f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "192.168.1.10")

	rec = f.do(t, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Wake-on-LAN Report")
}

func TestSyncThroughDaemonRefreshesStatusFile(t *testing.T) {
	f := newFixture(t,
		model.HostRecord{Name: "home", DynamicName: "home.example.com", HardwareAddress: "AA:BB:CC:DD:EE:01", Port: 9},
		model.HostRecord{Name: "gone", DynamicName: "gone.example.com", Address: "198.51.100.1", HardwareAddress: "AA:BB:CC:DD:EE:02", Port: 9},
	)
	f.server.AttachDaemon(daemon.New(f.cfg, f.reg))
	f.handler = f.server.Handler()

	rec := f.do(t, http.MethodPost, "/api/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	sf, err := daemon.ReadStatusFile(f.cfg.DataDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone.example.com"}, sf.Unresolved)
	assert.NotEmpty(t, sf.LastSync)
	assert.Equal(t, 2, sf.Hosts)

	rec = f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]interface{}](t, rec)
	assert.Equal(t, false, status["running"])
	assert.Equal(t, []interface{}{"gone.example.com"}, status["unresolved"])
	assert.Contains(t, status, "last_sync")
}

func TestPreviewPacket(t *testing.T) {
	f := newFixture(t, desk)

	rec := f.do(t, http.MethodGet, "/api/hosts/0/packet", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Name    string `json:"name"`
		Size    int    `json:"size"`
		Target  string `json:"target"`
		Payload string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, desk.Name, body.Name)
	assert.Equal(t, wol.PacketSize, body.Size)

	raw, err := hex.DecodeString(body.Payload)
	require.NoError(t, err)
	mac, ok := wol.ParsePacket(raw)
	require.True(t, ok)
	assert.Equal(t, mac.String(), body.Target)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", body.Target)
	assert.Zero(t, f.sender.calls)

	rec = f.do(t, http.MethodGet, "/api/hosts/5/packet", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

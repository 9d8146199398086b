package web

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/user/wolbook/internal/daemon"
	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/report"
	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/validate"
	"github.com/user/wolbook/internal/wol"
)

// Handlers contains HTTP handlers.
type Handlers struct {
	registry *registry.Registry
	history  *storage.History
	config   *util.Config
	// daemon is set under serve; syncs then go through it.
	daemon *daemon.Daemon
}

// NewHandlers creates new handlers.
func NewHandlers(reg *registry.Registry, history *storage.History, cfg *util.Config) *Handlers {
	return &Handlers{
		registry: reg,
		history:  history,
		config:   cfg,
	}
}

// hostView is a registry entry as the API returns it.
type hostView struct {
	Index int `json:"index"`
	model.HostRecord
	Wakeable bool `json:"wakeable"`
}

func newHostView(index int, rec model.HostRecord) hostView {
	return hostView{Index: index, HostRecord: rec, Wakeable: registry.Wakeable(rec)}
}

// APIListHosts returns every host in order.
func (h *Handlers) APIListHosts(w http.ResponseWriter, r *http.Request) {
	hosts := h.registry.List()
	views := make([]hostView, len(hosts))
	for i, rec := range hosts {
		views[i] = newHostView(i, rec)
	}
	writeJSON(w, views)
}

// APICreateHost appends a host.
func (h *Handlers) APICreateHost(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	added, index, err := h.registry.Add(r.Context(), rec)
	if err != nil {
		writeRegistryError(w, err, http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(newHostView(index, added))
}

// APIUpdateHost replaces the host at {index}.
func (h *Handlers) APIUpdateHost(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	rec, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	updated, err := h.registry.Edit(r.Context(), index, rec)
	if err != nil {
		writeRegistryError(w, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, newHostView(index, updated))
}

// APIDeleteHost removes the host at {index}.
func (h *Handlers) APIDeleteHost(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	removed, err := h.registry.Delete(index)
	if err != nil {
		writeRegistryError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, removed)
}

// APIWakeHost sends a magic packet to the host at {index}.
func (h *Handlers) APIWakeHost(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	rec, err := h.registry.Wake(r.Context(), index)
	if err != nil {
		writeRegistryError(w, err, http.StatusConflict)
		return
	}
	writeJSON(w, map[string]interface{}{
		"woken": rec.Name,
		"ip":    rec.Address,
		"port":  rec.Port,
	})
}

type failureView struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	DynamicName string `json:"ddns"`
}

// APIPreviewPacket returns the magic packet a wake of {index} would send,
// without sending it.
func (h *Handlers) APIPreviewPacket(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	rec, err := h.registry.Get(index)
	if err != nil {
		writeRegistryError(w, err, http.StatusConflict)
		return
	}

	packet, err := wol.NewPacket(rec.HardwareAddress)
	if err != nil {
		writeRegistryError(w, &validate.ValidationError{Field: model.FieldHardwareAddress}, http.StatusConflict)
		return
	}
	target, _ := wol.ParsePacket(packet)

	writeJSON(w, map[string]interface{}{
		"index":    index,
		"name":     rec.Name,
		"ip":       rec.Address,
		"port":     rec.Port,
		"wakeable": registry.Wakeable(rec),
		"size":     len(packet),
		"target":   target.String(),
		"payload":  hex.EncodeToString(packet),
	})
}

// APISync re-resolves every dynamic name.
func (h *Handlers) APISync(w http.ResponseWriter, r *http.Request) {
	var (
		failures []registry.ResolutionError
		err      error
	)
	if h.daemon != nil {
		failures, err = h.daemon.Sync(r.Context())
	} else {
		failures, err = h.registry.SynchronizeDynamicAddresses(r.Context())
	}
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	views := make([]failureView, 0, len(failures))
	for _, f := range failures {
		views = append(views, failureView{Index: f.Index, Name: f.Name, DynamicName: f.DynamicName})
	}
	writeJSON(w, map[string]interface{}{"failures": views})
}

// APIGetHistory returns wake history. Query: since (default 24h), host.
func (h *Handlers) APIGetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, []model.WakeEvent{})
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		d, err := util.ParseDuration(sinceStr)
		if err != nil {
			writeError(w, fmt.Errorf("invalid since: %w", err), http.StatusBadRequest)
			return
		}
		since = time.Now().Add(-d)
	}

	events, err := h.history.Wakes.GetHistory(since, r.URL.Query().Get("host"))
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []model.WakeEvent{}
	}
	writeJSON(w, events)
}

// APIValidate checks whichever of ip, ddns, mac and port are present.
func (h *Handlers) APIValidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := make(map[model.Field]bool)

	if q.Has("ip") {
		result[model.FieldAddress] = validate.IsValidAddress(q.Get("ip"))
	}
	if q.Has("ddns") {
		result[model.FieldDynamicName] = validate.IsValidDynamicName(q.Get("ddns"))
	}
	if q.Has("mac") {
		result[model.FieldHardwareAddress] = validate.IsValidHardwareAddress(q.Get("mac"))
	}
	if q.Has("port") {
		_, err := validate.ParsePort(q.Get("port"))
		result[model.FieldPort] = err == nil
	}

	writeJSON(w, result)
}

// APIGetStatus returns registry, history and server state.
func (h *Handlers) APIGetStatus(w http.ResponseWriter, r *http.Request) {
	running, pid := daemon.CheckRunning(h.config.DataDir)
	if h.daemon != nil {
		running = h.daemon.IsRunning()
	}

	hosts := h.registry.List()
	unwakeable := 0
	for _, rec := range hosts {
		if !registry.Wakeable(rec) {
			unwakeable++
		}
	}

	status := map[string]interface{}{
		"running":    running,
		"pid":        pid,
		"hosts":      len(hosts),
		"unwakeable": unwakeable,
		"store":      h.registry.StorePath(),
	}

	if h.daemon != nil {
		ds := h.daemon.GetStatus()
		if !ds.LastSync.IsZero() {
			status["last_sync"] = ds.LastSync
		}
		status["unresolved"] = ds.Unresolved
	}

	if h.history != nil {
		if count, err := h.history.Wakes.Count(); err == nil {
			status["wakes"] = count
		}
		if count, err := h.history.Wakes.CountFailedSince(time.Now().Add(-24 * time.Hour)); err == nil {
			status["failed_24h"] = count
		}
	}

	writeJSON(w, status)
}

// DownloadReport generates and downloads a report of the last 24 hours.
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, errors.New("history is not available"), http.StatusServiceUnavailable)
		return
	}

	gen := report.NewGenerator(h.registry, h.history)
	data, err := gen.Generate(model.ReportOptions{
		Since: time.Now().Add(-24 * time.Hour),
		Until: time.Now(),
	})
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=wolbook_report.md")
	w.Write([]byte(report.FormatMarkdown(data)))
}

func (h *Handlers) decodeRecord(w http.ResponseWriter, r *http.Request) (model.HostRecord, bool) {
	var rec model.HostRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return rec, false
	}
	if rec.Port == 0 {
		rec.Port = h.config.DefaultPort
	}
	return rec, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, fmt.Errorf("invalid host index %q", r.PathValue("index")), http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// writeRegistryError maps registry errors to status codes. resolutionStatus
// is used for *registry.ResolutionError, whose meaning depends on the call.
func writeRegistryError(w http.ResponseWriter, err error, resolutionStatus int) {
	var (
		verr *validate.ValidationError
		rerr *registry.ResolutionError
		serr *wol.SendError
	)

	switch {
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "field": string(verr.Field)})
	case errors.As(err, &rerr):
		writeError(w, err, resolutionStatus)
	case errors.Is(err, registry.ErrIndexOutOfRange):
		writeError(w, err, http.StatusNotFound)
	case errors.As(err, &serr):
		writeError(w, err, http.StatusBadGateway)
	default:
		writeError(w, err, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

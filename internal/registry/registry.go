// Package registry owns the ordered list of managed hosts, persists it, and
// dispatches wake requests.
package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/validate"
)

// AddressResolver resolves a dynamic hostname to a numeric address.
type AddressResolver interface {
	Resolve(ctx context.Context, name string) (string, bool)
}

// PacketSender transmits one magic packet.
type PacketSender interface {
	Send(ctx context.Context, address, hardwareAddress string, port int) error
}

// Recorder receives wake and resolution events.
type Recorder interface {
	RecordWake(ev *model.WakeEvent) error
	RecordResolve(ev *model.ResolveEvent) error
}

// Options wires the registry's collaborators. Recorder may be nil.
type Options struct {
	Resolver AddressResolver
	Sender   PacketSender
	Recorder Recorder
}

// Registry is the in-memory host list. All methods are safe for concurrent
// use; network calls happen outside the lock.
type Registry struct {
	mu       sync.Mutex
	store    *Store
	hosts    []model.HostRecord
	resolver AddressResolver
	sender   PacketSender
	recorder Recorder
}

// New creates an empty registry backed by store. Call Load to read it.
func New(store *Store, opts Options) *Registry {
	return &Registry{
		store:    store,
		resolver: opts.Resolver,
		sender:   opts.Sender,
		recorder: opts.Recorder,
	}
}

// Load replaces the in-memory list with the backing store's content. On a
// *CorruptedStoreError the registry is left empty and nothing is written.
func (r *Registry) Load() error {
	hosts, err := r.store.Load()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hosts = hosts
	if err != nil {
		r.hosts = nil
		return err
	}
	util.Debug("Loaded %d hosts from %s", len(hosts), r.store.Path())
	return nil
}

// Reset empties the registry and persists the empty list.
func (r *Registry) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Save(nil); err != nil {
		return err
	}
	r.hosts = nil
	util.Warn("Host list %s reset to empty", r.store.Path())
	return nil
}

// StorePath returns the backing file path.
func (r *Registry) StorePath() string {
	return r.store.Path()
}

// List returns a copy of the hosts in display order.
func (r *Registry) List() []model.HostRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Len returns the number of hosts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hosts)
}

// Get returns the host at index.
func (r *Registry) Get(index int) (model.HostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.hosts) {
		return model.HostRecord{}, outOfRange(index, len(r.hosts))
	}
	return r.hosts[index], nil
}

// Find returns the index of the first host named name (case-insensitive).
func (r *Registry) Find(name string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, h := range r.hosts {
		if strings.EqualFold(h.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Add validates rec, resolving its dynamic name first, appends it and
// persists. It returns the stored record and its index.
func (r *Registry) Add(ctx context.Context, rec model.HostRecord) (model.HostRecord, int, error) {
	var index int
	m := appendRecord()
	apply := m.apply
	m.apply = func(hosts []model.HostRecord, rec model.HostRecord) []model.HostRecord {
		index = len(hosts)
		return apply(hosts, rec)
	}

	stored, err := r.mutate(ctx, rec, m)
	if err != nil {
		return stored, -1, err
	}
	return stored, index, nil
}

// Edit validates rec like Add and replaces the host at index.
func (r *Registry) Edit(ctx context.Context, index int, rec model.HostRecord) (model.HostRecord, error) {
	return r.mutate(ctx, rec, replaceRecord(index))
}

// Delete removes the host at index and persists. Remaining hosts keep their
// relative order.
func (r *Registry) Delete(index int) (model.HostRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.hosts) {
		return model.HostRecord{}, outOfRange(index, len(r.hosts))
	}

	removed := r.hosts[index]
	next := append(r.snapshot()[:index], r.hosts[index+1:]...)
	if err := r.store.Save(next); err != nil {
		return removed, err
	}
	r.hosts = next

	util.Info("Deleted host %s", removed.Name)
	return removed, nil
}

// SynchronizeDynamicAddresses re-resolves every dynamic name. Successes
// overwrite the address; failures clear it, leaving the record unwakeable.
// The list is persisted even if nothing changed. The returned slice lists
// the failures.
func (r *Registry) SynchronizeDynamicAddresses(ctx context.Context) ([]ResolutionError, error) {
	type lookup struct {
		index int
		rec   model.HostRecord
		ip    string
		ok    bool
	}

	var lookups []lookup
	for i, h := range r.List() {
		if h.DynamicName != "" {
			lookups = append(lookups, lookup{index: i, rec: h})
		}
	}

	for i := range lookups {
		lookups[i].ip, lookups[i].ok = r.resolve(ctx, lookups[i].rec.DynamicName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var failures []ResolutionError
	for _, l := range lookups {
		// Skip records that changed while resolving.
		if l.index >= len(r.hosts) || r.hosts[l.index].DynamicName != l.rec.DynamicName {
			continue
		}
		if l.ok {
			r.hosts[l.index].Address = l.ip
			continue
		}
		r.hosts[l.index].Address = ""
		failures = append(failures, ResolutionError{
			Index:       l.index,
			Name:        l.rec.Name,
			DynamicName: l.rec.DynamicName,
		})
		util.Warn("DDNS address %s for %s did not resolve; host is unwakeable", l.rec.DynamicName, l.rec.Name)
	}

	if err := r.store.Save(r.hosts); err != nil {
		return failures, err
	}

	util.Info("Synchronized %d dynamic addresses (%d failed)", len(lookups), len(failures))
	return failures, nil
}

// PrepareWake re-validates the host at index. An empty address on a dynamic
// record is a *ResolutionError; other problems are *validate.ValidationError.
func (r *Registry) PrepareWake(index int) (model.HostRecord, error) {
	rec, err := r.Get(index)
	if err != nil {
		return rec, err
	}

	if rec.Address == "" && rec.DynamicName != "" {
		return rec, &ResolutionError{Index: index, Name: rec.Name, DynamicName: rec.DynamicName}
	}
	if err := validate.ValidateRecord(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// Wake validates the host at index and sends one magic packet to it.
func (r *Registry) Wake(ctx context.Context, index int) (model.HostRecord, error) {
	rec, err := r.PrepareWake(index)
	if err != nil {
		return rec, err
	}
	if r.sender == nil {
		return rec, errors.New("no packet sender configured")
	}

	err = r.sender.Send(ctx, rec.Address, rec.HardwareAddress, rec.Port)

	ev := &model.WakeEvent{
		Name:            rec.Name,
		Address:         rec.Address,
		HardwareAddress: rec.HardwareAddress,
		Port:            rec.Port,
		Success:         err == nil,
		Timestamp:       time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
		util.Error("Wake of %s failed: %v", rec.Name, err)
	} else {
		util.Info("Wake up signal sent to %s (%s:%d)", rec.Name, rec.Address, rec.Port)
	}
	r.record(func(rc Recorder) error { return rc.RecordWake(ev) })

	return rec, err
}

// Wakeable reports whether rec passes the wake-time checks.
func Wakeable(rec model.HostRecord) bool {
	if rec.Address == "" && rec.DynamicName != "" {
		return false
	}
	return validate.ValidateRecord(rec) == nil
}

func (r *Registry) resolve(ctx context.Context, name string) (string, bool) {
	if r.resolver == nil {
		return "", false
	}
	ip, ok := r.resolver.Resolve(ctx, name)

	ev := &model.ResolveEvent{
		DynamicName: name,
		Address:     ip,
		Success:     ok,
		Timestamp:   time.Now(),
	}
	r.record(func(rc Recorder) error { return rc.RecordResolve(ev) })
	return ip, ok
}

func (r *Registry) record(fn func(Recorder) error) {
	if r.recorder == nil {
		return
	}
	if err := fn(r.recorder); err != nil {
		util.Warn("Failed to record history: %v", err)
	}
}

// snapshot copies the host list. Callers hold r.mu.
func (r *Registry) snapshot() []model.HostRecord {
	out := make([]model.HostRecord, len(r.hosts))
	copy(out, r.hosts)
	return out
}

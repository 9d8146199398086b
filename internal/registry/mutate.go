package registry

import (
	"context"
	"strings"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/validate"
)

// ReconcileExclusiveFields keeps the address and the dynamic name mutually
// exclusive after changed was edited. A non-empty address clears the dynamic
// name. Any change to the dynamic name clears the address, which is derived
// from it.
func ReconcileExclusiveFields(r model.HostRecord, changed model.Field) model.HostRecord {
	switch changed {
	case model.FieldAddress:
		if strings.TrimSpace(r.Address) != "" {
			r.DynamicName = ""
		}
	case model.FieldDynamicName:
		r.Address = ""
	}
	return r
}

// mutation describes how a prepared record lands in the host list.
type mutation struct {
	verb string
	// check runs under the lock before apply, e.g. to bounds-check an index.
	check func(hosts []model.HostRecord) error
	// apply returns the new list; hosts is a private copy.
	apply func(hosts []model.HostRecord, rec model.HostRecord) []model.HostRecord
}

func appendRecord() mutation {
	return mutation{
		verb: "Added",
		apply: func(hosts []model.HostRecord, rec model.HostRecord) []model.HostRecord {
			return append(hosts, rec)
		},
	}
}

func replaceRecord(index int) mutation {
	return mutation{
		verb: "Updated",
		check: func(hosts []model.HostRecord) error {
			if index < 0 || index >= len(hosts) {
				return outOfRange(index, len(hosts))
			}
			return nil
		},
		apply: func(hosts []model.HostRecord, rec model.HostRecord) []model.HostRecord {
			hosts[index] = rec
			return hosts
		},
	}
}

// prepare normalizes, resolves and validates rec without touching registry
// state.
func (r *Registry) prepare(ctx context.Context, rec model.HostRecord) (model.HostRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Address = strings.TrimSpace(rec.Address)
	rec.DynamicName = strings.TrimSpace(rec.DynamicName)
	rec.HardwareAddress = strings.TrimSpace(rec.HardwareAddress)

	// The dynamic name wins: its address is re-derived below.
	if rec.DynamicName != "" {
		rec = ReconcileExclusiveFields(rec, model.FieldDynamicName)
	}

	if rec.Name == "" {
		return rec, &validate.ValidationError{Field: model.FieldName}
	}

	if rec.DynamicName != "" {
		if !validate.IsValidDynamicName(rec.DynamicName) {
			return rec, &validate.ValidationError{Field: model.FieldDynamicName}
		}
		ip, ok := r.resolve(ctx, rec.DynamicName)
		if !ok {
			return rec, &ResolutionError{Index: -1, Name: rec.Name, DynamicName: rec.DynamicName}
		}
		rec.Address = ip
	}

	if err := validate.ValidateRecord(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// mutate prepares rec, then applies m and persists the full list. In-memory
// state only changes once the write succeeded.
func (r *Registry) mutate(ctx context.Context, rec model.HostRecord, m mutation) (model.HostRecord, error) {
	rec, err := r.prepare(ctx, rec)
	if err != nil {
		return rec, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.check != nil {
		if err := m.check(r.hosts); err != nil {
			return rec, err
		}
	}

	next := m.apply(r.snapshot(), rec)
	if err := r.store.Save(next); err != nil {
		return rec, err
	}
	r.hosts = next

	util.Info("%s host %s", m.verb, rec.Name)
	return rec, nil
}

package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/util"
)

// Job names.
const (
	JobSync        = "ddns_sync"
	JobStatusWrite = "status_write"
)

const statusInterval = 30 * time.Second

func (d *Daemon) registerJobs() {
	// The registry was synchronized when it was loaded.
	d.scheduler.AddJob(&Job{
		Name:     JobSync,
		Interval: d.config.SyncInterval,
		Delay:    d.config.SyncInterval,
		Run:      d.runSync,
	})

	d.scheduler.AddJob(&Job{
		Name:     JobStatusWrite,
		Interval: statusInterval,
		Run:      func(ctx context.Context) error { return d.writeStatus() },
	})
}

func (d *Daemon) runSync(ctx context.Context) error {
	_, err := d.Sync(ctx)
	return err
}

// Sync re-resolves every dynamic name now and refreshes the status file.
func (d *Daemon) Sync(ctx context.Context) ([]registry.ResolutionError, error) {
	failures, err := d.registry.SynchronizeDynamicAddresses(ctx)
	if err != nil {
		return nil, err
	}

	unresolved := make([]string, 0, len(failures))
	for _, f := range failures {
		unresolved = append(unresolved, f.DynamicName)
	}

	d.mu.Lock()
	d.unresolved = unresolved
	d.lastSync = time.Now()
	d.mu.Unlock()

	if len(failures) > 0 {
		util.Warn("Dynamic address sync: %d of %d hosts unresolved", len(failures), d.registry.Len())
	} else {
		util.Info("Dynamic address sync complete (%d hosts)", d.registry.Len())
	}

	if err := d.writeStatus(); err != nil {
		return failures, fmt.Errorf("failed to write status file: %w", err)
	}
	return failures, nil
}

func (d *Daemon) writeStatus() error {
	d.statusMu.Lock()
	defer d.statusMu.Unlock()
	return WriteStatusFile(d.config.DataDir, d.GetStatus())
}

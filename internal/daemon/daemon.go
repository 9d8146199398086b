// Package daemon runs the periodic dynamic-address sync behind the serve
// command and publishes its state through pid and status files.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/util"
)

const pidFileName = "wolbook.pid"

// Daemon manages the background service.
type Daemon struct {
	config    *util.Config
	registry  *registry.Registry
	scheduler *Scheduler
	pidFile   string
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	statusMu  sync.Mutex // serializes status file writes

	mu         sync.RWMutex
	running    bool
	startTime  time.Time
	lastSync   time.Time
	unresolved []string
}

// New creates a new daemon instance serving reg.
func New(cfg *util.Config, reg *registry.Registry) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:   cfg,
		registry: reg,
		pidFile:  filepath.Join(cfg.DataDir, pidFileName),
		ctx:      ctx,
		cancel:   cancel,
	}
	d.scheduler = NewScheduler(ctx)

	return d
}

// Start starts the daemon.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	util.Info("Daemon starting...")

	d.registerJobs()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scheduler.Run()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handleSignals()
	}()

	util.Info("Daemon started with PID %d", os.Getpid())

	return nil
}

// Wait waits for the daemon to finish.
func (d *Daemon) Wait() {
	d.wg.Wait()
}

// Stop stops the daemon gracefully.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	util.Info("Daemon stopping...")

	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		util.Info("Daemon stopped gracefully")
	case <-time.After(30 * time.Second):
		util.Warn("Daemon stop timed out")
	}

	d.removePIDFile()
	RemoveStatusFile(d.config.DataDir)

	return nil
}

// Done is closed once Stop has been called.
func (d *Daemon) Done() <-chan struct{} {
	return d.ctx.Done()
}

// TriggerSync runs the dynamic-address sync on the next scheduler tick.
func (d *Daemon) TriggerSync() bool {
	return d.scheduler.TriggerJob(JobSync)
}

// handleSignals stops the daemon on SIGINT or SIGTERM. SIGHUP schedules an
// immediate dynamic-address sync.
func (d *Daemon) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				util.Info("Received %v, syncing dynamic addresses", sig)
				d.TriggerSync()
				continue
			}
			util.Info("Received signal: %v", sig)
			// Stop waits on this goroutine.
			go d.Stop()
			return
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Daemon) writePIDFile() error {
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (d *Daemon) removePIDFile() {
	os.Remove(d.pidFile)
}

// IsRunning returns whether the daemon is running.
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// GetStatus returns the daemon status.
func (d *Daemon) GetStatus() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return &DaemonStatus{
		Running:    d.running,
		PID:        os.Getpid(),
		StartTime:  d.startTime,
		Uptime:     time.Since(d.startTime),
		Hosts:      d.registry.Len(),
		LastSync:   d.lastSync,
		Unresolved: append([]string(nil), d.unresolved...),
		Jobs:       d.scheduler.GetJobStatuses(),
	}
}

// DaemonStatus holds the current daemon status.
type DaemonStatus struct {
	Running    bool
	PID        int
	StartTime  time.Time
	Uptime     time.Duration
	Hosts      int
	LastSync   time.Time
	Unresolved []string
	Jobs       []JobStatus
}

package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const statusFileName = "status.json"

// CheckRunning checks if a serve process is alive.
func CheckRunning(dataDir string) (bool, int) {
	data, err := os.ReadFile(filepath.Join(dataDir, pidFileName))
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// Signal 0 only checks that the process exists.
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return false, 0
	}

	return true, pid
}

// SendStop asks the running serve process to shut down.
func SendStop(dataDir string) error {
	running, pid := CheckRunning(dataDir)
	if !running {
		return fmt.Errorf("daemon is not running")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	return nil
}

// StatusFile holds serialized daemon status.
type StatusFile struct {
	Running    bool        `json:"running"`
	PID        int         `json:"pid"`
	StartTime  string      `json:"start_time"`
	Uptime     string      `json:"uptime"`
	Hosts      int         `json:"hosts"`
	LastSync   string      `json:"last_sync,omitempty"`
	Unresolved []string    `json:"unresolved,omitempty"`
	Jobs       []JobStatus `json:"jobs"`
}

// WriteStatusFile writes the daemon status to the data dir.
func WriteStatusFile(dataDir string, status *DaemonStatus) error {
	sf := StatusFile{
		Running:    status.Running,
		PID:        status.PID,
		StartTime:  status.StartTime.Format("2006-01-02 15:04:05"),
		Uptime:     status.Uptime.Truncate(time.Second).String(),
		Hosts:      status.Hosts,
		Unresolved: status.Unresolved,
		Jobs:       status.Jobs,
	}
	if !status.LastSync.IsZero() {
		sf.LastSync = status.LastSync.Format("2006-01-02 15:04:05")
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dataDir, statusFileName), data, 0644)
}

// ReadStatusFile reads the daemon status from the data dir.
func ReadStatusFile(dataDir string) (*StatusFile, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, statusFileName))
	if err != nil {
		return nil, err
	}

	var sf StatusFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}

// RemoveStatusFile deletes a stale status file.
func RemoveStatusFile(dataDir string) {
	os.Remove(filepath.Join(dataDir, statusFileName))
}

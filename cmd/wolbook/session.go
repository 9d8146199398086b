package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/probes"
	"github.com/user/wolbook/internal/registry"
	"github.com/user/wolbook/internal/storage"
	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/validate"
	"github.com/user/wolbook/internal/wol"
)

const loadTimeout = 30 * time.Second

// session is a loaded registry plus its history database.
type session struct {
	reg      *registry.Registry
	db       *storage.DB
	history  *storage.History
	failures []registry.ResolutionError
}

// openSession loads the host list and synchronizes dynamic addresses. A
// corrupted list is reset after confirmation, or aborts the command.
func openSession(cmd *cobra.Command) (*session, error) {
	s := &session{}

	db, err := storage.Open(cfg.HistoryFile)
	if err != nil {
		util.Warn("Wake history disabled: %v", err)
	} else {
		s.db = db
		s.history = storage.NewHistory(db)
	}

	opts := registry.Options{
		Resolver: probes.NewResolver(cfg.Resolver.Server),
		Sender:   wol.NewSender(),
	}
	if s.history != nil {
		opts.Recorder = s.history
	}
	s.reg = registry.New(registry.NewStore(cfg.HostsFile), opts)

	if err := s.reg.Load(); err != nil {
		var corrupt *registry.CorruptedStoreError
		if !errors.As(err, &corrupt) {
			s.Close()
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		if !resetCorrupted && !confirm(cmd, "Reset it to an empty host list?") {
			s.Close()
			return nil, fmt.Errorf("host list left untouched")
		}
		if err := s.reg.Reset(); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to reset host list: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Host list reset.")
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, loadTimeout)
	defer cancel()
	s.failures, err = s.reg.SynchronizeDynamicAddresses(ctx)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to save host list: %w", err)
	}

	return s, nil
}

// Close releases the history database.
func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// printFailures warns about dynamic names that did not resolve.
func printFailures(w io.Writer, failures []registry.ResolutionError) {
	for _, f := range failures {
		fmt.Fprintf(w, "%s %s\n",
			warnStyle.Render("Warning:"),
			fmt.Sprintf("DDNS address %s for %s could not be resolved; it cannot be woken until it resolves.",
				f.DynamicName, f.Name))
	}
}

// resolveRef maps a 1-based number or a host name to a registry index.
func resolveRef(reg *registry.Registry, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > reg.Len() {
			return 0, fmt.Errorf("no host #%d (have %d)", n, reg.Len())
		}
		return n - 1, nil
	}
	if i, ok := reg.Find(ref); ok {
		return i, nil
	}
	return 0, fmt.Errorf("no host named %q", ref)
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// wakeError turns wake-time registry errors into user-facing text.
func wakeError(rec model.HostRecord, err error) error {
	var (
		verr *validate.ValidationError
		rerr *registry.ResolutionError
	)
	switch {
	case errors.As(err, &rerr):
		return fmt.Errorf("%s cannot be woken: DDNS address %s did not resolve", rec.Name, rerr.DynamicName)
	case errors.As(err, &verr) && rec.Name != "":
		return fmt.Errorf("%s has an %s", rec.Name, verr.Error())
	}
	return err
}

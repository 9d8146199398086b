//go:build !windows

package wol

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setBroadcast enables SO_BROADCAST on Unix systems.
func setBroadcast(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

//go:build windows

package wol

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// setBroadcast enables SO_BROADCAST on Windows.
func setBroadcast(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

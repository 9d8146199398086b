package wol

import (
	"context"
	"fmt"
	"net"

	"github.com/user/wolbook/internal/util"
	"github.com/user/wolbook/internal/validate"
)

// SendError wraps a socket-layer failure while transmitting a wake datagram.
type SendError struct {
	Address string
	Port    int
	Err     error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send magic packet to %s:%d: %v", e.Address, e.Port, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Sender transmits magic packets over broadcast-enabled UDP sockets.
type Sender struct{}

// NewSender creates a new sender.
func NewSender() *Sender {
	return &Sender{}
}

// Send builds the payload for hardwareAddress and sends it as one datagram to
// address:port. The socket is closed before Send returns.
func (s *Sender) Send(ctx context.Context, address, hardwareAddress string, port int) error {
	packet, err := NewPacket(hardwareAddress)
	if err != nil {
		return err
	}

	ip, ok := validate.ParseAddress(address)
	if !ok {
		return &SendError{Address: address, Port: port, Err: fmt.Errorf("not an IPv4 address")}
	}

	lc := net.ListenConfig{Control: setBroadcast}

	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return &SendError{Address: address, Port: port, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	n, err := conn.WriteTo(packet, &net.UDPAddr{IP: ip, Port: port})
	if err != nil {
		return &SendError{Address: address, Port: port, Err: err}
	}

	util.Debug("Sent %d byte magic packet for %s to %s:%d", n, hardwareAddress, address, port)
	return nil
}

// Package wol builds and transmits Wake-on-LAN magic packets.
package wol

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

const (
	// DefaultPort is the conventional discard port used for wake datagrams.
	DefaultPort = 9
	// PacketSize is 6 bytes of 0xFF followed by 16 copies of the MAC.
	PacketSize = 6 + 16*6
)

var separators = strings.NewReplacer(":", "", "-", "")

// ParseHardwareAddress strips separators and decodes exactly six bytes.
func ParseHardwareAddress(mac string) (net.HardwareAddr, error) {
	raw, err := hex.DecodeString(separators.Replace(mac))
	if err != nil {
		return nil, fmt.Errorf("invalid MAC address %q: %w", mac, err)
	}
	if len(raw) != 6 {
		return nil, fmt.Errorf("MAC address must be 6 bytes, got %d", len(raw))
	}
	return net.HardwareAddr(raw), nil
}

// NewPacket returns the magic packet payload for mac.
func NewPacket(mac string) ([]byte, error) {
	hw, err := ParseHardwareAddress(mac)
	if err != nil {
		return nil, err
	}

	packet := make([]byte, PacketSize)
	for i := 0; i < 6; i++ {
		packet[i] = 0xFF
	}
	for i := 0; i < 16; i++ {
		copy(packet[6+i*6:], hw)
	}
	return packet, nil
}

// ParsePacket verifies a magic packet and returns the hardware address it
// targets.
func ParsePacket(packet []byte) (net.HardwareAddr, bool) {
	if len(packet) < PacketSize {
		return nil, false
	}
	for i := 0; i < 6; i++ {
		if packet[i] != 0xFF {
			return nil, false
		}
	}

	mac := packet[6:12]
	for i := 1; i < 16; i++ {
		offset := 6 + i*6
		for j := 0; j < 6; j++ {
			if packet[offset+j] != mac[j] {
				return nil, false
			}
		}
	}
	return net.HardwareAddr(append([]byte(nil), mac...)), true
}

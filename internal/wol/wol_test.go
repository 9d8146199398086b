package wol

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/wolbook/internal/model"
	"github.com/user/wolbook/internal/validate"
)

func TestNewPacketLayout(t *testing.T) {
	packet, err := NewPacket("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	require.Len(t, packet, 102)

	assert.Equal(t, bytes.Repeat([]byte{0xFF}, 6), packet[:6])
	mac := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	for i := 0; i < 16; i++ {
		off := 6 + i*6
		assert.Equal(t, mac, packet[off:off+6], "repetition %d", i)
	}
}

func TestNewPacketHyphenated(t *testing.T) {
	a, err := NewPacket("aa-bb-cc-dd-ee-ff")
	require.NoError(t, err)
	b, err := NewPacket("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewPacketRejectsBadMAC(t *testing.T) {
	_, err := NewPacket("AA:BB:CC:DD:EE")
	assert.Error(t, err)
	_, err = NewPacket("ZZ:BB:CC:DD:EE:FF")
	assert.Error(t, err)
}

func TestParsePacket(t *testing.T) {
	packet, err := NewPacket("01:23:45:67:89:ab")
	require.NoError(t, err)

	mac, ok := ParsePacket(packet)
	require.True(t, ok)
	assert.Equal(t, "01:23:45:67:89:ab", mac.String())

	packet[50] ^= 0x01
	_, ok = ParsePacket(packet)
	assert.False(t, ok)

	_, ok = ParsePacket(packet[:20])
	assert.False(t, ok)
}

func TestSenderDeliversOneDatagram(t *testing.T) {
	ln, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.LocalAddr().(*net.UDPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, NewSender().Send(ctx, "127.0.0.1", "AA:BB:CC:DD:EE:FF", port))

	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := ln.ReadFrom(buf)
	require.NoError(t, err)
	require.Equal(t, PacketSize, n)

	mac, ok := ParsePacket(buf[:n])
	require.True(t, ok)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", mac.String())
}

func TestSenderAcceptsZeroPaddedOctets(t *testing.T) {
	ln, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.LocalAddr().(*net.UDPAddr).Port

	rec := model.HostRecord{Name: "padded", Address: "127.000.000.001", HardwareAddress: "AA:BB:CC:DD:EE:FF", Port: port}
	require.NoError(t, validate.ValidateRecord(rec))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, NewSender().Send(ctx, rec.Address, rec.HardwareAddress, rec.Port))

	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 512)
	n, _, err := ln.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, PacketSize, n)
}

func TestSenderRejectsNonIPv4(t *testing.T) {
	err := NewSender().Send(context.Background(), "not-an-ip", "AA:BB:CC:DD:EE:FF", 9)
	var serr *SendError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, 9, serr.Port)
}

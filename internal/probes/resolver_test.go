package probes

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDNS serves A records for the given names on a loopback UDP port.
func startDNS(t *testing.T, records map[string]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)
		q := req.Question[0]
		if ip, ok := records[q.Name]; ok && q.Qtype == dns.TypeA {
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP(ip),
			})
		} else {
			m.SetRcode(req, dns.RcodeNameError)
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestResolveViaServer(t *testing.T) {
	addr := startDNS(t, map[string]string{"host.example.com.": "203.0.113.7"})
	r := NewResolver(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ip, ok := r.Resolve(ctx, "host.example.com")
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", ip)

	_, ok = r.Resolve(ctx, "missing.example.com")
	assert.False(t, ok)
}

func TestResolvePlatformLiteral(t *testing.T) {
	r := NewResolver("")
	assert.Equal(t, "", r.Server())

	ip, ok := r.Resolve(context.Background(), "127.0.0.1")
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1", ip)
}

func TestNewResolverDefaultsPort(t *testing.T) {
	assert.Equal(t, "192.0.2.53:53", NewResolver("192.0.2.53").Server())
	assert.Equal(t, "192.0.2.53:5353", NewResolver("192.0.2.53:5353").Server())
}

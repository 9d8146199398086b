// Package probes provides dynamic hostname resolution.
package probes

import (
	"context"
	"fmt"
	"net"

	"github.com/miekg/dns"

	"github.com/user/wolbook/internal/util"
)

// Resolver looks up the current IPv4 address of a dynamic hostname.
type Resolver struct {
	server string
	client *dns.Client
	lookup *net.Resolver
}

// NewResolver creates a resolver. An empty server uses the platform
// resolver; otherwise A queries go straight to server ("host" or "host:port").
func NewResolver(server string) *Resolver {
	r := &Resolver{lookup: net.DefaultResolver}
	if server != "" {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
		r.server = server
		r.client = &dns.Client{Net: "udp"}
	}
	return r
}

// Server returns the configured DNS server, or "" for the platform resolver.
func (r *Resolver) Server() string {
	return r.server
}

// Resolve returns the first IPv4 address bound to name. Any failure yields
// ok=false; the caller treats it as "address temporarily unknown".
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	var (
		ip  string
		err error
	)
	if r.client != nil {
		ip, err = r.exchange(ctx, name)
	} else {
		ip, err = r.platform(ctx, name)
	}
	if err != nil {
		util.Debug("Resolution of %s failed: %v", name, err)
		return "", false
	}
	util.Debug("Resolved %s to %s", name, ip)
	return ip, true
}

func (r *Resolver) platform(ctx context.Context, name string) (string, error) {
	addrs, err := r.lookup.LookupIP(ctx, "ip4", name)
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if v4 := a.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address for %s", name)
}

func (r *Resolver) exchange(ctx context.Context, name string) (string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", r.server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("query %s: %s", r.server, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		if a, ok := rr.(*dns.A); ok {
			return a.A.String(), nil
		}
	}
	return "", fmt.Errorf("no A record for %s", name)
}

// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package network classifies the origin of an HTTP request.

An origin is "internal" when the client address falls inside a private IPv4
block, the loopback range, or an operator-supplied allow-list. Internal origins
skip the admin step-up challenge; everything else must present a verified
second factor.

Usage:

	policy, err := network.NewPolicy(cfg.AdminIPAllowlist)
	origin := policy.Resolve(request)
	if origin.Internal { ... }
*/
package network

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/taibuivan/shopii/pkg/slice"
)

// # Address Blocks

var privateBlocks = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
}

// Origin is the resolved network identity of a request.
type Origin struct {
	// IP is the client address as seen by the API (X-Forwarded-For aware).
	IP string
	// Internal is true when IP is private, loopback, or allow-listed.
	Internal bool
}

// Policy decides whether a client address counts as internal.
// It is immutable after construction and safe for concurrent use.
type Policy struct {
	allow []netip.Prefix
}

// NewPolicy parses a comma-separated allow-list of CIDR blocks or bare addresses.
// An empty list yields a policy that trusts only private and loopback ranges.
func NewPolicy(allowList string) (*Policy, error) {
	policy := &Policy{}

	for _, entry := range slice.SplitList(allowList) {

		if !strings.Contains(entry, "/") {
			addr, err := netip.ParseAddr(entry)
			if err != nil {
				return nil, fmt.Errorf("network: invalid allow-list entry %q: %w", entry, err)
			}
			addr = addr.Unmap()
			policy.allow = append(policy.allow, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}

		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return nil, fmt.Errorf("network: invalid allow-list entry %q: %w", entry, err)
		}
		policy.allow = append(policy.allow, prefix.Masked())
	}

	return policy, nil
}

// IsInternal reports whether ip belongs to a trusted range.
// Unparseable input is never internal.
func (p *Policy) IsInternal(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, block := range privateBlocks {
		if block.Contains(addr) {
			return true
		}
	}
	for _, block := range p.allow {
		if block.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve computes the [Origin] of request.
func (p *Policy) Resolve(request *http.Request) Origin {
	ip := ClientIP(request)
	return Origin{IP: ip, Internal: p.IsInternal(ip)}
}

// # Client Address

// ClientIP returns the first X-Forwarded-For entry, or the transport peer address.
// IPv4-mapped IPv6 addresses (::ffff:a.b.c.d) are reduced to their IPv4 form.
func ClientIP(request *http.Request) string {
	candidate := ""
	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		candidate = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if candidate == "" {
		host, _, err := net.SplitHostPort(request.RemoteAddr)
		if err != nil {
			host = request.RemoteAddr
		}
		candidate = host
	}

	if addr, err := netip.ParseAddr(candidate); err == nil {
		return addr.Unmap().String()
	}
	return candidate
}

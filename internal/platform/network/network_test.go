// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package network_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/network"
)

/*
TestClientIP covers forwarded headers, peer addresses and IPv4-mapped IPv6.
*/
func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		remote    string
		want      string
	}{
		{"forwarded_first_entry", "203.0.113.9, 10.0.0.1", "10.0.0.1:443", "203.0.113.9"},
		{"peer_address", "", "198.51.100.7:51234", "198.51.100.7"},
		{"mapped_ipv6_peer", "", "[::ffff:192.168.1.20]:8080", "192.168.1.20"},
		{"mapped_ipv6_forwarded", "::ffff:10.1.2.3", "127.0.0.1:1", "10.1.2.3"},
		{"ipv6_loopback", "", "[::1]:9000", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, network.ClientIP(request))
		})
	}
}

/*
TestPolicy_IsInternal checks private ranges, loopback and the allow-list.
*/
func TestPolicy_IsInternal(t *testing.T) {
	policy, err := network.NewPolicy("203.0.113.0/24, 198.51.100.7")
	require.NoError(t, err)

	tests := []struct {
		ip       string
		internal bool
	}{
		{"10.4.5.6", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"172.32.0.1", false},
		{"192.168.0.10", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"::ffff:192.168.1.1", true},
		{"203.0.113.77", true},
		{"198.51.100.7", true},
		{"198.51.100.8", false},
		{"8.8.8.8", false},
		{"not-an-ip", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.internal, policy.IsInternal(tt.ip))
		})
	}
}

/*
TestNewPolicy_RejectsGarbage fails fast on malformed allow-list entries.
*/
func TestNewPolicy_RejectsGarbage(t *testing.T) {
	_, err := network.NewPolicy("10.0.0.0/33")
	assert.Error(t, err)

	_, err = network.NewPolicy("office-vpn")
	assert.Error(t, err)

	policy, err := network.NewPolicy("")
	require.NoError(t, err)
	assert.False(t, policy.IsInternal("203.0.113.1"))
}

/*
TestPolicy_Resolve combines address extraction and classification.
*/
func TestPolicy_Resolve(t *testing.T) {
	policy, err := network.NewPolicy("")
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Forwarded-For", "203.0.113.9")

	origin := policy.Resolve(request)
	assert.Equal(t, "203.0.113.9", origin.IP)
	assert.False(t, origin.Internal)
}

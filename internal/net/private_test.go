package net

import (
	"net"
	"testing"
)

func TestIsPrivateNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:6800", true},
		{"http://127.0.0.1:6800/jsonrpc", true},
		{"192.168.1.20", true},
		{"10.0.0.5:80", true},
		{"172.20.1.1", true},
		{"172.32.1.1", false},
		{"[::1]:6800", true},
		{"fd00::1", true},
		{"fe80::1", true},
		{"8.8.8.8", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPrivateNetwork(tt.host); got != tt.want {
			t.Errorf("IsPrivateNetwork(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	t.Parallel()

	if !IsPrivateIP(net.ParseIP("127.0.0.2")) {
		t.Errorf("loopback should be private")
	}
	if IsPrivateIP(net.ParseIP("1.1.1.1")) {
		t.Errorf("public address reported private")
	}
}

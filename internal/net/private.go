// Package net provides networking utilities.
package net

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"
	"variaredirect/internal/domain/logger"
)

// lookupTimeout bounds hostname resolution in IsPrivateNetwork.
const lookupTimeout = 2 * time.Second

// IsPrivateNetwork returns true if host (a host, host:port or URL) points at a LAN or loopback address.
func IsPrivateNetwork(host string) bool {
	h := hostOnly(host)
	if h == "" {
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}

	if ip := net.ParseIP(h); ip != nil {
		return IsPrivateIP(ip)
	}
	return resolvesPrivate(h)
}

// IsPrivateIP reports whether ip is loopback, RFC 1918/4193 private or link-local.
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// resolvesPrivate resolves h and reports whether any address is private.
func resolvesPrivate(h string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, h)
	if err != nil {
		logger.Pl.D(2, "Failed to resolve hostname %q: %v", h, err)
		return false
	}
	for _, a := range addrs {
		if IsPrivateIP(a.IP) {
			logger.Pl.D(2, "Host %q resolved to private IP address %q", h, a.IP)
			return true
		}
	}
	return false
}

// hostOnly strips scheme, port and brackets from host.
func hostOnly(host string) string {
	host = strings.TrimSpace(host)
	if strings.Contains(host, "://") {
		if u, err := url.Parse(host); err == nil {
			return u.Hostname()
		}
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

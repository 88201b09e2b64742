package consts

import "time"

// Network timeouts
const (
	HTTPClientTimeout = 10 * time.Second
	ProbeTimeout      = 5 * time.Second
)

// Sandbox
const (
	DefaultSandboxTimeout = 2 * time.Second
)

// Probe trigger limiting
const (
	DefaultProbeMinInterval = time.Second
)

// Server
const (
	DefaultListenAddr     = "127.0.0.1:6802"
	SessionKeepAlive      = 15 * time.Second
	ServerShutdownTimeout = 5 * time.Second
	ServerReadTimeout     = 15 * time.Second
)

// Package keys holds the configuration keys used with Viper.
package keys

// Program.
const (
	ConfigFile string = "config"
	DebugLevel string = "debug"
	EnvFile    string = "env-file"
)

// Server.
const (
	ListenAddr string = "listen-addr"
)

// Aria2.
const (
	Aria2Secret string = "aria2-secret"
	RPCTimeout  string = "rpc-timeout"
)

// Sandbox.
const (
	SandboxTimeout string = "sandbox-timeout"
)

// Notifications.
const (
	NotifyURLs string = "notify-urls"
)

// Probe.
const (
	ProbeMinInterval string = "probe-min-interval"
)

// Environment.
const (
	EnvPrefix string = "VARIAREDIRECT"
)

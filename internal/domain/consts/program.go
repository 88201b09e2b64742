package consts

// Program identity.
const (
	ProgramName    = "variaredirect"
	KeyringService = "variaredirect"
	KeyringUser    = "aria2-rpc-secret"
)

// Aria2 JSON-RPC.
const (
	RPCMethodAddURI     = "aria2.addUri"
	RPCMethodGetVersion = "aria2.getVersion"
	RPCIDPrefix         = "varia-redirect-"
	RPCProbeID          = "icon-test"
	RPCTokenPrefix      = "token:"
)

// Notifications.
const (
	NotifyRedirectFailedTitle = "Aria2 Redirect Failed"
	NotifyRedirectFailedMsg   = "Could not send download to Aria2. Error: %s"
	NotifyFilterFailedTitle   = "Custom Filter Failed"
	NotifyFilterFailedMsg     = "Custom filter script failed for %q. Error: %s"
	NotifyIDRedirectPrefix    = "aria2-fail-"
	NotifyIDFilterPrefix      = "filter-fail-"
)

// Message types.
const (
	MsgTestCustomFilter = "TEST_CUSTOM_FILTER"
)

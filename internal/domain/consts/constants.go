// Package consts holds various global, unchanging values.
package consts

// HTTP
const (
	ApplicationJSON = "application/json"
	ContentType     = "Content-Type"
)

// Header names added by the dispatcher.
const (
	HeaderReferer = "Referer"
	HeaderCookie  = "Cookie"
)

// MiB is the multiplier applied to the minimum download size setting.
const MiB = 1024 * 1024

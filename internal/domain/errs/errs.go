// Package errs holds the error kinds surfaced by the redirect pipeline.
package errs

import "errors"

// Error kinds.
var (
	ErrConfigurationMissing = errors.New("no rpc url configured")
	ErrInvalidURL           = errors.New("invalid download url")
	ErrPolicyRejected       = errors.New("rejected by policy")
	ErrSandboxEvaluation    = errors.New("custom filter evaluation failed")
	ErrSandboxShape         = errors.New("custom filter returned an invalid result")
	ErrRPCTransport         = errors.New("rpc transport error")
	ErrRPCRemote            = errors.New("rpc remote error")
)

// Kind names, stable for JSON output.
const (
	KindNone                 = ""
	KindConfigurationMissing = "configuration-missing"
	KindInvalidURL           = "invalid-url"
	KindPolicyRejected       = "policy-rejected"
	KindSandboxEvaluation    = "sandbox-evaluation"
	KindSandboxShape         = "sandbox-shape"
	KindRPCTransport         = "rpc-transport"
	KindRPCRemote            = "rpc-remote"
	KindUnknown              = "unknown"
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrConfigurationMissing, KindConfigurationMissing},
	{ErrInvalidURL, KindInvalidURL},
	{ErrPolicyRejected, KindPolicyRejected},
	{ErrSandboxEvaluation, KindSandboxEvaluation},
	{ErrSandboxShape, KindSandboxShape},
	{ErrRPCTransport, KindRPCTransport},
	{ErrRPCRemote, KindRPCRemote},
}

// Kind returns the kind name for err.
func Kind(err error) string {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return KindUnknown
}

// RemoteError carries the message of a well-formed JSON-RPC error response.
type RemoteError struct {
	Code    int
	Message string
}

// Error implements error.
func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap ties RemoteError to ErrRPCRemote.
func (e *RemoteError) Unwrap() error {
	return ErrRPCRemote
}

// Package downloaders holds logic specific to external downloaders.
package downloaders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"variaredirect/internal/domain/consts"
	"variaredirect/internal/domain/errs"
	"variaredirect/internal/domain/logger"
	"variaredirect/internal/models"

	"github.com/google/uuid"
)

// maxResponseBytes bounds how much of an RPC response is read.
const maxResponseBytes = 1 << 20

// Aria2RPC talks to an aria2 JSON-RPC endpoint.
type Aria2RPC struct {
	Client *http.Client
	Secret string // Sent as "token:<secret>" when set.
}

// NewAria2RPC returns a client. A zero timeout leaves requests unbounded.
func NewAria2RPC(secret string, timeout time.Duration) *Aria2RPC {
	return &Aria2RPC{
		Client: &http.Client{Timeout: timeout},
		Secret: secret,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Version is the result of aria2.getVersion.
type Version struct {
	Version         string   `json:"version"`
	EnabledFeatures []string `json:"enabledFeatures"`
}

// NewRequestID returns a unique id for a redirect request.
func NewRequestID() string {
	return consts.RPCIDPrefix + uuid.NewString()
}

// AddURI sends uri to aria2 with the given options and returns the new GID.
func (a *Aria2RPC) AddURI(ctx context.Context, endpoint, uri string, params models.Params) (gid string, err error) {
	if params.Header == nil {
		params.Header = []string{}
	}

	raw, err := a.Call(ctx, endpoint, NewRequestID(), consts.RPCMethodAddURI, []string{uri}, params)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(raw, &gid); err != nil || gid == "" {
		return "", fmt.Errorf("%w: addUri result is not a GID: %s", errs.ErrRPCTransport, raw)
	}
	return gid, nil
}

// GetVersion calls aria2.getVersion.
func (a *Aria2RPC) GetVersion(ctx context.Context, endpoint string) (Version, error) {
	var v Version
	raw, err := a.Call(ctx, endpoint, consts.RPCProbeID, consts.RPCMethodGetVersion)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: malformed getVersion result: %v", errs.ErrRPCTransport, err)
	}
	return v, nil
}

// Call performs one JSON-RPC request and returns the raw result.
//
// An empty endpoint wraps errs.ErrConfigurationMissing. Network and decode
// failures wrap errs.ErrRPCTransport. Error responses are *errs.RemoteError.
func (a *Aria2RPC) Call(ctx context.Context, endpoint, id, method string, params ...any) (json.RawMessage, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errs.ErrConfigurationMissing
	}

	finalParams := make([]any, 0, len(params)+1)
	if a.Secret != "" {
		finalParams = append(finalParams, consts.RPCTokenPrefix+a.Secret)
	}
	finalParams = append(finalParams, params...)

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  finalParams,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", errs.ErrRPCTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRPCTransport, err)
	}
	req.Header.Set(consts.ContentType, consts.ApplicationJSON)

	logger.Pl.D(3, "Sending %s (id %s) to %q", method, id, endpoint)
	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRPCTransport, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Pl.E("Failed to close HTTP response body: %v", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", errs.ErrRPCTransport, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, fmt.Errorf("%w: HTTP %d, undecodable response: %v", errs.ErrRPCTransport, resp.StatusCode, err)
	}

	if rpcResp.Error != nil {
		return nil, &errs.RemoteError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}
	if len(rpcResp.Result) == 0 || bytes.Equal(bytes.TrimSpace(rpcResp.Result), []byte("null")) {
		return nil, fmt.Errorf("%w: HTTP %d, response has neither result nor error", errs.ErrRPCTransport, resp.StatusCode)
	}
	return rpcResp.Result, nil
}

func (a *Aria2RPC) httpClient() *http.Client {
	if a.Client == nil {
		return http.DefaultClient
	}
	return a.Client
}

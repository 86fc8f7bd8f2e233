// Package httptransport provides a stateless HTTP transport for the MCP server.
//
// Each POST carries one JSON-RPC message. Requests block until the server
// sends the matching response, notifications are accepted with 202.
package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/metoro-io/mcp-golang/transport"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp/mcp", "httptransport")

// MaxBodySize is the largest accepted request body
const MaxBodySize = 1 << 20

// Transport implements transport.Transport and http.Handler
type Transport struct {
	messageHandler func(ctx context.Context, message *transport.BaseJsonRpcMessage)
	errorHandler   func(error)
	closeHandler   func()
	mu             sync.RWMutex
	responseMap    map[int64]chan *transport.BaseJsonRpcMessage
	atomicCounter  int64
}

var (
	_ transport.Transport = (*Transport)(nil)
	_ http.Handler        = (*Transport)(nil)
)

// New returns a transport, mount it on a mux to serve requests.
func New() *Transport {
	return &Transport{
		responseMap: make(map[int64]chan *transport.BaseJsonRpcMessage),
	}
}

// Start implements Transport.Start, the listener is owned by the caller.
func (t *Transport) Start(ctx context.Context) error {
	return nil
}

// Send implements Transport.Send
func (t *Transport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	var key int64
	switch message.Type {
	case transport.BaseMessageTypeJSONRPCResponseType:
		key = int64(message.JsonRpcResponse.Id)
	case transport.BaseMessageTypeJSONRPCErrorType:
		key = int64(message.JsonRpcError.Id)
	default:
		// no client stream to push notifications or requests to
		logger.ContextKV(ctx, xlog.DEBUG, "reason", "dropped", "type", message.Type)
		return nil
	}

	t.mu.RLock()
	responseChannel := t.responseMap[key]
	t.mu.RUnlock()

	if responseChannel == nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"type", message.Type,
			"key", key,
			"err", "no response channel found",
		)
		return errors.Errorf("no response channel found for key: %d", key)
	}

	select {
	case responseChannel <- message:
		return nil
	default:
		return errors.Errorf("response already sent for key: %d", key)
	}
}

// Close implements Transport.Close
func (t *Transport) Close() error {
	t.mu.RLock()
	handler := t.closeHandler
	t.mu.RUnlock()
	if handler != nil {
		handler()
	}
	return nil
}

// SetCloseHandler implements Transport.SetCloseHandler
func (t *Transport) SetCloseHandler(handler func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeHandler = handler
}

// SetErrorHandler implements Transport.SetErrorHandler
func (t *Transport) SetErrorHandler(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorHandler = handler
}

// SetMessageHandler implements Transport.SetMessageHandler
func (t *Transport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageHandler = handler
}

// ServeHTTP handles a single JSON-RPC message
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Only POST method is supported", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		t.reportError(errors.Wrap(err, "failed to read request body"))
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	response, err := t.HandleMessage(ctx, body)
	if err != nil {
		logger.ContextKV(ctx, xlog.DEBUG, "reason", "handle_message", "err", err.Error())
		status := http.StatusBadRequest
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(response)
}

// rpcEnvelope holds the fields needed to route a message
type rpcEnvelope struct {
	ID     json.RawMessage `json:"id"`
	Method *string         `json:"method"`
}

// rpcResponse is a response or error carrying the caller's ID,
// which may be a string or a number.
type rpcResponse struct {
	Jsonrpc string                           `json:"jsonrpc"`
	ID      json.RawMessage                  `json:"id"`
	Result  json.RawMessage                  `json:"result,omitempty"`
	Error   *transport.BaseJSONRPCErrorInner `json:"error,omitempty"`
}

// HandleMessage dispatches the message and waits for the response.
// It returns the JSON response, or nil for notifications and responses.
func (t *Transport) HandleMessage(ctx context.Context, body []byte) ([]byte, error) {
	t.mu.RLock()
	handler := t.messageHandler
	t.mu.RUnlock()
	if handler == nil {
		return nil, errors.New("transport is not connected")
	}

	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err == nil &&
		env.Method != nil && len(env.ID) > 0 && string(env.ID) != "null" {
		return t.handleRequest(ctx, handler, body, env.ID)
	}

	var notification transport.BaseJSONRPCNotification
	if err := json.Unmarshal(body, &notification); err == nil {
		handler(ctx, transport.NewBaseMessageNotification(&notification))
		return nil, nil
	}

	var response transport.BaseJSONRPCResponse
	if err := json.Unmarshal(body, &response); err == nil {
		handler(ctx, transport.NewBaseMessageResponse(&response))
		return nil, nil
	}

	var errorResponse transport.BaseJSONRPCError
	if err := json.Unmarshal(body, &errorResponse); err == nil {
		handler(ctx, transport.NewBaseMessageError(&errorResponse))
		return nil, nil
	}

	return nil, errors.New("invalid JSON-RPC message")
}

func (t *Transport) handleRequest(
	ctx context.Context,
	handler func(ctx context.Context, message *transport.BaseJsonRpcMessage),
	body []byte,
	callerID json.RawMessage,
) ([]byte, error) {
	key := atomic.AddInt64(&t.atomicCounter, 1)

	// the server replies to the transport key, the caller gets its own ID back
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.New("invalid JSON-RPC message")
	}
	fields["id"] = json.RawMessage(strconv.FormatInt(key, 10))
	keyed, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}
	var request transport.BaseJSONRPCRequest
	if err = json.Unmarshal(keyed, &request); err != nil {
		return nil, errors.New("invalid JSON-RPC message")
	}

	ch := make(chan *transport.BaseJsonRpcMessage, 1)
	t.mu.Lock()
	t.responseMap[key] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.responseMap, key)
		t.mu.Unlock()
	}()

	handler(ctx, transport.NewBaseMessageRequest(&request))

	var res *transport.BaseJsonRpcMessage
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}

	out := rpcResponse{Jsonrpc: "2.0", ID: callerID}
	switch {
	case res.JsonRpcResponse != nil:
		out.Result = res.JsonRpcResponse.Result
	case res.JsonRpcError != nil:
		out.Error = &res.JsonRpcError.Error
	}

	js, err := json.Marshal(out)
	if err != nil {
		t.reportError(errors.Wrap(err, "failed to marshal response"))
		return nil, errors.Wrap(err, "failed to marshal response")
	}
	return js, nil
}

func (t *Transport) reportError(err error) {
	t.mu.RLock()
	handler := t.errorHandler
	t.mu.RUnlock()
	if handler != nil {
		handler(err)
	}
}

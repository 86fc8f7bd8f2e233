package tools

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp", "tools")

// ErrToolNotFound is returned by Registry.Call for unknown tools.
var ErrToolNotFound = errors.New("tool not found")

// Registry holds tools in registration order.
type Registry struct {
	lock     sync.RWMutex
	tools    []ITool
	byName   map[string]ITool
	callback Callback
}

// NewRegistry returns registry with the given tools.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]ITool),
	}
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithCallback sets the callback notified on every call.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.callback = cb
	return r
}

// Register adds the tool, names must be unique.
func (r *Registry) Register(t ITool) error {
	if t == nil || t.Name() == "" {
		return errors.New("invalid tool: empty name")
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.byName[t.Name()]; ok {
		return errors.Errorf("tool already registered: %s", t.Name())
	}
	r.byName[t.Name()] = t
	r.tools = append(r.tools, t)
	return nil
}

// Get returns the tool by name.
func (r *Registry) Get(name string) (ITool, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]ITool(nil), r.tools...)
}

// Descriptions returns JSON description of the registered tools.
func (r *Registry) Descriptions() string {
	return GetDescriptions(r.List()...)
}

// Call invokes the tool by name with JSON input.
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	r.lock.RLock()
	cb := r.callback
	t, ok := r.byName[name]
	r.lock.RUnlock()

	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolNotFound(ctx, name)
		}
		return "", errors.Wrapf(ErrToolNotFound, "%s", name)
	}
	return Invoke(ctx, cb, t, input)
}

// RegisterMCP registers every MCP capable tool with the server.
func (r *Registry) RegisterMCP(registrator McpServerRegistrator) error {
	r.lock.RLock()
	cb := r.callback
	r.lock.RUnlock()

	for _, t := range r.List() {
		mt, ok := t.(IMCPTool)
		if !ok {
			logger.KV(xlog.DEBUG, "reason", "not_mcp_tool", "tool", t.Name())
			continue
		}
		if err := mt.RegisterMCP(registrator, cb); err != nil {
			return err
		}
	}
	return nil
}

// Package server exposes the employment tools over MCP, on stdio or HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/worldbank-mcp/config"
	"github.com/effective-security/worldbank-mcp/mcp/httptransport"
	"github.com/effective-security/worldbank-mcp/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/worldbank-mcp", "server")

// Server identity reported to MCP clients and on /ping
const (
	ServiceName = "World Bank Employment MCP Server"
	Name        = "worldbank-employment"
	Version     = "1.0.0"
)

// ShutdownTimeout bounds graceful HTTP shutdown
var ShutdownTimeout = 15 * time.Second

// NewMCPServer returns MCP server on the transport with the registry tools.
func NewMCPServer(tr transport.Transport, registry *tools.Registry) (*mcp.Server, error) {
	server := mcp.NewServer(tr,
		mcp.WithName(Name),
		mcp.WithVersion(Version),
	)
	if err := registry.RegisterMCP(server); err != nil {
		return nil, err
	}
	return server, nil
}

// ServeStdio serves MCP on in/out until ctx is done or in is closed.
func ServeStdio(ctx context.Context, registry *tools.Registry, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tr := stdio.NewStdioServerTransportWithIO(&closingReader{r: in, cancel: cancel}, out)
	server, err := NewMCPServer(tr, registry)
	if err != nil {
		return err
	}
	if err = server.Serve(); err != nil {
		return errors.WithMessage(err, "failed to serve stdio")
	}
	logger.KV(xlog.INFO, "status", "serving", "transport", "stdio")

	<-ctx.Done()
	logger.KV(xlog.INFO, "status", "stopped", "transport", "stdio")
	return nil
}

// closingReader cancels the serving context once the host closes its end
type closingReader struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *closingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if err != nil {
		c.cancel()
	}
	return n, err
}

// PingResponse is returned by GET /ping
type PingResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// Handler returns the HTTP handler with /ping and the MCP endpoint at mcpPath.
func Handler(registry *tools.Registry, mcpPath string) (http.Handler, error) {
	tr := httptransport.New()
	server, err := NewMCPServer(tr, registry)
	if err != nil {
		return nil, err
	}
	if err = server.Serve(); err != nil {
		return nil, errors.WithMessage(err, "failed to start MCP server")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", ping)
	mux.Handle(mcpPath, tr)
	return mux, nil
}

func ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(PingResponse{OK: true, Service: ServiceName})
}

// Run serves HTTP on cfg.HTTP.Addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, registry *tools.Registry) error {
	handler, err := Handler(registry, cfg.HTTP.MCPPath)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.KV(xlog.INFO,
			"status", "serving",
			"transport", "http",
			"addr", cfg.HTTP.Addr,
			"mcp_path", cfg.HTTP.MCPPath,
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	case <-ctx.Done():
		logger.KV(xlog.INFO, "status", "shutting_down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	<-serverErrors

	logger.KV(xlog.INFO, "status", "stopped")
	return nil
}

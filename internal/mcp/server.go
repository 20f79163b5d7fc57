// Package mcp exposes HDL export and hierarchy queries as MCP tools over
// stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/hdlast/internal/discovery"
	"github.com/mvp-joe/hdlast/internal/exporter"
	"github.com/mvp-joe/hdlast/internal/logging"
	"github.com/mvp-joe/hdlast/internal/storage"
)

// ServerConfig holds what the tools need.
type ServerConfig struct {
	Name      string
	Version   string
	Exporter  *exporter.Exporter
	Discovery *discovery.FileDiscovery
	// Reader is optional; without it hdl_instances reports that no index
	// exists.
	Reader *storage.Reader
}

// Server manages the MCP server lifecycle.
type Server struct {
	mcp *server.MCPServer
}

// NewServer creates the MCP server and registers every tool.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if cfg.Discovery == nil {
		return nil, fmt.Errorf("file discovery is required")
	}

	s := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
	)
	AddExportTool(s, cfg.Exporter)
	AddHierarchyTool(s, cfg.Exporter, cfg.Discovery)
	AddInstancesTool(s, cfg.Reader)

	return &Server{mcp: s}, nil
}

// Serve runs the server on stdio until a signal, a transport error or ctx
// cancellation.
func (s *Server) Serve(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

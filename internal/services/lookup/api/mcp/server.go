// Package mcp exposes the lookup service over the Model Context Protocol,
// using elicitation to drive interactive disambiguation.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	i18ncatalog "github.com/louisbranch/grimoire.space/internal/platform/i18n/catalog"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/app"
	"github.com/louisbranch/grimoire.space/internal/services/lookup/storage"
)

const (
	serverName    = "grimoire-space-lookup"
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the lookup MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the bind address for the HTTP transport. Defaults to
	// localhost:8081.
	HTTPAddr string
	// PromptTimeout bounds one elicitation round trip.
	PromptTimeout time.Duration
	// MaxChoices bounds the number of candidates offered per prompt.
	MaxChoices int
	// DefaultCutoff applies when a tool call does not set one.
	DefaultCutoff float64
}

// Server hosts the lookup MCP tools.
type Server struct {
	mcpServer *mcp.Server
	merger    *app.Merger
	bundle    *i18ncatalog.Bundle
	cfg       Config
}

// NewServer creates a configured lookup MCP server backed by the compendium
// and collection stores.
func NewServer(compendium storage.CompendiumStore, collections storage.CollectionStore, cfg Config) *Server {
	server := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{}),
		merger: &app.Merger{
			Compendium:  compendium,
			Collections: collections,
		},
		bundle: i18ncatalog.Default(),
		cfg:    cfg,
	}
	registerLookupTools(server)
	return server
}

// resolver builds the per-call resolver. Each tool call gets its own engine
// so the prompt can be addressed to the calling session.
func (s *Server) resolver(session *mcp.ServerSession, locale string) *app.Resolver {
	messages := s.messages(locale)
	return &app.Resolver{
		Merger: s.merger,
		Engine: &app.Engine{
			Prompter:   &elicitPrompter{session: session, promptTemplate: messages["lookup.prompt"]},
			MaxChoices: s.cfg.MaxChoices,
			Timeout:    s.cfg.PromptTimeout,
		},
		Label:         app.HomebrewLabeler("[" + messages["lookup.homebrew_marker"] + "]"),
		DefaultCutoff: s.cfg.DefaultCutoff,
	}
}

func (s *Server) messages(locale string) map[string]string {
	_, messages := s.bundle.NamespaceMessagesWithFallback(locale, "lookup")
	return messages
}

// Run serves the MCP server until the context ends.
func (s *Server) Run(ctx context.Context) error {
	transport := s.cfg.Transport
	if transport == "" {
		transport = TransportStdio
	}
	switch transport {
	case TransportStdio:
		return s.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		return s.serveHTTP(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", transport)
	}
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	return err
}

func (s *Server) serveHTTP(ctx context.Context) error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = "localhost:8081"
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

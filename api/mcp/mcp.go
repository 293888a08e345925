// Package mcp provides an MCP (Model Context Protocol) server exposing nexus
// memory to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yash3561/Nexus/pkg/memory"
	"github.com/Yash3561/Nexus/pkg/utils"
)

type Config struct {
	// Registry loads profiles and conversations
	Registry *memory.Registry

	// Logger is the configured logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	if c.Registry == nil {
		return nil, errors.New("memory registry is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "nexus",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        profileLookupToolName,
		Description: profileLookupDescription,
	}, s.handleProfileLookup)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        historyToolName,
		Description: historyDescription,
	}, s.handleConversationHistory)

	s.mcpServer = mcpServer

	// Stateless streamable HTTP handler
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorResult is a tool failure reported to the caller rather than the
// transport.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// Package mcp exposes the panel over the Model Context Protocol so an agent
// can list catalogs, inspect references and remove unused entries.
package mcp

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/datamanager/internal/config"
	dmdebug "github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/panel"
	"github.com/standardbeagle/datamanager/internal/version"
)

// Server serves one in-memory document. Tool calls are serialized; document
// reloads take the same lock.
type Server struct {
	mu        sync.Mutex
	app       *memdoc.App
	panel     *panel.Panel
	cfg       *config.Config
	docPath   string
	afterSave func()

	server *mcp.Server
}

// NewServer builds the MCP server. docPath, when set, is where the document
// is saved after a removal.
func NewServer(app *memdoc.App, cfg *config.Config, docPath string) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		app:     app,
		panel:   panel.New(app, cfg, panel.Options{Refresher: app}),
		cfg:     cfg,
		docPath: docPath,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "datamanager",
		Version: version.Info(),
	}, nil)
	s.registerTools()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// OnSaved registers a hook run after each successful save.
func (s *Server) OnSaved(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterSave = fn
}

// ReplaceDocument swaps the active document, e.g. after a file reload.
func (s *Server) ReplaceDocument(doc *memdoc.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.app.SetDocument(doc)
	dmdebug.LogMCP("document replaced: %s\n", doc.Name())
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	dmdebug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// withPanel runs fn under the server lock, converting panics and errors into
// tool error results.
func (s *Server) withPanel(operation string, fn func(p *panel.Panel) (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			dmdebug.LogMCP("PANIC RECOVERED in %s: %v\n%s\n", operation, r, debug.Stack())
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
	}()

	result, err = fn(s.panel)
	if err != nil {
		dmdebug.LogMCP("error in %s: %v\n", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// save writes the document back when a path is configured. Must hold s.mu.
func (s *Server) save() (bool, error) {
	doc := s.app.Document()
	if s.docPath == "" || doc == nil {
		return false, nil
	}
	if err := doc.SaveFile(s.docPath); err != nil {
		return false, err
	}
	if s.afterSave != nil {
		s.afterSave()
	}
	return true, nil
}

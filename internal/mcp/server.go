// Package mcp exposes window management to MCP clients over stdio. Every tool
// forwards to a running daemon.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/ipc"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/window"
)

const (
	ServerName    = "canvaslist"
	ServerVersion = "0.1.0"
)

// Backend is the daemon API the tools call. *ipc.Client implements it.
type Backend interface {
	GetStatus() (*daemon.Status, error)
	List() ([]window.Record, error)
	Create(req daemon.CreateRequest) (window.Record, error)
	Move(id, x, y int) (window.Record, error)
	Resize(id, width, height int) (window.Record, error)
	Front(id int) (window.Record, error)
	Minimize(id int) (window.Record, error)
	Restore(id int) (window.Record, error)
	Destroy(id int) (bool, error)
	SaveView(key string) (ipc.ViewData, error)
	RestoreView(key string) (ipc.ViewData, error)
	ListViews() ([]daemon.ViewInfo, error)
	SetViewport(width, height int) (geometry.Viewport, error)
	Scan() (monitor.Result, error)
	SaveLayout(name string) (ipc.LayoutSaveData, error)
	LoadLayout(name string, replace bool) (layoutstore.HydrateResult, error)
	ListLayouts() ([]string, error)
}

var _ Backend = (*ipc.Client)(nil)

// Server is the MCP server for window management.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   Backend
}

// NewServer creates an MCP server that forwards to backend.
func NewServer(backend Backend) *Server {
	s := &Server{backend: backend}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report daemon status: window count, viewport, saved views and the last correction pass.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every open window ordered bottom to top, with position, size and minimized state.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "create_window",
		Description: "Open a list or item window. Omit x/y to let the daemon cascade it into free space. Positions are clamped so the header stays reachable.",
	}, s.handleCreateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window. The stored position may differ from the requested one after clamping; the result carries the actual position.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window. Sizes below the configured minimum are raised to it.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Apply a single-window action: front, minimize, restore or destroy.",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_view",
		Description: "Snapshot the positions of all visible windows under a view key (root, list:<id> or item:<list>/<item>).",
	}, s.handleSaveView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_view",
		Description: "Reapply a saved view. Windows that no longer exist or are minimized are skipped; positions are revalidated against the current viewport.",
	}, s.handleRestoreView)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_views",
		Description: "List saved view keys and how many windows each holds.",
	}, s.handleListViews)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_viewport",
		Description: "Report a new viewport size. Windows that become unreachable are pulled back after a short debounce.",
	}, s.handleSetViewport)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scan_windows",
		Description: "Run an immediate correction pass and report how many windows were moved back into reach.",
	}, s.handleScan)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Persist the current window arrangement under a name.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_layout",
		Description: "Recreate windows from a saved layout. Existing windows with the same id are skipped unless replace is true.",
	}, s.handleLoadLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List saved layout names.",
	}, s.handleListLayouts)
}

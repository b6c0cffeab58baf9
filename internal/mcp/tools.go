package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/window"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.backend.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{Status: *st}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	recs, err := s.backend.List()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	windows := make([]WindowInfo, 0, len(recs))
	for _, rec := range recs {
		windows = append(windows, toWindowInfo(rec))
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleCreateWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CreateWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	rec, err := s.backend.Create(daemon.CreateRequest{
		ID:     args.ID,
		Kind:   args.Kind,
		Title:  args.Title,
		X:      args.X,
		Y:      args.Y,
		Width:  args.Width,
		Height: args.Height,
	})
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: toWindowInfo(rec)}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	rec, err := s.backend.Move(args.ID, args.X, args.Y)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: toWindowInfo(rec)}, nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	rec, err := s.backend.Resize(args.ID, args.Width, args.Height)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: toWindowInfo(rec)}, nil
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowActionOutput, error) {
	action := strings.ToLower(strings.TrimSpace(args.Action))
	out := WindowActionOutput{Action: action}

	var fn func(int) (window.Record, error)
	switch action {
	case "front":
		fn = s.backend.Front
	case "minimize":
		fn = s.backend.Minimize
	case "restore":
		fn = s.backend.Restore
	case "destroy":
		destroyed, err := s.backend.Destroy(args.ID)
		if err != nil {
			return nil, WindowActionOutput{}, err
		}
		if !destroyed {
			return nil, WindowActionOutput{}, fmt.Errorf("window %d not found", args.ID)
		}
		out.Destroyed = true
		return nil, out, nil
	default:
		return nil, WindowActionOutput{}, fmt.Errorf("unknown action %q (want front, minimize, restore or destroy)", args.Action)
	}

	rec, err := fn(args.ID)
	if err != nil {
		return nil, WindowActionOutput{}, err
	}
	info := toWindowInfo(rec)
	out.Window = &info
	return nil, out, nil
}

func (s *Server) handleSaveView(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewInput) (*mcpsdk.CallToolResult, ViewOutput, error) {
	data, err := s.backend.SaveView(args.Key)
	if err != nil {
		return nil, ViewOutput{}, err
	}
	return nil, ViewOutput{Key: data.Key, Windows: data.Windows, Found: data.Found}, nil
}

func (s *Server) handleRestoreView(_ context.Context, _ *mcpsdk.CallToolRequest, args ViewInput) (*mcpsdk.CallToolResult, ViewOutput, error) {
	data, err := s.backend.RestoreView(args.Key)
	if err != nil {
		return nil, ViewOutput{}, err
	}
	return nil, ViewOutput{Key: data.Key, Applied: data.Applied, Found: data.Found}, nil
}

func (s *Server) handleListViews(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListViewsOutput, error) {
	views, err := s.backend.ListViews()
	if err != nil {
		return nil, ListViewsOutput{}, err
	}
	if views == nil {
		views = []daemon.ViewInfo{}
	}
	return nil, ListViewsOutput{Views: views}, nil
}

func (s *Server) handleSetViewport(_ context.Context, _ *mcpsdk.CallToolRequest, args SetViewportInput) (*mcpsdk.CallToolResult, SetViewportOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, SetViewportOutput{}, fmt.Errorf("width and height must be positive")
	}
	vp, err := s.backend.SetViewport(args.Width, args.Height)
	if err != nil {
		return nil, SetViewportOutput{}, err
	}
	return nil, SetViewportOutput{Width: vp.Width, Height: vp.Height}, nil
}

func (s *Server) handleScan(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ScanOutput, error) {
	res, err := s.backend.Scan()
	if err != nil {
		return nil, ScanOutput{}, err
	}
	return nil, ScanOutput{Checked: res.Checked, Skipped: res.Skipped, Corrected: res.Corrected}, nil
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutInput) (*mcpsdk.CallToolResult, SaveLayoutOutput, error) {
	data, err := s.backend.SaveLayout(args.Name)
	if err != nil {
		return nil, SaveLayoutOutput{}, err
	}
	return nil, SaveLayoutOutput{Name: data.Name, Windows: data.Windows}, nil
}

func (s *Server) handleLoadLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args LayoutInput) (*mcpsdk.CallToolResult, LoadLayoutOutput, error) {
	res, err := s.backend.LoadLayout(args.Name, args.Replace)
	if err != nil {
		return nil, LoadLayoutOutput{}, err
	}
	return nil, LoadLayoutOutput{Created: res.Created, Replaced: res.Replaced, Skipped: res.Skipped}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	names, err := s.backend.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListLayoutsOutput{Layouts: names}, nil
}

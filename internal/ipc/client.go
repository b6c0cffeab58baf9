package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/interaction"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/runtimepath"
	"github.com/1broseidon/canvaslist/internal/window"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out.
// A nil out discards the data.
func (c *Client) call(command CommandType, payload, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*daemon.Status, error) {
	var status daemon.Status
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

func (c *Client) Create(req daemon.CreateRequest) (window.Record, error) {
	var rec window.Record
	err := c.call(CommandCreate, req, &rec)
	return rec, err
}

func (c *Client) Destroy(id int) (bool, error) {
	var data DestroyData
	err := c.call(CommandDestroy, WindowPayload{ID: id}, &data)
	return data.Destroyed, err
}

func (c *Client) Get(id int) (window.Record, error) {
	return c.windowCall(CommandGet, id)
}

func (c *Client) List() ([]window.Record, error) {
	var recs []window.Record
	err := c.call(CommandList, nil, &recs)
	return recs, err
}

func (c *Client) Move(id, x, y int) (window.Record, error) {
	var rec window.Record
	err := c.call(CommandMove, MovePayload{ID: id, X: x, Y: y}, &rec)
	return rec, err
}

func (c *Client) Resize(id, width, height int) (window.Record, error) {
	var rec window.Record
	err := c.call(CommandResize, ResizePayload{ID: id, Width: width, Height: height}, &rec)
	return rec, err
}

func (c *Client) Front(id int) (window.Record, error) {
	return c.windowCall(CommandFront, id)
}

func (c *Client) Minimize(id int) (window.Record, error) {
	return c.windowCall(CommandMinimize, id)
}

func (c *Client) Restore(id int) (window.Record, error) {
	return c.windowCall(CommandRestore, id)
}

func (c *Client) windowCall(command CommandType, id int) (window.Record, error) {
	var rec window.Record
	err := c.call(command, WindowPayload{ID: id}, &rec)
	return rec, err
}

// SaveView snapshots the current arrangement under key.
func (c *Client) SaveView(key string) (ViewData, error) {
	var data ViewData
	err := c.call(CommandViewSave, ViewPayload{Key: key}, &data)
	return data, err
}

// RestoreView reapplies a saved view.
func (c *Client) RestoreView(key string) (ViewData, error) {
	var data ViewData
	err := c.call(CommandViewRestore, ViewPayload{Key: key}, &data)
	return data, err
}

func (c *Client) ListViews() ([]daemon.ViewInfo, error) {
	var views []daemon.ViewInfo
	err := c.call(CommandViewList, nil, &views)
	return views, err
}

// SetViewport reports a new viewport size to the daemon.
func (c *Client) SetViewport(width, height int) (geometry.Viewport, error) {
	var vp geometry.Viewport
	err := c.call(CommandViewport, ViewportPayload{Width: width, Height: height}, &vp)
	return vp, err
}

// Pointer forwards a pointer event to the daemon's interaction controller.
func (c *Client) Pointer(ev interaction.PointerEvent) (interaction.Outcome, error) {
	var out interaction.Outcome
	err := c.call(CommandPointer, ev, &out)
	return out, err
}

// Scan runs an immediate correction pass.
func (c *Client) Scan() (monitor.Result, error) {
	var res monitor.Result
	err := c.call(CommandScan, nil, &res)
	return res, err
}

func (c *Client) SaveLayout(name string) (LayoutSaveData, error) {
	var data LayoutSaveData
	err := c.call(CommandLayoutSave, LayoutPayload{Name: name}, &data)
	return data, err
}

func (c *Client) LoadLayout(name string, replace bool) (layoutstore.HydrateResult, error) {
	var res layoutstore.HydrateResult
	err := c.call(CommandLayoutLoad, LayoutPayload{Name: name, Replace: replace}, &res)
	return res, err
}

func (c *Client) ListLayouts() ([]string, error) {
	var data LayoutsData
	err := c.call(CommandLayoutList, nil, &data)
	return data.Layouts, err
}

func (c *Client) DeleteLayout(name string) error {
	return c.call(CommandLayoutDelete, LayoutPayload{Name: name}, nil)
}

package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"

	CommandCreate   CommandType = "CREATE"
	CommandDestroy  CommandType = "DESTROY"
	CommandGet      CommandType = "GET"
	CommandList     CommandType = "LIST"
	CommandMove     CommandType = "MOVE"
	CommandResize   CommandType = "RESIZE"
	CommandFront    CommandType = "FRONT"
	CommandMinimize CommandType = "MINIMIZE"
	CommandRestore  CommandType = "RESTORE"

	CommandViewSave    CommandType = "VIEW_SAVE"
	CommandViewRestore CommandType = "VIEW_RESTORE"
	CommandViewList    CommandType = "VIEW_LIST"

	CommandViewport CommandType = "VIEWPORT"
	CommandPointer  CommandType = "POINTER"
	CommandScan     CommandType = "SCAN"

	CommandLayoutSave   CommandType = "LAYOUT_SAVE"
	CommandLayoutLoad   CommandType = "LAYOUT_LOAD"
	CommandLayoutList   CommandType = "LAYOUT_LIST"
	CommandLayoutDelete CommandType = "LAYOUT_DELETE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WindowPayload addresses a single window.
type WindowPayload struct {
	ID int `json:"id"`
}

type MovePayload struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

type ResizePayload struct {
	ID     int `json:"id"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type DestroyData struct {
	Destroyed bool `json:"destroyed"`
}

type ViewPayload struct {
	Key string `json:"key"`
}

// ViewData reports the result of VIEW_SAVE and VIEW_RESTORE. Found is false
// when restoring a view that was never saved.
type ViewData struct {
	Key     string `json:"key"`
	Windows int    `json:"windows,omitempty"`
	Applied int    `json:"applied,omitempty"`
	Found   bool   `json:"found"`
}

type ViewportPayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type LayoutPayload struct {
	Name    string `json:"name"`
	Replace bool   `json:"replace,omitempty"`
}

type LayoutSaveData struct {
	Name    string `json:"name"`
	Windows int    `json:"windows"`
}

type LayoutsData struct {
	Layouts []string `json:"layouts"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

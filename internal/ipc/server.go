package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/interaction"
	"github.com/1broseidon/canvaslist/internal/runtimepath"
	"github.com/1broseidon/canvaslist/internal/window"
)

const storeTimeout = 10 * time.Second

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	svc          *daemon.Service
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(svc *daemon.Service) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, svc), nil
}

// NewServerAt creates a new IPC server listening on socketPath.
func NewServerAt(socketPath string, svc *daemon.Service) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		svc:        svc,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return ok(s.svc.Status())
	case CommandCreate:
		return s.handleCreate(req.Payload)
	case CommandDestroy:
		return s.handleDestroy(req.Payload)
	case CommandGet:
		return s.handleWindow(req.Payload, s.svc.Get)
	case CommandList:
		return ok(s.svc.List())
	case CommandMove:
		return s.handleMove(req.Payload)
	case CommandResize:
		return s.handleResize(req.Payload)
	case CommandFront:
		return s.handleWindow(req.Payload, s.svc.Front)
	case CommandMinimize:
		return s.handleWindow(req.Payload, s.svc.Minimize)
	case CommandRestore:
		return s.handleWindow(req.Payload, s.svc.Restore)
	case CommandViewSave:
		return s.handleViewSave(req.Payload)
	case CommandViewRestore:
		return s.handleViewRestore(req.Payload)
	case CommandViewList:
		return ok(s.svc.ListViews())
	case CommandViewport:
		return s.handleViewport(req.Payload)
	case CommandPointer:
		return s.handlePointer(req.Payload)
	case CommandScan:
		return ok(s.svc.Scan())
	case CommandLayoutSave:
		return s.handleLayoutSave(req.Payload)
	case CommandLayoutLoad:
		return s.handleLayoutLoad(req.Payload)
	case CommandLayoutList:
		return s.handleLayoutList()
	case CommandLayoutDelete:
		return s.handleLayoutDelete(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func ok(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func decode(payload json.RawMessage, v interface{}, what string) *Response {
	if len(payload) == 0 {
		return NewErrorResponse(fmt.Sprintf("Missing %s payload", what))
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid %s payload: %v", what, err))
	}
	return nil
}

func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")
	if err := s.svc.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	log.Println("IPC: Config reloaded successfully")
	return ok(nil)
}

func (s *Server) handleCreate(payload json.RawMessage) *Response {
	var req daemon.CreateRequest
	if resp := decode(payload, &req, "create"); resp != nil {
		return resp
	}
	rec, err := s.svc.Create(req)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(rec)
}

func (s *Server) handleDestroy(payload json.RawMessage) *Response {
	var req WindowPayload
	if resp := decode(payload, &req, "destroy"); resp != nil {
		return resp
	}
	return ok(DestroyData{Destroyed: s.svc.Destroy(req.ID)})
}

// handleWindow serves the commands that take only a window id.
func (s *Server) handleWindow(payload json.RawMessage, fn func(int) (window.Record, error)) *Response {
	var req WindowPayload
	if resp := decode(payload, &req, "window"); resp != nil {
		return resp
	}
	rec, err := fn(req.ID)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(rec)
}

func (s *Server) handleMove(payload json.RawMessage) *Response {
	var req MovePayload
	if resp := decode(payload, &req, "move"); resp != nil {
		return resp
	}
	rec, err := s.svc.Move(req.ID, req.X, req.Y)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(rec)
}

func (s *Server) handleResize(payload json.RawMessage) *Response {
	var req ResizePayload
	if resp := decode(payload, &req, "resize"); resp != nil {
		return resp
	}
	rec, err := s.svc.Resize(req.ID, req.Width, req.Height)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(rec)
}

func (s *Server) handleViewSave(payload json.RawMessage) *Response {
	var req ViewPayload
	if resp := decode(payload, &req, "view"); resp != nil {
		return resp
	}
	key, n, err := s.svc.SaveView(req.Key)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(ViewData{Key: string(key), Windows: n, Found: true})
}

func (s *Server) handleViewRestore(payload json.RawMessage) *Response {
	var req ViewPayload
	if resp := decode(payload, &req, "view"); resp != nil {
		return resp
	}
	applied, found, err := s.svc.RestoreView(req.Key)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(ViewData{Key: req.Key, Applied: applied, Found: found})
}

func (s *Server) handleViewport(payload json.RawMessage) *Response {
	var req ViewportPayload
	if resp := decode(payload, &req, "viewport"); resp != nil {
		return resp
	}
	vp := geometry.Viewport{Width: req.Width, Height: req.Height}
	if err := s.svc.SetViewport(vp); err != nil {
		return NewErrorResponse(err.Error())
	}
	log.Printf("IPC: Viewport set to %s", vp)
	return ok(vp)
}

func (s *Server) handlePointer(payload json.RawMessage) *Response {
	var ev interaction.PointerEvent
	if resp := decode(payload, &ev, "pointer"); resp != nil {
		return resp
	}
	out, err := s.svc.Pointer(ev)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(out)
}

func (s *Server) handleLayoutSave(payload json.RawMessage) *Response {
	var req LayoutPayload
	if resp := decode(payload, &req, "layout"); resp != nil {
		return resp
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	n, err := s.svc.SaveLayout(ctx, req.Name)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save layout: %v", err))
	}
	return ok(LayoutSaveData{Name: req.Name, Windows: n})
}

func (s *Server) handleLayoutLoad(payload json.RawMessage) *Response {
	var req LayoutPayload
	if resp := decode(payload, &req, "layout"); resp != nil {
		return resp
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	res, err := s.svc.LoadLayout(ctx, req.Name, req.Replace)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to load layout: %v", err))
	}
	return ok(res)
}

func (s *Server) handleLayoutList() *Response {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	names, err := s.svc.ListLayouts(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to list layouts: %v", err))
	}
	if names == nil {
		names = []string{}
	}
	return ok(LayoutsData{Layouts: names})
}

func (s *Server) handleLayoutDelete(payload json.RawMessage) *Response {
	var req LayoutPayload
	if resp := decode(payload, &req, "layout"); resp != nil {
		return resp
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.svc.DeleteLayout(ctx, req.Name); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to delete layout: %v", err))
	}
	return ok(nil)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}

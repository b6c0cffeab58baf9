// Package httpapi exposes the daemon over HTTP for browser front ends.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/interaction"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/window"
)

// Server serves the JSON API.
type Server struct {
	svc    *daemon.Service
	logger *slog.Logger
	router *chi.Mux
	http   *http.Server
}

// New builds the router. Call ListenAndServe to start it.
func New(svc *daemon.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	s.RegisterHTTP(r)
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// RegisterHTTP mounts every route on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/api/status", s.handleStatus)

	r.Route("/api/windows", func(r chi.Router) {
		r.Get("/", s.handleListWindows)
		r.Post("/", s.handleCreateWindow)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetWindow)
			r.Delete("/", s.handleDestroyWindow)
			r.Post("/move", s.handleMove)
			r.Post("/resize", s.handleResize)
			r.Post("/front", s.windowAction(s.svc.Front))
			r.Post("/minimize", s.windowAction(s.svc.Minimize))
			r.Post("/restore", s.windowAction(s.svc.Restore))
		})
	})

	r.Get("/api/viewport", s.handleGetViewport)
	r.Put("/api/viewport", s.handleSetViewport)

	r.Get("/api/views", s.handleListViews)
	r.Post("/api/views/save", s.handleSaveView)
	r.Post("/api/views/restore", s.handleRestoreView)

	r.Post("/api/pointer", s.handlePointer)
	r.Post("/api/scan", s.handleScan)

	r.Route("/api/layouts", func(r chi.Router) {
		r.Get("/", s.handleListLayouts)
		r.Post("/{name}", s.handleSaveLayout)
		r.Post("/{name}/load", s.handleLoadLayout)
		r.Delete("/{name}", s.handleDeleteLayout)
	})

	r.Get("/api/events", s.handleEvents)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.logger.Info("http api listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, daemon.ErrWindowNotFound), errors.Is(err, interaction.ErrUnknownWindow), errors.Is(err, layoutstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, window.ErrDuplicateID), errors.Is(err, interaction.ErrSessionActive):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func windowID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, errors.New("invalid window id")
	}
	return id, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	recs := s.svc.List()
	if recs == nil {
		recs = []window.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCreateWindow(w http.ResponseWriter, r *http.Request) {
	var req daemon.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.svc.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	s.windowAction(s.svc.Get)(w, r)
}

func (s *Server) handleDestroyWindow(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.svc.Destroy(id) {
		http.Error(w, "window not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// windowAction adapts an id-only service call into a handler.
func (s *Server) windowAction(fn func(int) (window.Record, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := windowID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec, err := fn(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var p geometry.Point
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.svc.Move(id, p.X, p.Y)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	id, err := windowID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var sz geometry.Size
	if err := json.NewDecoder(r.Body).Decode(&sz); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	rec, err := s.svc.Resize(id, sz.Width, sz.Height)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetViewport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Registry().Viewport())
}

func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	var vp geometry.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.svc.SetViewport(vp); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, vp)
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.ListViews())
}

// viewRequest carries a view key in the body; item keys contain a slash.
type viewRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleSaveView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	key, n, err := s.svc.SaveView(req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"key": key, "windows": n})
}

func (s *Server) handleRestoreView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	applied, found, err := s.svc.RestoreView(req.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"key": req.Key, "applied": applied, "found": found})
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var ev interaction.PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	out, err := s.svc.Pointer(ev)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Scan())
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	names, err := s.svc.ListLayouts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	n, err := s.svc.SaveLayout(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"name": name, "windows": n})
}

func (s *Server) handleLoadLayout(w http.ResponseWriter, r *http.Request) {
	replace := r.URL.Query().Get("replace") == "true"
	res, err := s.svc.LoadLayout(r.Context(), chi.URLParam(r, "name"), replace)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteLayout(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

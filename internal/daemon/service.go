package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/canvaslist/internal/config"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/interaction"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/monitor"
	"github.com/1broseidon/canvaslist/internal/snapshot"
	"github.com/1broseidon/canvaslist/internal/window"
)

// ErrWindowNotFound is returned by Service operations on unknown ids. The
// registry itself treats these as no-ops; transports report them.
var ErrWindowNotFound = errors.New("window not found")

// Status is the daemon summary reported by every transport.
type Status struct {
	DaemonRunning bool              `json:"daemon_running"`
	WindowCount   int               `json:"window_count"`
	Minimized     int               `json:"minimized"`
	Viewport      geometry.Viewport `json:"viewport"`
	Views         int               `json:"views"`
	Session       string            `json:"session"`
	LastScan      monitor.Result    `json:"last_scan"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	LayoutBackend string            `json:"layout_backend"`
}

// CreateRequest describes a window to create. Nil fields use defaults.
type CreateRequest struct {
	ID     int    `json:"id"`
	Kind   string `json:"kind,omitempty"`
	Title  string `json:"title,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
	ZOrder *int   `json:"z_order,omitempty"`
}

// ViewInfo summarizes one saved view.
type ViewInfo struct {
	Key     snapshot.ViewKey `json:"key"`
	Windows int              `json:"windows"`
}

// Service bundles the window subsystem behind one API shared by the IPC,
// HTTP and MCP transports.
type Service struct {
	cfgMu      sync.RWMutex
	cfg        *config.Config
	registry   *window.Registry
	views      *snapshot.Store
	monitor    *monitor.Monitor
	controller *interaction.Controller
	layouts    layoutstore.Store
	logger     *slog.Logger
	startTime  time.Time
	loadConfig func() (*config.Config, error)
}

// Options wires a Service. Layouts may be nil when persistence is disabled.
type Options struct {
	Config     *config.Config
	Layouts    layoutstore.Store
	Logger     *slog.Logger
	LoadConfig func() (*config.Config, error)
}

// NewService builds the registry, snapshot store, monitor and controller
// from cfg.
func NewService(opts Options) *Service {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loadConfig := opts.LoadConfig
	if loadConfig == nil {
		loadConfig = config.Load
	}

	reg := window.NewRegistry(window.Config{
		Constraints: cfg.Constraints(),
		Planner:     cfg.Planner(),
		Viewport:    cfg.InitialViewport(),
		Logger:      logger,
	})

	return &Service{
		cfg:      cfg,
		registry: reg,
		views:    snapshot.NewStore(),
		monitor: monitor.New(monitor.Config{
			Interval: cfg.MonitorInterval(),
			Debounce: cfg.MonitorDebounce(),
			Logger:   logger,
		}, reg),
		controller: interaction.NewController(reg),
		layouts:    opts.Layouts,
		logger:     logger,
		startTime:  time.Now(),
		loadConfig: loadConfig,
	}
}

func (s *Service) Registry() *window.Registry { return s.registry }
func (s *Service) Views() *snapshot.Store { return s.views }
func (s *Service) Monitor() *monitor.Monitor { return s.monitor }
func (s *Service) Controller() *interaction.Controller { return s.controller }
func (s *Service) Subscribe(fn func(window.Event)) func() { return s.registry.Subscribe(fn) }

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// Status reports a summary of the daemon state.
func (s *Service) Status() Status {
	recs := s.registry.ListAll()
	minimized := 0
	for _, rec := range recs {
		if rec.Minimized {
			minimized++
		}
	}
	last, _ := s.monitor.Last()
	backend := ""
	if s.layouts != nil {
		backend = s.Config().LayoutStore.Backend
	}
	return Status{
		DaemonRunning: true,
		WindowCount:   len(recs),
		Minimized:     minimized,
		Viewport:      s.registry.Viewport(),
		Views:         len(s.views.Keys()),
		Session:       s.controller.State().Phase.String(),
		LastScan:      last,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		LayoutBackend: backend,
	}
}

// Create registers a new window.
func (s *Service) Create(req CreateRequest) (window.Record, error) {
	kind, ok := window.ParseKind(req.Kind)
	if !ok {
		return window.Record{}, fmt.Errorf("unknown window kind %q", req.Kind)
	}
	opts := window.Options{Title: req.Title, ZOrder: req.ZOrder}
	if req.X != nil || req.Y != nil {
		p := s.registry.Planner().Anchor()
		if req.X != nil {
			p.X = *req.X
		}
		if req.Y != nil {
			p.Y = *req.Y
		}
		opts.Position = &p
	}
	if req.Width != nil || req.Height != nil {
		sz := s.Config().Planner().DefaultSize
		if req.Width != nil {
			sz.Width = *req.Width
		}
		if req.Height != nil {
			sz.Height = *req.Height
		}
		opts.Size = &sz
	}
	return s.registry.Create(req.ID, kind, opts)
}

// Get returns one window.
func (s *Service) Get(id int) (window.Record, error) {
	rec, ok := s.registry.Get(id)
	if !ok {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return rec, nil
}

// List returns every window in z order.
func (s *Service) List() []window.Record {
	return s.registry.ListAll()
}

// Move moves a window and returns the stored record.
func (s *Service) Move(id, x, y int) (window.Record, error) {
	if _, ok := s.registry.Move(id, x, y); !ok {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return s.Get(id)
}

// Resize resizes a window and returns the stored record.
func (s *Service) Resize(id, width, height int) (window.Record, error) {
	if _, ok := s.registry.Resize(id, width, height); !ok {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return s.Get(id)
}

// Front brings a window to the top of the stack.
func (s *Service) Front(id int) (window.Record, error) {
	if _, ok := s.registry.BringToFront(id); !ok {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return s.Get(id)
}

// Minimize hides a window. A drag or resize on it ends first.
func (s *Service) Minimize(id int) (window.Record, error) {
	s.controller.CancelWindow(id)
	if !s.registry.Minimize(id) {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return s.Get(id)
}

// Restore shows a minimized window again.
func (s *Service) Restore(id int) (window.Record, error) {
	rec, ok := s.registry.Restore(id)
	if !ok {
		return window.Record{}, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return rec, nil
}

// Destroy removes a window. It reports whether the window existed.
func (s *Service) Destroy(id int) bool {
	s.controller.CancelWindow(id)
	return s.registry.Destroy(id)
}

// SaveView snapshots the current arrangement under key.
func (s *Service) SaveView(key string) (snapshot.ViewKey, int, error) {
	vk, _, _, err := snapshot.ParseKey(key)
	if err != nil {
		return "", 0, err
	}
	n := s.views.Save(vk, s.registry)
	s.logger.Debug("view saved", "key", vk, "windows", n)
	return vk, n, nil
}

// RestoreView reapplies the snapshot for key. found is false for a view
// that was never saved.
func (s *Service) RestoreView(key string) (applied int, found bool, err error) {
	vk, _, _, err := snapshot.ParseKey(key)
	if err != nil {
		return 0, false, err
	}
	applied, found = s.views.Restore(vk, s.registry)
	s.logger.Debug("view restored", "key", vk, "applied", applied, "found", found)
	return applied, found, nil
}

// ListViews returns every saved view.
func (s *Service) ListViews() []ViewInfo {
	keys := s.views.Keys()
	out := make([]ViewInfo, 0, len(keys))
	for _, k := range keys {
		entries, _ := s.views.Get(k)
		out = append(out, ViewInfo{Key: k, Windows: len(entries)})
	}
	return out
}

// SetViewport reports a new viewport size and schedules a correction pass.
func (s *Service) SetViewport(vp geometry.Viewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return fmt.Errorf("viewport must be positive, got %s", vp)
	}
	s.monitor.ViewportChanged(vp)
	return nil
}

// Pointer feeds one pointer event to the interaction controller.
func (s *Service) Pointer(ev interaction.PointerEvent) (interaction.Outcome, error) {
	return s.controller.HandleEvent(ev)
}

// Scan runs an immediate correction pass.
func (s *Service) Scan() monitor.Result {
	return s.monitor.ScanNow()
}

var errNoLayoutStore = errors.New("layout persistence is disabled")

// SaveLayout persists the current arrangement under name.
func (s *Service) SaveLayout(ctx context.Context, name string) (int, error) {
	if s.layouts == nil {
		return 0, errNoLayoutStore
	}
	l := layoutstore.Capture(s.registry)
	if err := s.layouts.Save(ctx, name, l); err != nil {
		return 0, err
	}
	return len(l.Windows), nil
}

// LoadLayout hydrates the registry from a saved layout. With replace, windows
// already registered under the same ids are recreated from the layout.
func (s *Service) LoadLayout(ctx context.Context, name string, replace bool) (layoutstore.HydrateResult, error) {
	if s.layouts == nil {
		return layoutstore.HydrateResult{}, errNoLayoutStore
	}
	l, err := s.layouts.Load(ctx, name)
	if err != nil {
		return layoutstore.HydrateResult{}, err
	}
	return layoutstore.Hydrate(s.registry, l, replace)
}

// ListLayouts returns saved layout names.
func (s *Service) ListLayouts(ctx context.Context) ([]string, error) {
	if s.layouts == nil {
		return nil, errNoLayoutStore
	}
	return s.layouts.List(ctx)
}

// DeleteLayout removes a saved layout.
func (s *Service) DeleteLayout(ctx context.Context, name string) error {
	if s.layouts == nil {
		return errNoLayoutStore
	}
	return s.layouts.Delete(ctx, name)
}

// Reload re-reads the configuration and applies the geometry rules and the
// monitor timing. Existing windows are re-validated against the new rules.
func (s *Service) Reload() error {
	newCfg, err := s.loadConfig()
	if err != nil {
		return err
	}
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	adjusted := s.registry.Reconfigure(newCfg.Constraints(), newCfg.Planner())
	s.monitor.SetTiming(newCfg.MonitorInterval(), newCfg.MonitorDebounce())
	res := s.monitor.ScanNow()
	s.logger.Info("config reloaded", "adjusted", adjusted, "corrected", res.Corrected)
	return nil
}

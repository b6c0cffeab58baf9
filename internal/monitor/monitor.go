package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

// Registry is the subset of window.Registry the monitor needs.
type Registry interface {
	ListAll() []window.Record
	CorrectIfIdle(id int) (from, to geometry.Point, c window.Correction)
	Viewport() geometry.Viewport
	SetViewport(vp geometry.Viewport)
}

// Config holds configuration for the monitor.
type Config struct {
	Interval time.Duration
	Debounce time.Duration
	Logger   *slog.Logger
}

// Result summarizes one scan.
type Result struct {
	Checked   int `json:"checked"`
	Skipped   int `json:"skipped"`
	Corrected int `json:"corrected"`
}

// Monitor periodically rescans every window and moves unreachable ones back
// into the reachable region. Viewport changes trigger a debounced rescan.
type Monitor struct {
	reg    Registry
	logger *slog.Logger
	resetC chan struct{}

	mu       sync.Mutex
	interval time.Duration
	debounce time.Duration
	timer    *time.Timer
	timerID  uint64
	last     Result
	lastScan time.Time
}

// New creates a monitor with the given configuration.
func New(cfg Config, reg Registry) *Monitor {
	interval, debounce := normalizeTiming(cfg.Interval, cfg.Debounce)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		interval: interval,
		debounce: debounce,
		reg:      reg,
		logger:   logger,
		resetC:   make(chan struct{}, 1),
	}
}

func normalizeTiming(interval, debounce time.Duration) (time.Duration, time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if debounce < 0 {
		debounce = 0
	}
	return interval, debounce
}

// SetTiming changes the scan interval and viewport debounce. A running loop
// picks up the new interval on its next select.
func (m *Monitor) SetTiming(interval, debounce time.Duration) {
	interval, debounce = normalizeTiming(interval, debounce)

	m.mu.Lock()
	changed := interval != m.interval
	m.interval = interval
	m.debounce = debounce
	m.mu.Unlock()

	if !changed {
		return
	}
	select {
	case m.resetC <- struct{}{}:
	default:
	}
}

// Timing returns the current scan interval and debounce.
func (m *Monitor) Timing() (interval, debounce time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval, m.debounce
}

// Run starts the scan loop. Blocks until context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	interval, _ := m.Timing()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("position monitor started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			m.stopTimer()
			m.logger.Info("position monitor stopped")
			return
		case <-m.resetC:
			interval, _ := m.Timing()
			ticker.Reset(interval)
			m.logger.Info("position monitor interval changed", "interval", interval)
		case <-ticker.C:
			m.scan()
		}
	}
}

// ScanNow triggers an immediate scan and returns its result.
func (m *Monitor) ScanNow() Result {
	return m.scan()
}

// ViewportChanged applies vp to the registry right away and schedules a scan
// once the viewport has been stable for the debounce period. A zero debounce
// scans synchronously.
func (m *Monitor) ViewportChanged(vp geometry.Viewport) {
	m.reg.SetViewport(vp)

	m.mu.Lock()
	debounce := m.debounce
	if debounce == 0 {
		m.mu.Unlock()
		m.scan()
		return
	}
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timerID++
	id := m.timerID
	m.timer = time.AfterFunc(debounce, func() {
		m.mu.Lock()
		if m.timerID != id {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		m.mu.Unlock()
		m.scan()
	})
}

// Last returns the result and time of the most recent scan.
func (m *Monitor) Last() (Result, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.lastScan
}

func (m *Monitor) stopTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerID++
}

// scan performs a single correction pass.
func (m *Monitor) scan() (res Result) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			m.logger.Error("position monitor panic recovered", "error", err)
		}
		m.mu.Lock()
		m.last = res
		m.lastScan = time.Now()
		m.mu.Unlock()
	}()

	vp := m.reg.Viewport()

	for _, rec := range m.reg.ListAll() {
		from, to, c := m.reg.CorrectIfIdle(rec.ID)
		switch c {
		case window.CorrectionSkipped:
			res.Skipped++
		case window.CorrectionNone:
			res.Checked++
		case window.CorrectionApplied:
			res.Checked++
			res.Corrected++
			m.logger.Debug("position monitor corrected window",
				"window_id", rec.ID,
				"from_x", from.X, "from_y", from.Y,
				"to_x", to.X, "to_y", to.Y)
		}
	}

	if res.Corrected > 0 {
		m.logger.Info("position monitor corrected windows",
			"corrected", res.Corrected, "checked", res.Checked, "viewport", vp.String())
	}
	return res
}

package window

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

// DefaultViewport is used until a viewport source reports the real size.
var DefaultViewport = geometry.Viewport{Width: 1920, Height: 1080}

// Config holds the registry's geometry rules.
type Config struct {
	Constraints geometry.Constraints
	Planner     geometry.Planner
	Viewport    geometry.Viewport
	Logger      *slog.Logger
}

// Registry owns every window record and the shared z-order counter. All
// exported methods are serialized; subscribers run after the lock is released.
type Registry struct {
	mu          sync.Mutex
	validator   geometry.Validator
	planner     geometry.Planner
	viewport    geometry.Viewport
	records     map[int]*Record
	interacting map[int]bool
	nextZ       int
	logger      *slog.Logger
	now         func() time.Time

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewRegistry creates an empty registry. Zero-valued config fields fall back
// to the package defaults.
func NewRegistry(cfg Config) *Registry {
	constraints := cfg.Constraints
	if constraints == (geometry.Constraints{}) {
		constraints = geometry.DefaultConstraints()
	}
	planner := cfg.Planner
	if planner.Attempts == 0 && planner.Step == 0 {
		planner = geometry.DefaultPlanner(constraints.HeaderHeight)
	}
	vp := cfg.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = DefaultViewport
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		validator:   geometry.NewValidator(constraints),
		planner:     planner,
		viewport:    vp,
		records:     make(map[int]*Record),
		interacting: make(map[int]bool),
		nextZ:       1,
		logger:      logger,
		now:         time.Now,
		subs:        make(map[int]func(Event)),
	}
}

// Validator returns the validator every mutation goes through.
func (r *Registry) Validator() geometry.Validator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.validator
}

// Planner returns the placement planner, which carries the configured anchor
// and default size.
func (r *Registry) Planner() geometry.Planner {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.planner
}

// Reconfigure swaps the geometry rules and re-validates every visible record
// against them, size floors included. Minimized records are left alone until
// Restore validates them. It returns the number of records changed.
func (r *Registry) Reconfigure(c geometry.Constraints, p geometry.Planner) int {
	r.mu.Lock()
	r.validator = geometry.NewValidator(c)
	r.planner = p

	var events []Event
	changed := 0
	for _, rec := range r.records {
		if rec.Minimized {
			continue
		}
		before := rec.Rect()
		after := r.validator.ValidateRect(before, r.viewport)
		if after == before {
			continue
		}
		rec.Position = after.Origin()
		rec.Size = after.Dimensions()
		changed++
		if after.Dimensions() != before.Dimensions() {
			events = append(events, Event{Type: EventResized, Record: *rec})
		}
		if after.Origin() != before.Origin() {
			events = append(events, Event{Type: EventMoved, Record: *rec})
		}
	}
	r.mu.Unlock()

	for _, ev := range events {
		r.emit(ev)
	}
	return changed
}

// Correction reports what CorrectIfIdle did to one window.
type Correction int

const (
	// CorrectionNone means the window was already reachable.
	CorrectionNone Correction = iota
	// CorrectionApplied means the window was moved back into reach.
	CorrectionApplied
	// CorrectionSkipped means the window is minimized or under interaction.
	CorrectionSkipped
	// CorrectionMissing means the window no longer exists.
	CorrectionMissing
)

// CorrectIfIdle moves id back into the reachable region unless it is
// minimized or being dragged or resized. The check and the move happen under
// one lock, so a session that starts concurrently is never overridden.
func (r *Registry) CorrectIfIdle(id int) (from, to geometry.Point, c Correction) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return geometry.Point{}, geometry.Point{}, CorrectionMissing
	}
	from = rec.Position
	if rec.Minimized || r.interacting[id] {
		r.mu.Unlock()
		return from, from, CorrectionSkipped
	}
	if r.validator.IsReachable(rec.Position, r.viewport) {
		r.mu.Unlock()
		return from, from, CorrectionNone
	}
	rec.Position = r.validator.Validate(rec.Position, rec.Size, r.viewport)
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventMoved, Record: out})
	return from, out.Position, CorrectionApplied
}

// Create registers a new window. The position is planned when absent and
// always validated before it is stored.
func (r *Registry) Create(id int, kind Kind, opts Options) (Record, error) {
	r.mu.Lock()
	if _, exists := r.records[id]; exists {
		r.mu.Unlock()
		return Record{}, fmt.Errorf("create window %d: %w", id, ErrDuplicateID)
	}

	size := r.planner.DefaultSize
	if opts.Size != nil {
		size = *opts.Size
	}
	size = r.validator.ClampSize(size)

	var pos geometry.Point
	if opts.Position != nil {
		pos = *opts.Position
	} else {
		pos = r.planner.Plan(r.visibleRectsLocked(), r.viewport)
	}
	pos = r.validator.Validate(pos, size, r.viewport)

	var z int
	if opts.ZOrder != nil {
		z = *opts.ZOrder
		r.observeZLocked(z)
	} else {
		z = r.allocZLocked()
	}

	rec := &Record{
		ID:        id,
		Kind:      kind,
		Title:     opts.Title,
		Position:  pos,
		Size:      size,
		ZOrder:    z,
		CreatedAt: r.now(),
	}
	r.records[id] = rec
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventCreated, Record: out})
	return out, nil
}

// Destroy removes a window. Destroying an unknown id returns false.
func (r *Registry) Destroy(id int) bool {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.records, id)
	delete(r.interacting, id)
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventDestroyed, Record: out})
	return true
}

// DestroyAll removes every window and returns how many were removed.
func (r *Registry) DestroyAll() int {
	r.mu.Lock()
	removed := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		removed = append(removed, *rec)
	}
	r.records = make(map[int]*Record)
	r.interacting = make(map[int]bool)
	r.mu.Unlock()

	sortRecords(removed)
	for _, rec := range removed {
		r.emit(Event{Type: EventDestroyed, Record: rec})
	}
	return len(removed)
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id int) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of registered windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Move validates (x, y) against the window's size and the current viewport
// and stores the result. The stored point is returned; callers must render
// it rather than the requested one.
func (r *Registry) Move(id, x, y int) (geometry.Point, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return geometry.Point{}, false
	}
	rec.Position = r.validator.Validate(geometry.Point{X: x, Y: y}, rec.Size, r.viewport)
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventMoved, Record: out})
	return out.Position, true
}

// Resize applies the size floors and stores the result. The origin is fixed.
func (r *Registry) Resize(id, width, height int) (geometry.Size, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return geometry.Size{}, false
	}
	rec.Size = r.validator.ClampSize(geometry.Size{Width: width, Height: height})
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventResized, Record: out})
	return out.Size, true
}

// BringToFront gives the window a z-order above every other window.
func (r *Registry) BringToFront(id int) (int, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return 0, false
	}
	rec.ZOrder = r.allocZLocked()
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventFronted, Record: out})
	return out.ZOrder, true
}

// Minimize hides the window. Its geometry is retained as is.
func (r *Registry) Minimize(id int) bool {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	rec.Minimized = true
	delete(r.interacting, id)
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventMinimized, Record: out})
	return true
}

// Restore re-validates the retained geometry against the current viewport,
// clears the minimized flag and fronts the window.
func (r *Registry) Restore(id int) (Record, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return Record{}, false
	}
	rect := r.validator.ValidateRect(rec.Rect(), r.viewport)
	rec.Position = rect.Origin()
	rec.Size = rect.Dimensions()
	rec.Minimized = false
	rec.ZOrder = r.allocZLocked()
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventRestored, Record: out})
	return out, true
}

// Place applies a full rectangle and z-order in one validated step.
func (r *Registry) Place(id int, rect geometry.Rect, z int) (Record, bool) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return Record{}, false
	}
	valid := r.validator.ValidateRect(rect, r.viewport)
	rec.Position = valid.Origin()
	rec.Size = valid.Dimensions()
	rec.ZOrder = z
	r.observeZLocked(z)
	out := *rec
	r.mu.Unlock()

	r.emit(Event{Type: EventMoved, Record: out})
	return out, true
}

// ListAll returns copies of every record ordered by z-order, then id.
func (r *Registry) ListAll() []Record {
	r.mu.Lock()
	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	r.mu.Unlock()

	sortRecords(out)
	return out
}

// SetViewport records the current viewport size. Windows are not moved here;
// the monitor corrects them.
func (r *Registry) SetViewport(vp geometry.Viewport) {
	r.mu.Lock()
	r.viewport = vp
	degenerate := r.validator.Degenerate(vp)
	r.mu.Unlock()

	if degenerate {
		r.logger.Warn("viewport smaller than visible minimums, windows pinned to origin",
			"viewport", vp.String())
	}
}

// Viewport returns the current viewport.
func (r *Registry) Viewport() geometry.Viewport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewport
}

// SetInteracting flags a window as being dragged or resized. Flagged windows
// are skipped by the monitor.
func (r *Registry) SetInteracting(id int, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false
	}
	if active {
		r.interacting[id] = true
	} else {
		delete(r.interacting, id)
	}
	return true
}

// Interacting reports whether the window is under active interaction.
func (r *Registry) Interacting(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interacting[id]
}

// Subscribe registers fn for every committed mutation. The returned function
// removes the subscription.
func (r *Registry) Subscribe(fn func(Event)) func() {
	r.subsMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subsMu.Unlock()

	return func() {
		r.subsMu.Lock()
		delete(r.subs, id)
		r.subsMu.Unlock()
	}
}

func (r *Registry) emit(ev Event) {
	r.subsMu.Lock()
	fns := make([]func(Event), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (r *Registry) allocZLocked() int {
	z := r.nextZ
	r.nextZ++
	return z
}

// observeZLocked keeps the counter above an externally supplied z-order.
func (r *Registry) observeZLocked(z int) {
	if z >= r.nextZ {
		r.nextZ = z + 1
	}
}

func (r *Registry) visibleRectsLocked() []geometry.Rect {
	rects := make([]geometry.Rect, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Minimized {
			continue
		}
		rects = append(rects, rec.Rect())
	}
	return rects
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ZOrder != recs[j].ZOrder {
			return recs[i].ZOrder < recs[j].ZOrder
		}
		return recs[i].ID < recs[j].ID
	})
}

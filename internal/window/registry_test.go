package window

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/1broseidon/canvaslist/internal/geometry"
)

func newTestRegistry() *Registry {
	return NewRegistry(Config{Viewport: geometry.Viewport{Width: 1920, Height: 1080}})
}

func TestCreate_PlansAndValidatesPosition(t *testing.T) {
	reg := newTestRegistry()

	rec, err := reg.Create(1, KindList, Options{Title: "groceries"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Position != (geometry.Point{X: 100, Y: 150}) {
		t.Fatalf("expected (100,150), got %v", rec.Position)
	}
	if rec.Size != (geometry.Size{Width: 350, Height: 400}) {
		t.Fatalf("expected default size 350x400, got %v", rec.Size)
	}
	if rec.Minimized {
		t.Fatalf("new window should not be minimized")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	reg := newTestRegistry()
	if _, err := reg.Create(7, KindList, Options{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := reg.Create(7, KindItem, Options{})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	rec, _ := reg.Get(7)
	if rec.Kind != KindList {
		t.Fatalf("duplicate create must not overwrite the record")
	}
}

func TestCreate_ExplicitGeometryIsValidated(t *testing.T) {
	reg := newTestRegistry()
	pos := geometry.Point{X: -20, Y: 40}
	size := geometry.Size{Width: 100, Height: 100}

	rec, err := reg.Create(3, KindItem, Options{Position: &pos, Size: &size})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Position != (geometry.Point{X: 0, Y: 150}) {
		t.Fatalf("expected (0,150), got %v", rec.Position)
	}
	if rec.Size != (geometry.Size{Width: 300, Height: 200}) {
		t.Fatalf("expected 300x200, got %v", rec.Size)
	}
}

func TestCreate_SuppliedZOrderBumpsCounter(t *testing.T) {
	reg := newTestRegistry()
	z := 40
	if _, err := reg.Create(1, KindList, Options{ZOrder: &z}); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, err := reg.Create(2, KindList, Options{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ZOrder <= 40 {
		t.Fatalf("expected z above 40, got %d", rec.ZOrder)
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{})
	reg.SetInteracting(1, true)

	if !reg.Destroy(1) {
		t.Fatalf("first destroy should report true")
	}
	if reg.Destroy(1) {
		t.Fatalf("second destroy should report false")
	}
	if _, ok := reg.Get(1); ok {
		t.Fatalf("destroyed window still present")
	}
	if reg.Interacting(1) {
		t.Fatalf("destroy should clear the interaction flag")
	}

	rec, err := reg.Create(1, KindItem, Options{})
	if err != nil {
		t.Fatalf("re-create after destroy: %v", err)
	}
	if rec.Kind != KindItem {
		t.Fatalf("re-created window should be a fresh record")
	}
}

func TestMissingIDIsNoOp(t *testing.T) {
	reg := newTestRegistry()

	if _, ok := reg.Move(99, 10, 10); ok {
		t.Fatalf("move of unknown id should report false")
	}
	if _, ok := reg.Resize(99, 10, 10); ok {
		t.Fatalf("resize of unknown id should report false")
	}
	if _, ok := reg.BringToFront(99); ok {
		t.Fatalf("front of unknown id should report false")
	}
	if reg.Minimize(99) {
		t.Fatalf("minimize of unknown id should report false")
	}
	if _, ok := reg.Restore(99); ok {
		t.Fatalf("restore of unknown id should report false")
	}
	if reg.Len() != 0 {
		t.Fatalf("no-op calls must not create records")
	}
}

func TestScenario_1920x1080(t *testing.T) {
	reg := newTestRegistry()

	a, err := reg.Create(1, KindList, Options{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Position != (geometry.Point{X: 100, Y: 150}) {
		t.Fatalf("create: expected (100,150), got %v", a.Position)
	}

	if got, _ := reg.Move(1, 5, 10); got != (geometry.Point{X: 5, Y: 150}) {
		t.Fatalf("move(5,10): expected (5,150), got %v", got)
	}
	if got, _ := reg.Move(1, -5, 10); got != (geometry.Point{X: 0, Y: 150}) {
		t.Fatalf("move(-5,10): expected (0,150), got %v", got)
	}
	if got, _ := reg.Resize(1, 10, 10); got != (geometry.Size{Width: 300, Height: 200}) {
		t.Fatalf("resize(10,10): expected 300x200, got %v", got)
	}

	reg.Move(1, 1700, 1000)
	before, _ := reg.Get(1)
	reg.Minimize(1)
	reg.SetViewport(geometry.Viewport{Width: 800, Height: 600})

	frozen, _ := reg.Get(1)
	if frozen.Position != before.Position || frozen.Size != before.Size {
		t.Fatalf("minimized geometry changed: %v -> %v", before.Rect(), frozen.Rect())
	}

	restored, ok := reg.Restore(1)
	if !ok {
		t.Fatalf("restore failed")
	}
	if restored.Position != (geometry.Point{X: 750, Y: 570}) {
		t.Fatalf("restore should re-validate against 800x600, got %v", restored.Position)
	}
	if restored.Minimized {
		t.Fatalf("restored window still minimized")
	}
}

func TestMinimizeRestore_Symmetry(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{})
	reg.Move(1, 400, 300)
	reg.Resize(1, 500, 450)
	before, _ := reg.Get(1)

	reg.Minimize(1)
	after, _ := reg.Restore(1)

	if after.Position != before.Position || after.Size != before.Size {
		t.Fatalf("geometry changed across minimize/restore: %v -> %v", before.Rect(), after.Rect())
	}
	if after.Minimized {
		t.Fatalf("expected minimized=false after restore")
	}
	if after.ZOrder <= before.ZOrder {
		t.Fatalf("restore should front the window: z %d -> %d", before.ZOrder, after.ZOrder)
	}
}

func TestBringToFront_Monotonic(t *testing.T) {
	reg := newTestRegistry()
	for id := 1; id <= 5; id++ {
		reg.Create(id, KindList, Options{})
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		id := rng.Intn(5) + 1
		z, ok := reg.BringToFront(id)
		if !ok {
			t.Fatalf("front %d failed", id)
		}
		for _, rec := range reg.ListAll() {
			if rec.ID != id && rec.ZOrder >= z {
				t.Fatalf("window %d has z %d, not below fronted %d (z %d)", rec.ID, rec.ZOrder, id, z)
			}
		}
	}
}

func TestInvariantHoldsUnderRandomMutations(t *testing.T) {
	reg := newTestRegistry()
	minY := reg.Validator().Constraints().MinY()
	for id := 1; id <= 4; id++ {
		reg.Create(id, KindList, Options{})
	}

	rng := rand.New(rand.NewSource(7))
	viewports := []geometry.Viewport{{Width: 1920, Height: 1080}, {Width: 800, Height: 600}, {Width: 1280, Height: 720}}

	for i := 0; i < 500; i++ {
		id := rng.Intn(4) + 1
		switch rng.Intn(5) {
		case 0:
			reg.Move(id, rng.Intn(4000)-2000, rng.Intn(4000)-2000)
		case 1:
			reg.Resize(id, rng.Intn(1000)-100, rng.Intn(1000)-100)
		case 2:
			reg.Minimize(id)
		case 3:
			reg.Restore(id)
		case 4:
			reg.SetViewport(viewports[rng.Intn(len(viewports))])
			reg.Restore(id)
		}

		for _, rec := range reg.ListAll() {
			if rec.Size.Width < 300 || rec.Size.Height < 200 {
				t.Fatalf("step %d: window %d below size floor: %v", i, rec.ID, rec.Size)
			}
			if !rec.Minimized && rec.Position.Y < minY {
				t.Fatalf("step %d: window %d above header: %v", i, rec.ID, rec.Position)
			}
		}
	}
}

func TestListAll_OrderedByZ(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{})
	reg.Create(2, KindList, Options{})
	reg.Create(3, KindItem, Options{})
	reg.BringToFront(1)

	got := reg.ListAll()
	want := []int{2, 3, 1}
	for i, rec := range got {
		if rec.ID != want[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, want[i], rec.ID)
		}
	}
}

func TestPlace_ValidatesAndKeepsZ(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{})

	rec, ok := reg.Place(1, geometry.Rect{X: 50, Y: 0, Width: 100, Height: 600}, 90)
	if !ok {
		t.Fatalf("place failed")
	}
	if rec.Rect() != (geometry.Rect{X: 50, Y: 150, Width: 300, Height: 600}) {
		t.Fatalf("unexpected placed rect %v", rec.Rect())
	}
	if rec.ZOrder != 90 {
		t.Fatalf("expected z 90, got %d", rec.ZOrder)
	}
	if z, _ := reg.BringToFront(1); z <= 90 {
		t.Fatalf("counter should advance past placed z, got %d", z)
	}
}

func TestSubscribe_ReceivesEventsOutsideLock(t *testing.T) {
	reg := newTestRegistry()

	var mu sync.Mutex
	var got []EventType
	unsubscribe := reg.Subscribe(func(ev Event) {
		// Reading back from inside the callback must not deadlock.
		reg.Get(ev.Record.ID)
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	})

	reg.Create(1, KindList, Options{})
	reg.Move(1, 200, 200)
	reg.Resize(1, 400, 400)
	reg.BringToFront(1)
	reg.Minimize(1)
	reg.Restore(1)
	reg.Destroy(1)
	unsubscribe()
	reg.Create(2, KindList, Options{})

	want := []EventType{EventCreated, EventMoved, EventResized, EventFronted, EventMinimized, EventRestored, EventDestroyed}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestKindText(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("item")); err != nil || k != KindItem {
		t.Fatalf("expected item, got %v (%v)", k, err)
	}
	if err := k.UnmarshalText([]byte("folder")); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestReconfigure_RevalidatesVisibleRecords(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{Size: &geometry.Size{Width: 310, Height: 210}})
	reg.Create(2, KindList, Options{Size: &geometry.Size{Width: 310, Height: 210}})
	reg.Minimize(2)

	var events []EventType
	unsub := reg.Subscribe(func(ev Event) { events = append(events, ev.Type) })
	defer unsub()

	c := geometry.DefaultConstraints()
	c.MinWidth, c.MinHeight = 400, 300
	c.HeaderHeight = 200
	if n := reg.Reconfigure(c, geometry.DefaultPlanner(c.HeaderHeight)); n != 1 {
		t.Fatalf("expected one record adjusted, got %d", n)
	}

	got, _ := reg.Get(1)
	if got.Size != (geometry.Size{Width: 400, Height: 300}) || got.Position.Y != 230 {
		t.Fatalf("expected 400x300 at y=230, got %v at %v", got.Size, got.Position)
	}
	if len(events) != 2 || events[0] != EventResized || events[1] != EventMoved {
		t.Fatalf("expected resized and moved events, got %v", events)
	}
	if hidden, _ := reg.Get(2); hidden.Size != (geometry.Size{Width: 310, Height: 210}) {
		t.Fatalf("minimized record should wait for restore, got %v", hidden.Size)
	}
}

func TestCorrectIfIdle(t *testing.T) {
	reg := newTestRegistry()
	reg.Create(1, KindList, Options{})
	reg.Create(2, KindList, Options{})
	reg.Move(1, 1800, 1000)
	reg.Move(2, 1800, 1000)
	reg.SetInteracting(2, true)
	reg.SetViewport(geometry.Viewport{Width: 800, Height: 600})

	tests := []struct {
		name string
		id   int
		want Correction
		to   geometry.Point
	}{
		{"unreachable idle window", 1, CorrectionApplied, geometry.Point{X: 750, Y: 570}},
		{"already corrected", 1, CorrectionNone, geometry.Point{X: 750, Y: 570}},
		{"under interaction", 2, CorrectionSkipped, geometry.Point{X: 1800, Y: 1000}},
		{"missing", 9, CorrectionMissing, geometry.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, to, c := reg.CorrectIfIdle(tt.id)
			if c != tt.want || to != tt.to {
				t.Fatalf("CorrectIfIdle(%d) = %v %v, want %v %v", tt.id, to, c, tt.to, tt.want)
			}
		})
	}
}

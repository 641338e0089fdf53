package segment

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// newTestStore returns a store bound to a sprite sheet under a temp dir so
// auto-save writes land in test-owned space.
func newTestStore(t *testing.T, maxFrames int) *Store {
	t.Helper()
	store := NewStore(nil, true)
	spritePath := filepath.Join(t.TempDir(), "hero.png")
	store.SetSpriteContext(spritePath, maxFrames)
	return store
}

func TestStore_AddAndGet(t *testing.T) {
	store := newTestStore(t, 10)

	rec, err := store.Add("Walk", 0, 3, nil, "walking cycle")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if rec.FrameCount() != 4 {
		t.Errorf("FrameCount() = %d, want 4", rec.FrameCount())
	}

	got, ok := store.Get("Walk")
	if !ok {
		t.Fatal("Get() did not find added segment")
	}
	if got.StartFrame != 0 || got.EndFrame != 3 {
		t.Errorf("Get() range = %d-%d, want 0-3", got.StartFrame, got.EndFrame)
	}
	if got.Description != "walking cycle" {
		t.Errorf("Get() description = %q", got.Description)
	}
	if got.ColorRGB != ColorForName("Walk") {
		t.Errorf("Get() color = %v, want derived %v", got.ColorRGB, ColorForName("Walk"))
	}
}

func TestStore_AddNameConflict(t *testing.T) {
	store := newTestStore(t, 10)

	if _, err := store.Add("Walk", 0, 3, nil, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err := store.Add("Walk", 4, 7, nil, "")
	if !errors.Is(err, ErrNameConflict) {
		t.Fatalf("Add() duplicate error = %v, want ErrNameConflict", err)
	}

	// Failed add leaves the store unchanged.
	if store.Count() != 1 {
		t.Errorf("Count() = %d after failed add, want 1", store.Count())
	}
	got, _ := store.Get("Walk")
	if got.StartFrame != 0 || got.EndFrame != 3 {
		t.Errorf("original segment mutated by failed add: %d-%d", got.StartFrame, got.EndFrame)
	}
}

func TestStore_AddOverlap(t *testing.T) {
	store := newTestStore(t, 10)

	if _, err := store.Add("Walk", 0, 3, nil, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	_, err := store.Add("Run", 3, 6, nil, "")
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("Add() overlapping error = %v, want ErrOverlap", err)
	}
	if _, err := store.Add("Run", 4, 6, nil, ""); err != nil {
		t.Errorf("Add() adjacent non-overlapping error = %v", err)
	}
}

func TestStore_AddInvalidRange(t *testing.T) {
	store := newTestStore(t, 10)

	tests := []struct {
		name       string
		segName    string
		start, end int
	}{
		{"empty name", "", 0, 3},
		{"end before start", "Walk", 5, 3},
		{"beyond ceiling", "Walk", 8, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Add(tt.segName, tt.start, tt.end, nil, ""); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Add() error = %v, want ErrInvalidRange", err)
			}
		})
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d after failed adds, want 0", store.Count())
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")

	if !store.Remove("Walk") {
		t.Error("Remove() = false for existing segment")
	}
	if store.Remove("Walk") {
		t.Error("Remove() = true for absent segment")
	}
	if store.Count() != 0 {
		t.Errorf("Count() = %d after remove, want 0", store.Count())
	}
}

func TestStore_Rename(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")
	store.Add("Run", 4, 7, nil, "")

	if err := store.Rename("Missing", "X"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename() absent error = %v, want ErrNotFound", err)
	}
	if err := store.Rename("Walk", "Run"); !errors.Is(err, ErrNameConflict) {
		t.Errorf("Rename() onto taken name error = %v, want ErrNameConflict", err)
	}

	if err := store.Rename("Walk", "Stride"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if _, ok := store.Get("Walk"); ok {
		t.Error("old name still present after rename")
	}
	got, ok := store.Get("Stride")
	if !ok {
		t.Fatal("new name absent after rename")
	}
	if got.StartFrame != 0 || got.EndFrame != 3 {
		t.Errorf("renamed segment range = %d-%d, want 0-3", got.StartFrame, got.EndFrame)
	}
}

func TestStore_ApplyUpdate_FailureLeavesRecordUnchanged(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")

	bad := 20
	if _, err := store.ApplyUpdate("Walk", Update{EndFrame: &bad}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("ApplyUpdate() error = %v, want ErrInvalidRange", err)
	}

	got, _ := store.Get("Walk")
	if got.EndFrame != 3 {
		t.Errorf("EndFrame = %d after rejected update, want 3", got.EndFrame)
	}
}

func TestStore_ApplyUpdate_Fields(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")

	desc := "updated"
	end := 5
	tags := []string{"hero", "loop"}
	rec, err := store.ApplyUpdate("Walk", Update{EndFrame: &end, Description: &desc, Tags: &tags})
	if err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	if rec.EndFrame != 5 || rec.Description != "updated" || len(rec.Tags) != 2 {
		t.Errorf("ApplyUpdate() result = %+v", rec)
	}
}

func TestStore_SetBounceMode(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")

	if err := store.SetBounceMode("Missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBounceMode() absent error = %v, want ErrNotFound", err)
	}
	if err := store.SetBounceMode("Walk", true); err != nil {
		t.Fatalf("SetBounceMode() error = %v", err)
	}
	got, _ := store.Get("Walk")
	if !got.BounceMode {
		t.Error("BounceMode not set")
	}
}

func TestStore_SetFrameHolds(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 4, 7, nil, "")

	if err := store.SetFrameHolds("Walk", map[int]int{0: 2, 3: 1}); err != nil {
		t.Fatalf("SetFrameHolds() error = %v", err)
	}

	// Out-of-range offset fails and leaves existing holds untouched.
	if err := store.SetFrameHolds("Walk", map[int]int{5: 1}); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SetFrameHolds() error = %v, want ErrOutOfRange", err)
	}
	got, _ := store.Get("Walk")
	if len(got.FrameHolds) != 2 || got.FrameHolds[0] != 2 {
		t.Errorf("FrameHolds = %v after rejected update, want {0:2 3:1}", got.FrameHolds)
	}

	if err := store.SetFrameHolds("Missing", map[int]int{0: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetFrameHolds() absent error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListOrder(t *testing.T) {
	store := newTestStore(t, 20)
	store.Add("C", 10, 12, nil, "")
	store.Add("A", 0, 2, nil, "")
	store.Add("B", 5, 7, nil, "")

	names := store.Names()
	want := []string{"C", "A", "B"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestStore_SegmentAt(t *testing.T) {
	store := newTestStore(t, 20)
	store.Add("Walk", 0, 5, nil, "")
	store.Add("Run", 6, 10, nil, "")

	rec, ok := store.SegmentAt(7)
	if !ok || rec.Name != "Run" {
		t.Errorf("SegmentAt(7) = %v, %v", rec.Name, ok)
	}
	if _, ok := store.SegmentAt(15); ok {
		t.Error("SegmentAt(15) found a segment in empty space")
	}

	// Overlaps introduced through update resolve to the first-inserted
	// segment.
	start, end := 3, 8
	if _, err := store.ApplyUpdate("Run", Update{StartFrame: &start, EndFrame: &end}); err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	rec, ok = store.SegmentAt(4)
	if !ok || rec.Name != "Walk" {
		t.Errorf("SegmentAt(4) = %q, want first-inserted %q", rec.Name, "Walk")
	}
}

func TestStore_Overlaps(t *testing.T) {
	store := newTestStore(t, 20)
	store.Add("Walk", 0, 5, nil, "")
	store.Add("Run", 6, 10, nil, "")

	if pairs := store.Overlaps(); len(pairs) != 0 {
		t.Errorf("Overlaps() = %v for disjoint segments", pairs)
	}

	start := 4
	if _, err := store.ApplyUpdate("Run", Update{StartFrame: &start}); err != nil {
		t.Fatalf("ApplyUpdate() error = %v", err)
	}
	pairs := store.Overlaps()
	if len(pairs) != 1 || pairs[0] != [2]string{"Walk", "Run"} {
		t.Errorf("Overlaps() = %v, want [[Walk Run]]", pairs)
	}
}

func TestStore_Events(t *testing.T) {
	store := newTestStore(t, 10)

	var events []Event
	store.Subscribe(func(ev Event) { events = append(events, ev) })

	store.Add("Walk", 0, 3, nil, "")
	store.SetBounceMode("Walk", true)
	store.Remove("Walk")
	store.Clear()

	want := []EventType{EventAdded, EventUpdated, EventRemoved, EventCleared}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, ev := range events {
		if ev.Type != want[i] {
			t.Errorf("event[%d].Type = %v, want %v", i, ev.Type, want[i])
		}
	}
	if events[0].Record.Name != "Walk" {
		t.Errorf("added event record = %q", events[0].Record.Name)
	}
}

func TestStore_SaveWithoutContext(t *testing.T) {
	store := NewStore(nil, false)
	if err := store.Save(); !errors.Is(err, ErrNoContext) {
		t.Errorf("Save() without context error = %v, want ErrNoContext", err)
	}
}

func TestStore_AutoSaveWritesSidecar(t *testing.T) {
	store := newTestStore(t, 10)
	store.Add("Walk", 0, 3, nil, "")

	sidecar, err := SidecarPath(store.SpritePath())
	if err != nil {
		t.Fatalf("SidecarPath() error = %v", err)
	}
	if _, err := os.Stat(sidecar); err != nil {
		t.Errorf("sidecar file missing after auto-saved mutation: %v", err)
	}
}

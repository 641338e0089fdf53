// Package selection tracks which frames of a sprite sheet's sequence are
// selected in the frame grid. It consumes discrete click and drag events with
// modifier flags and produces the frame set a user turns into an animation
// segment.
package selection

import "sort"

// Modifier bit flags carried by click events.
const (
	ModCtrl = 1 << iota
	ModAlt
	ModShift
)

// Model is the frame-selection state machine. It is not safe for concurrent
// use; the owning view delivers one event at a time.
type Model struct {
	selected         map[int]struct{}
	lastClicked      int
	hasLastClicked   bool
	dragActive       bool
	dragAnchor       int
	preDragSelection map[int]struct{}
}

// New returns an empty selection model.
func New() *Model {
	return &Model{selected: make(map[int]struct{})}
}

// Click handles a click on frameIndex with the given modifier bits.
//
// Plain click replaces the selection with the clicked frame. Ctrl or Alt
// toggles the clicked frame without touching the rest. Shift extends from
// the last clicked frame additively. Every click updates the range anchor.
func (m *Model) Click(frameIndex, modifiers int) {
	switch {
	case modifiers&(ModCtrl|ModAlt) != 0:
		m.toggle(frameIndex)
	case modifiers&ModShift != 0 && m.hasLastClicked:
		m.selectRange(m.lastClicked, frameIndex)
	default:
		m.Clear()
		m.selected[frameIndex] = struct{}{}
	}
	m.lastClicked = frameIndex
	m.hasLastClicked = true
}

// DragStart begins a drag from frameIndex. Dragging from an unselected frame
// restarts the selection with just that frame; dragging from a selected frame
// keeps the existing selection so the drag extends it.
func (m *Model) DragStart(frameIndex int) {
	if _, ok := m.selected[frameIndex]; !ok {
		m.Clear()
		m.selected[frameIndex] = struct{}{}
	}
	m.preDragSelection = copySet(m.selected)
	m.dragAnchor = frameIndex
	m.dragActive = true
}

// DragMove extends the active drag to frameIndex. The selection becomes the
// pre-drag selection plus the inclusive anchor..frameIndex range; frames
// selected before the drag are never dropped.
func (m *Model) DragMove(frameIndex int) {
	if !m.dragActive {
		return
	}
	m.selected = copySet(m.preDragSelection)
	lo, hi := m.dragAnchor, frameIndex
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		m.selected[i] = struct{}{}
	}
}

// DragEnd finalizes the active drag and returns the resulting selection.
func (m *Model) DragEnd() []int {
	m.dragActive = false
	m.preDragSelection = nil
	return m.Selected()
}

// DragActive reports whether a drag is in progress.
func (m *Model) DragActive() bool {
	return m.dragActive
}

// Clear empties the selection and all click/drag state.
func (m *Model) Clear() {
	m.selected = make(map[int]struct{})
	m.hasLastClicked = false
	m.dragActive = false
	m.preDragSelection = nil
}

// Selected returns the selected frame indices in ascending order.
func (m *Model) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for i := range m.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsSelected reports whether frameIndex is selected.
func (m *Model) IsSelected(frameIndex int) bool {
	_, ok := m.selected[frameIndex]
	return ok
}

// Count returns the number of selected frames.
func (m *Model) Count() int {
	return len(m.selected)
}

// LastClicked returns the range-extension anchor, if any.
func (m *Model) LastClicked() (int, bool) {
	return m.lastClicked, m.hasLastClicked
}

func (m *Model) toggle(frameIndex int) {
	if _, ok := m.selected[frameIndex]; ok {
		delete(m.selected, frameIndex)
	} else {
		m.selected[frameIndex] = struct{}{}
	}
}

func (m *Model) selectRange(a, b int) {
	if a > b {
		a, b = b, a
	}
	for i := a; i <= b; i++ {
		m.selected[i] = struct{}{}
	}
}

func copySet(s map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// IsContiguous reports whether the indices form a gap-free range when
// sorted. An empty selection is never contiguous.
func IsContiguous(indices []int) bool {
	if len(indices) == 0 {
		return false
	}
	sorted := append([]int{}, indices...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

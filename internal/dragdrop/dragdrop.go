// Package dragdrop tracks a pointer-driven block drag and turns the drop
// into a single reinsertion.
package dragdrop

// Reorderer is the part of the block store a drop needs.
type Reorderer interface {
	Index(id string) int
	Relocate(id string, index int)
}

// Controller holds the drag source and the block currently hovered.
type Controller struct {
	draggedID string
	overID    string
}

// Start begins dragging id.
func (c *Controller) Start(id string) {
	c.draggedID = id
	c.overID = ""
}

// Over records the block under the pointer.
func (c *Controller) Over(id string) {
	if c.draggedID == "" {
		return
	}
	c.overID = id
}

// Dragging returns the dragged block id, or "".
func (c *Controller) Dragging() string { return c.draggedID }

// OverID returns the hovered block id, or "".
func (c *Controller) OverID() string { return c.overID }

// Drop moves the dragged block to where targetID sits and clears the drag.
// It reports whether the store was asked to move anything.
func (c *Controller) Drop(targetID string, store Reorderer) bool {
	dragged := c.draggedID
	c.Cancel()
	if dragged == "" || dragged == targetID {
		return false
	}
	from, to := store.Index(dragged), store.Index(targetID)
	if from < 0 || to < 0 {
		return false
	}
	store.Relocate(dragged, TargetIndex(from, to))
	return true
}

// Cancel forgets the drag.
func (c *Controller) Cancel() {
	c.draggedID = ""
	c.overID = ""
}

// TargetIndex is the reinsertion index for a block dragged from index from
// onto the block at index to. Removing the dragged block first shifts
// every later index down by one.
func TargetIndex(from, to int) int {
	if from < to {
		return to - 1
	}
	return to
}

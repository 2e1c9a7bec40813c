package nodearea

import (
	"context"
	"fmt"
)

// Content owns the transformed holder element that node and connection
// view elements live in. The holder's child order is the paint order.
type Content struct {
	holder    *Element
	reordered func(ctx context.Context, target *Element) error
}

func newContent(reordered func(ctx context.Context, target *Element) error) *Content {
	return &Content{
		holder:    NewElement("content"),
		reordered: reordered,
	}
}

// Holder returns the element every view element is attached to.
func (c *Content) Holder() *Element {
	return c.holder
}

// Add appends el on top of every other view element.
func (c *Content) Add(el *Element) {
	c.holder.AppendChild(el)
}

// Remove detaches el from the holder. No-op if it is not attached.
func (c *Content) Remove(el *Element) {
	c.holder.RemoveChild(el)
}

// Reorder moves target directly below next in paint order, or to the top
// when next is nil, then raises the reordered notification. It fails with
// ErrNotInContent, leaving the order untouched, if target is not inside the
// holder or next is not one of its children.
func (c *Content) Reorder(ctx context.Context, target, next *Element) error {
	if err := c.moveBefore(target, next); err != nil {
		return err
	}
	if c.reordered != nil {
		return c.reordered(ctx, target)
	}
	return nil
}

func (c *Content) moveBefore(target, next *Element) error {
	treeMu.Lock()
	defer treeMu.Unlock()
	if target == nil || !isDescendantLocked(c.holder, target) {
		return fmt.Errorf("reorder target: %w", ErrNotInContent)
	}
	if next != nil && next.parent != c.holder {
		return fmt.Errorf("reorder next: %w", ErrNotInContent)
	}
	if target == next {
		return nil
	}
	index := len(c.holder.children)
	if next != nil {
		if target.parent == c.holder {
			c.holder.removeChildLocked(target)
		}
		index = indexOf(c.holder.children, next)
	}
	c.holder.insertLocked(target, index)
	return nil
}

func isDescendantLocked(root, el *Element) bool {
	for p := el.parent; p != nil; p = p.parent {
		if p == root {
			return true
		}
	}
	return false
}

// PointerFrom converts an event's window coordinates into coordinates
// relative to the holder's on-screen origin, before dividing by scale.
func (c *Content) PointerFrom(e *Event) Position {
	r := c.holder.BoundingClientRect()
	return Position{X: e.ClientX - r.X, Y: e.ClientY - r.Y}
}

// Package interact holds the gesture state machines: drag-transfer,
// tap/double-tap disambiguation, equip/enchant target selection,
// hover preview and the context menu. They share one Context so that
// no two machines can be active for the same pointer gesture.
package interact

import (
	"sync"

	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/store"
)

// StateSource is the read-only view of the store the machines validate
// against. Validation happens at gesture time AND again at commit time
// (drop, target click) as a defense against stale captures.
type StateSource interface {
	Current() (store.Snapshot, bool)
}

// Context owns the cross-machine mutable refs. Field ownership:
//   - dragging/dragID: written by the drag machine only
//   - hoverBlock: written by right-click-to-tap, cleared by hover exit
//
// Everything else a machine needs lives on the machine itself.
type Context struct {
	Seat game.Seat // local seat, set once at game join

	mu         sync.Mutex
	dragging   bool
	dragID     game.ObjectID
	hoverBlock game.ObjectID
}

func NewContext(seat game.Seat) *Context {
	return &Context{Seat: seat}
}

// beginDrag claims the drag slot; false if a drag is already active.
func (c *Context) beginDrag(id game.ObjectID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dragging {
		return false
	}
	c.dragging = true
	c.dragID = id
	return true
}

// endDrag releases the drag slot; false if no drag was active.
func (c *Context) endDrag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dragging {
		return false
	}
	c.dragging = false
	c.dragID = ""
	return true
}

// Dragging reports the active drag, if any.
func (c *Context) Dragging() (game.ObjectID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragID, c.dragging
}

// BlockHover suppresses hover previews for one object id, used by
// right-click-to-tap to avoid preview flicker over the tapped card.
func (c *Context) BlockHover(id game.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hoverBlock = id
}

// ClearHoverBlock drops the block unless the pointer is still over the
// blocked object; the block lives only for the duration of that hover.
func (c *Context) ClearHoverBlock(topmost game.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hoverBlock != "" && c.hoverBlock != topmost {
		c.hoverBlock = ""
	}
}

func (c *Context) HoverBlocked(id game.ObjectID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hoverBlock == id
}

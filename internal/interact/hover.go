package interact

import (
	"sync"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/game"
)

// Rect is a screen rectangle in viewport coordinates.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

type Viewport struct {
	W, H float64
}

// Preview is the enlarged copy anchored at the hovered card's center.
// Source keeps the original element's bounding box so the preview can
// stand in as drag source with an identical drag image.
type Preview struct {
	Target game.ObjectID
	Rect   Rect
	Source Rect
}

// Hover drives the hover-preview overlay. Blocked ids (right-click tap,
// active drag) never open; pointer movement retargets between known
// cards without closing and closes when the pointer leaves card
// elements entirely.
type Hover struct {
	ctx      *Context
	drag     *Drag
	viewport Viewport
	scale    float64
	pad      float64

	mu     sync.Mutex
	active bool
	cur    Preview
}

func NewHover(ctx *Context, drag *Drag, events *bus.Bus, viewport Viewport, scale, pad float64) *Hover {
	h := &Hover{ctx: ctx, drag: drag, viewport: viewport, scale: scale, pad: pad}
	events.Subscribe("hover", func(ev bus.Event) {
		if _, ok := ev.(bus.DragStarted); ok {
			h.Close()
		}
	})
	return h
}

// Enter opens the preview for a pointer-enter, unless the object is
// blocked or a drag is in flight.
func (h *Hover) Enter(id game.ObjectID, cardRect Rect) {
	if h.ctx.HoverBlocked(id) {
		return
	}
	if _, dragging := h.ctx.Dragging(); dragging {
		return
	}
	h.mu.Lock()
	h.active = true
	h.cur = Preview{Target: id, Rect: h.expand(cardRect), Source: cardRect}
	h.mu.Unlock()
}

// PointerMove tracks the topmost element under the pointer. A different
// known card retargets the preview without closing; anything that is
// not a card closes it.
func (h *Hover) PointerMove(topmost game.ObjectID, isCard bool, cardRect Rect) {
	h.ctx.ClearHoverBlock(topmost)
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return
	}
	if !isCard {
		h.active = false
		h.mu.Unlock()
		return
	}
	if topmost != h.cur.Target && !h.ctx.HoverBlocked(topmost) {
		h.cur = Preview{Target: topmost, Rect: h.expand(cardRect), Source: cardRect}
	}
	h.mu.Unlock()
}

func (h *Hover) Close() {
	h.mu.Lock()
	h.active = false
	h.mu.Unlock()
}

// Current returns the open preview, if any.
func (h *Hover) Current() (Preview, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur, h.active
}

// BeginDrag forwards a drag initiated on the preview element to the
// drag machine, so dragging works identically from the enlarged copy.
// The DragStarted broadcast then closes the preview.
func (h *Hover) BeginDrag() bool {
	h.mu.Lock()
	if !h.active {
		h.mu.Unlock()
		return false
	}
	target := h.cur.Target
	h.mu.Unlock()
	return h.drag.Begin(target)
}

// expand grows the card rect by the preview scale around its center and
// clamps it to the viewport with fixed padding.
func (h *Hover) expand(card Rect) Rect {
	cx, cy := card.Center()
	w := card.W * h.scale
	ht := card.H * h.scale
	r := Rect{X: cx - w/2, Y: cy - ht/2, W: w, H: ht}
	return clampRect(r, h.viewport, h.pad)
}

func clampRect(r Rect, vp Viewport, pad float64) Rect {
	if r.X < pad {
		r.X = pad
	}
	if r.Y < pad {
		r.Y = pad
	}
	if r.X+r.W > vp.W-pad {
		r.X = vp.W - pad - r.W
	}
	if r.Y+r.H > vp.H-pad {
		r.Y = vp.H - pad - r.H
	}
	return r
}

package interact

import (
	"sync"
	"time"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/dispatch"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

// DefaultClickDelay is how long a single click waits before it becomes
// a menu-open, so a second click can be recognized as a double-click
// instead. Without the delay every double-click attempt would pop a
// menu first.
const DefaultClickDelay = 320 * time.Millisecond

// MenuOpener is what a matured single click drives.
type MenuOpener interface {
	Open(id game.ObjectID)
}

// Gestures disambiguates click vs double-click (and two taps within
// the delay on touch). A pending menu-open is cancelled by a second
// click on the same object or by a drag starting.
type Gestures struct {
	ctx    *Context
	states StateSource
	d      *dispatch.Dispatcher
	menu   MenuOpener
	delay  time.Duration

	mu        sync.Mutex
	gen       int
	pendingID game.ObjectID
	pending   *time.Timer
}

func NewGestures(ctx *Context, states StateSource, d *dispatch.Dispatcher, menu MenuOpener, events *bus.Bus, delay time.Duration) *Gestures {
	if delay <= 0 {
		delay = DefaultClickDelay
	}
	g := &Gestures{ctx: ctx, states: states, d: d, menu: menu, delay: delay}
	// Click timers and drag state are mutually exclusive.
	events.Subscribe("gestures", func(ev bus.Event) {
		if _, ok := ev.(bus.DragStarted); ok {
			g.CancelPending()
		}
	})
	return g
}

// Click handles a primary click or tap on an object. The first click
// schedules a deferred menu-open; a second click on the same object
// within the delay cancels it and activates the object instead.
func (g *Gestures) Click(id game.ObjectID) {
	g.mu.Lock()
	if g.pending != nil && g.pendingID == id {
		g.pending.Stop()
		g.pending = nil
		g.gen++
		g.mu.Unlock()
		g.activate(id)
		return
	}
	if g.pending != nil {
		g.pending.Stop()
	}
	g.gen++
	gen := g.gen
	g.pendingID = id
	g.pending = time.AfterFunc(g.delay, func() { g.menuFire(id, gen) })
	g.mu.Unlock()
}

// RightClick (long-press on touch) taps a controlled battlefield object
// directly and blocks its hover preview to avoid flicker.
func (g *Gestures) RightClick(id game.ObjectID) {
	snap, ok := g.states.Current()
	if !ok {
		return
	}
	obj, ok := snap.State.Objects[id]
	if !ok || !obj.OnBattlefield() || !obj.ControlledBy(g.ctx.Seat) {
		return
	}
	g.ctx.BlockHover(id)
	g.d.Dispatch(protocol.Action{Type: protocol.ActionTap, ObjectID: id})
}

// CancelPending drops any scheduled menu-open.
func (g *Gestures) CancelPending() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
	g.gen++
}

func (g *Gestures) menuFire(id game.ObjectID, gen int) {
	g.mu.Lock()
	if gen != g.gen {
		g.mu.Unlock()
		return
	}
	g.pending = nil
	g.mu.Unlock()
	g.menu.Open(id)
}

// activate is the double-click action: tap on the battlefield, move to
// the battlefield from anywhere else.
func (g *Gestures) activate(id game.ObjectID) {
	snap, ok := g.states.Current()
	if !ok {
		return
	}
	obj, ok := snap.State.Objects[id]
	if !ok {
		return
	}
	if obj.OnBattlefield() {
		g.d.Dispatch(protocol.Action{Type: protocol.ActionTap, ObjectID: id})
		return
	}
	g.d.Dispatch(protocol.Action{
		Type:     protocol.ActionMove,
		ObjectID: id,
		FromZone: obj.Zone,
		ToZone:   game.ZoneBattlefield,
		ToSeat:   g.ctx.Seat,
	})
}

package interact

import (
	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/dispatch"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

// DropTarget identifies the zone region a drag was released over, with
// optional placement hints.
type DropTarget struct {
	Seat     game.Seat
	Zone     game.Zone
	Index    *int   // hand insertion index
	Position string // library "top" / "bottom"
}

// Drag is the zone-transfer state machine: Idle -> Dragging -> Idle.
// Dragging is entered only for objects the local seat controls and the
// drop handler re-validates that before dispatching.
type Drag struct {
	ctx    *Context
	states StateSource
	d      *dispatch.Dispatcher
	events *bus.Bus
	log    *zap.Logger
}

func NewDrag(ctx *Context, states StateSource, d *dispatch.Dispatcher, events *bus.Bus, log *zap.Logger) *Drag {
	return &Drag{ctx: ctx, states: states, d: d, events: events, log: log}
}

// Begin starts a drag for id. Suppressed (returns false) when the
// local seat is not the controller, when no state is loaded, or when a
// drag is already active.
func (m *Drag) Begin(id game.ObjectID) bool {
	snap, ok := m.states.Current()
	if !ok {
		return false
	}
	obj, ok := snap.State.Objects[id]
	if !ok || !obj.ControlledBy(m.ctx.Seat) {
		return false
	}
	if !m.ctx.beginDrag(id) {
		return false
	}
	m.events.Publish(bus.DragStarted{ObjectID: id})
	return true
}

// Drop commits the active drag onto a zone region. Returns false when
// the region rejects the drop (no action dispatched). The drag stays
// active either way; End always follows.
func (m *Drag) Drop(target DropTarget) bool {
	id, active := m.ctx.Dragging()
	if !active {
		return false
	}
	snap, ok := m.states.Current()
	if !ok {
		return false
	}
	obj, ok := snap.State.Objects[id]
	// Re-validate controller identity here: the gesture may have been
	// captured against an older snapshot.
	if !ok || !obj.ControlledBy(m.ctx.Seat) {
		m.log.Debug("drop rejected, controller changed", zap.String("object", string(id)))
		return false
	}
	if !allowsDrop(obj, target, snap.State.Trade) {
		return false
	}
	m.d.Dispatch(protocol.Action{
		Type:     protocol.ActionMove,
		ObjectID: id,
		FromZone: obj.Zone,
		ToZone:   target.Zone,
		ToSeat:   target.Seat,
		Index:    target.Index,
		Position: target.Position,
	})
	return true
}

// End leaves the Dragging state regardless of drop success.
func (m *Drag) End() {
	if m.ctx.endDrag() {
		m.events.Publish(bus.DragEnded{})
	}
}

func allowsDrop(obj game.GameObject, target DropTarget, trade *game.TradeState) bool {
	// A locked trade side may not change its offer; gate client-side
	// before the server even sees the move.
	if target.Zone == game.ZoneTradeOffer && trade.SideLocked(target.Seat) {
		return false
	}
	if obj.Zone == target.Zone && obj.Controller == target.Seat {
		// Same-zone drops are no-ops except for zones that accept
		// re-placement: hand (indexed reinsert) and battlefield.
		switch target.Zone {
		case game.ZoneHand, game.ZoneBattlefield:
			return true
		default:
			return false
		}
	}
	return true
}

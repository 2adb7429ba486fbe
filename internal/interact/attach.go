package interact

import (
	"sync"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/dispatch"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

type SelectionKind string

const (
	SelectEquip   SelectionKind = "equip"
	SelectEnchant SelectionKind = "enchant"
)

// Selector is the equip/enchant target selection machine:
// Inactive -> SourceSelected -> Inactive. Selection state is local-only
// and unpersisted; it is not part of the game state. Equip and enchant
// selection are mutually exclusive: starting one cancels the other
// (last-started wins).
type Selector struct {
	ctx    *Context
	states StateSource
	d      *dispatch.Dispatcher
	events *bus.Bus

	mu     sync.Mutex
	active bool
	kind   SelectionKind
	source game.ObjectID
}

func NewSelector(ctx *Context, states StateSource, d *dispatch.Dispatcher, events *bus.Bus) *Selector {
	return &Selector{ctx: ctx, states: states, d: d, events: events}
}

// Start enters SourceSelected for a controlled battlefield object.
func (s *Selector) Start(kind SelectionKind, source game.ObjectID) bool {
	snap, ok := s.states.Current()
	if !ok {
		return false
	}
	obj, ok := snap.State.Objects[source]
	if !ok || !obj.OnBattlefield() || !obj.ControlledBy(s.ctx.Seat) {
		return false
	}
	s.mu.Lock()
	prevActive, prevSource := s.active, s.source
	s.active = true
	s.kind = kind
	s.source = source
	s.mu.Unlock()
	if prevActive && prevSource != source {
		s.events.Publish(bus.SelectionCancelled{Source: prevSource})
	}
	return true
}

// ClickObject routes a click while a selection may be active. Returns
// true when the click was consumed by the selection machine. Clicking
// the source again cancels without dispatching; clicking any other
// battlefield object the local seat controls dispatches exactly one
// attach action.
func (s *Selector) ClickObject(id game.ObjectID) bool {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return false
	}
	kind, source := s.kind, s.source
	s.mu.Unlock()

	if id == source {
		s.Cancel()
		return true
	}
	snap, ok := s.states.Current()
	if !ok {
		return false
	}
	obj, ok := snap.State.Objects[id]
	if !ok || !obj.OnBattlefield() || !obj.ControlledBy(s.ctx.Seat) {
		// Not a valid target; the selection stays armed.
		return false
	}
	actionType := protocol.ActionEquipAttach
	if kind == SelectEnchant {
		actionType = protocol.ActionEnchantAttach
	}
	s.deactivate()
	s.d.Dispatch(protocol.Action{Type: actionType, ObjectID: source, TargetID: id})
	return true
}

// Cancel exits SourceSelected without dispatching, e.g. on Escape.
func (s *Selector) Cancel() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	source := s.source
	s.deactivateLocked()
	s.mu.Unlock()
	s.events.Publish(bus.SelectionCancelled{Source: source})
}

// Active reports the current selection, if any.
func (s *Selector) Active() (SelectionKind, game.ObjectID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.source, s.active
}

func (s *Selector) deactivate() {
	s.mu.Lock()
	s.deactivateLocked()
	s.mu.Unlock()
}

func (s *Selector) deactivateLocked() {
	s.active = false
	s.source = ""
}

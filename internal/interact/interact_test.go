package interact

import (
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/dispatch"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
	"github.com/cardloft/tabletop-client/internal/store"
)

// fakeStates satisfies both StateSource and dispatch.Versioner so one
// stub backs the whole fixture.
type fakeStates struct {
	mu   sync.Mutex
	snap store.Snapshot
	ok   bool
}

func (f *fakeStates) Current() (store.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.ok
}

func (f *fakeStates) CurrentVersion() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ok {
		return 0, false
	}
	return f.snap.Version, true
}

func (f *fakeStates) set(st *game.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = store.Snapshot{Version: st.Version, State: st, Index: game.BuildZoneIndex(st.Objects)}
	f.ok = true
}

type recordingSender struct {
	mu   sync.Mutex
	sent []protocol.ClientMessage
}

func (r *recordingSender) Send(msg protocol.ClientMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) actions() []protocol.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Action
	for _, m := range r.sent {
		if m.Action != nil {
			out = append(out, *m.Action)
		}
	}
	return out
}

type fixture struct {
	ctx    *Context
	states *fakeStates
	sender *recordingSender
	events *bus.Bus
	d      *dispatch.Dispatcher
}

// newFixture builds the machines' shared plumbing with the local player
// at seat 1 and state version 3.
func newFixture(t *testing.T, objects map[game.ObjectID]game.GameObject, trade *game.TradeState) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    NewContext(1),
		states: &fakeStates{},
		sender: &recordingSender{},
		events: bus.New(),
	}
	f.states.set(&game.State{
		Version: 3,
		Players: map[game.Seat]game.Player{1: {Seat: 1}, 2: {Seat: 2}},
		Objects: objects,
		Trade:   trade,
	})
	f.d = dispatch.New("g1", f.states, f.sender, f.events, zap.NewNop())
	return f
}

func battlefieldObject(id game.ObjectID, controller game.Seat) game.GameObject {
	return game.GameObject{ID: id, Owner: controller, Controller: controller, Zone: game.ZoneBattlefield}
}

func handObject(id game.ObjectID, controller game.Seat) game.GameObject {
	return game.GameObject{ID: id, Owner: controller, Controller: controller, Zone: game.ZoneHand}
}

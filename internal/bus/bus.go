// Package bus is the interaction event channel: typed UI events any
// subsystem can subscribe to, replacing reliance on runtime-global
// drag listeners for cross-component consistency.
package bus

import (
	"sync"

	"github.com/cardloft/tabletop-client/internal/game"
)

type Event interface{ isEvent() }

// DragStarted tells drop regions and hover UI to suppress themselves.
type DragStarted struct{ ObjectID game.ObjectID }

type DragEnded struct{}

// CloseMenus is published as a side effect of dispatching an action.
type CloseMenus struct{}

// SelectionCancelled fires when an equip/enchant selection ends without
// a target (cancel, Escape, or superseded by the other kind).
type SelectionCancelled struct{ Source game.ObjectID }

func (DragStarted) isEvent()        {}
func (DragEnded) isEvent()          {}
func (CloseMenus) isEvent()         {}
func (SelectionCancelled) isEvent() {}

type Handler func(Event)

// Bus fans events out to named subscribers. Delivery is synchronous:
// the whole engine runs on one cooperative event loop, so handlers run
// inline and observe a consistent interaction state.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]Handler
}

func New() *Bus {
	return &Bus{subs: make(map[string]Handler)}
}

func (b *Bus) Subscribe(id string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[id] = h
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}

package interact

import (
	"context"
	"sync"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/game"
)

// AccentFn computes a background accent color for a menu from the
// card's art, e.g. an average-color pass over the cached image. It may
// be slow; the menu cancels it when superseded or closed.
type AccentFn func(ctx context.Context, cardID string) (string, error)

// Menu holds the context-menu state for at most one object. Dispatching
// any action publishes CloseMenus, which closes it.
type Menu struct {
	states StateSource
	accent AccentFn

	mu           sync.Mutex
	open         bool
	openID       game.ObjectID
	accentColor  string
	cancelAccent context.CancelFunc
}

func NewMenu(states StateSource, accent AccentFn, events *bus.Bus) *Menu {
	m := &Menu{states: states, accent: accent}
	events.Subscribe("menu", func(ev bus.Event) {
		if _, ok := ev.(bus.CloseMenus); ok {
			m.Close()
		}
	})
	return m
}

// Open shows the menu for one object, replacing any open menu and
// superseding its in-flight accent computation. The object must exist
// in the current snapshot; unknown ids are ignored.
func (m *Menu) Open(id game.ObjectID) {
	snap, ok := m.states.Current()
	if !ok {
		return
	}
	obj, ok := snap.State.Objects[id]
	if !ok {
		return
	}

	m.mu.Lock()
	if m.cancelAccent != nil {
		m.cancelAccent()
		m.cancelAccent = nil
	}
	m.open = true
	m.openID = id
	m.accentColor = ""
	accent := m.accent
	m.mu.Unlock()

	if accent == nil || obj.CardID == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.cancelAccent = cancel
	m.mu.Unlock()
	go func() {
		color, err := accent(ctx, obj.CardID)
		if err != nil || ctx.Err() != nil {
			return
		}
		m.mu.Lock()
		if m.open && m.openID == id {
			m.accentColor = color
		}
		m.mu.Unlock()
	}()
}

func (m *Menu) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelAccent != nil {
		m.cancelAccent()
		m.cancelAccent = nil
	}
	m.open = false
	m.openID = ""
	m.accentColor = ""
}

// OpenFor reports the object the menu is open for, if any.
func (m *Menu) OpenFor() (game.ObjectID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openID, m.open
}

// Accent returns the computed accent color, empty until the job lands.
func (m *Menu) Accent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accentColor
}

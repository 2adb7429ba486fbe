package interact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

func menuObjects() map[game.ObjectID]game.GameObject {
	obj := battlefieldObject("c1", 1)
	obj.CardID = "card-1"
	return map[game.ObjectID]game.GameObject{"c1": obj}
}

func TestMenu_DispatchClosesOpenMenu(t *testing.T) {
	f := newFixture(t, menuObjects(), nil)
	m := NewMenu(f.states, nil, f.events)

	m.Open("c1")
	id, open := m.OpenFor()
	require.True(t, open)
	assert.Equal(t, game.ObjectID("c1"), id)

	// Any dispatched action closes the menu via the bus.
	f.d.Dispatch(protocol.Action{Type: protocol.ActionDraw, Seat: 1, N: 1})
	_, open = m.OpenFor()
	assert.False(t, open)
}

func TestMenu_OpenRequiresKnownObject(t *testing.T) {
	f := newFixture(t, menuObjects(), nil)
	m := NewMenu(f.states, nil, f.events)

	m.Open("ghost")
	_, open := m.OpenFor()
	assert.False(t, open, "an id absent from the snapshot never opens a menu")

	// A stale open must not survive either: open a real menu, then try
	// the unknown id again.
	m.Open("c1")
	m.Open("ghost")
	id, open := m.OpenFor()
	require.True(t, open)
	assert.Equal(t, game.ObjectID("c1"), id)
}

func TestMenu_AccentLandsForCurrentMenu(t *testing.T) {
	f := newFixture(t, menuObjects(), nil)
	m := NewMenu(f.states, func(ctx context.Context, cardID string) (string, error) {
		return "#335577", nil
	}, f.events)

	m.Open("c1")
	assert.Eventually(t, func() bool { return m.Accent() == "#335577" },
		time.Second, 5*time.Millisecond)
}

func TestMenu_CloseCancelsInFlightAccent(t *testing.T) {
	f := newFixture(t, menuObjects(), nil)
	started := make(chan struct{})
	cancelled := make(chan struct{})
	m := NewMenu(f.states, func(ctx context.Context, cardID string) (string, error) {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	}, f.events)

	m.Open("c1")
	<-started
	m.Close()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("accent job was not cancelled on close")
	}
	assert.Empty(t, m.Accent())
}

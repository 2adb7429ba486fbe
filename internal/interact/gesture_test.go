package interact

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

type countingMenu struct {
	mu    sync.Mutex
	opens []game.ObjectID
}

func (c *countingMenu) Open(id game.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opens = append(c.opens, id)
}

func (c *countingMenu) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.opens)
}

const testClickDelay = 40 * time.Millisecond

func newGestures(f *fixture, menu MenuOpener) *Gestures {
	return NewGestures(f.ctx, f.states, f.d, menu, f.events, testClickDelay)
}

func TestGestures_SingleClickOpensMenuAfterDelay(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"c1": battlefieldObject("c1", 1),
	}, nil)
	menu := &countingMenu{}
	g := newGestures(f, menu)

	g.Click("c1")
	assert.Zero(t, menu.count(), "menu must not open before the delay")

	time.Sleep(4 * testClickDelay)
	assert.Equal(t, 1, menu.count(), "exactly one menu-open")
	assert.Empty(t, f.sender.actions(), "no action on a plain single click")
}

func TestGestures_DoubleClickCancelsMenuAndTapsOnce(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"c1": battlefieldObject("c1", 1),
	}, nil)
	menu := &countingMenu{}
	g := newGestures(f, menu)

	g.Click("c1")
	g.Click("c1") // within the delay

	time.Sleep(4 * testClickDelay)
	assert.Zero(t, menu.count(), "pending menu-open was cancelled")
	actions := f.sender.actions()
	require.Len(t, actions, 1, "exactly one action")
	assert.Equal(t, protocol.ActionTap, actions[0].Type)
	assert.Equal(t, game.ObjectID("c1"), actions[0].ObjectID)
}

func TestGestures_DoubleClickOffBattlefieldMovesToBattlefield(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"c1": handObject("c1", 1),
	}, nil)
	g := newGestures(f, &countingMenu{})

	g.Click("c1")
	g.Click("c1")

	actions := f.sender.actions()
	require.Len(t, actions, 1)
	assert.Equal(t, protocol.ActionMove, actions[0].Type)
	assert.Equal(t, game.ZoneHand, actions[0].FromZone)
	assert.Equal(t, game.ZoneBattlefield, actions[0].ToZone)
	assert.Equal(t, game.Seat(1), actions[0].ToSeat)
}

func TestGestures_ClickDifferentObjectSupersedesPending(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"c1": battlefieldObject("c1", 1),
		"c2": battlefieldObject("c2", 1),
	}, nil)
	menu := &countingMenu{}
	g := newGestures(f, menu)

	g.Click("c1")
	g.Click("c2") // not a double-click: different object

	time.Sleep(4 * testClickDelay)
	menu.mu.Lock()
	defer menu.mu.Unlock()
	require.Len(t, menu.opens, 1, "only the second object's menu opens")
	assert.Equal(t, game.ObjectID("c2"), menu.opens[0])
}

func TestGestures_RightClickTapsAndBlocksHover(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"mine":   battlefieldObject("mine", 1),
		"theirs": battlefieldObject("theirs", 2),
		"inHand": handObject("inHand", 1),
	}, nil)
	g := newGestures(f, &countingMenu{})

	g.RightClick("theirs") // not controlled
	g.RightClick("inHand") // not on the battlefield
	assert.Empty(t, f.sender.actions())

	g.RightClick("mine")
	actions := f.sender.actions()
	require.Len(t, actions, 1)
	assert.Equal(t, protocol.ActionTap, actions[0].Type)
	assert.True(t, f.ctx.HoverBlocked("mine"), "hover suppressed to avoid flicker")
}

func TestGestures_DragStartCancelsPendingMenu(t *testing.T) {
	f := newFixture(t, map[game.ObjectID]game.GameObject{
		"c1": battlefieldObject("c1", 1),
	}, nil)
	menu := &countingMenu{}
	g := newGestures(f, menu)
	drag := NewDrag(f.ctx, f.states, f.d, f.events, zap.NewNop())

	g.Click("c1")
	require.True(t, drag.Begin("c1")) // DragStarted cancels the click timer

	time.Sleep(4 * testClickDelay)
	assert.Zero(t, menu.count(), "drag and click timers are mutually exclusive")
}

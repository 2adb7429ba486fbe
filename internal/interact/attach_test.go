package interact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

func attachObjects() map[game.ObjectID]game.GameObject {
	return map[game.ObjectID]game.GameObject{
		"sword":    battlefieldObject("sword", 1),
		"bear":     battlefieldObject("bear", 1),
		"aura":     battlefieldObject("aura", 1),
		"theirs":   battlefieldObject("theirs", 2),
		"handCard": handObject("handCard", 1),
	}
}

func TestSelector_ClickSourceCancelsWithoutAction(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	require.True(t, s.Start(SelectEquip, "sword"))
	assert.True(t, s.ClickObject("sword"), "click consumed")

	_, _, active := s.Active()
	assert.False(t, active)
	assert.Empty(t, f.sender.actions(), "no action dispatched on cancel")
}

func TestSelector_TargetClickDispatchesExactlyOneAttach(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	require.True(t, s.Start(SelectEquip, "sword"))
	assert.True(t, s.ClickObject("bear"))

	actions := f.sender.actions()
	require.Len(t, actions, 1)
	assert.Equal(t, protocol.ActionEquipAttach, actions[0].Type)
	assert.Equal(t, game.ObjectID("sword"), actions[0].ObjectID)
	assert.Equal(t, game.ObjectID("bear"), actions[0].TargetID)

	_, _, active := s.Active()
	assert.False(t, active, "selection ends after a target is chosen")
}

func TestSelector_EnchantDispatchesEnchantAttach(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	require.True(t, s.Start(SelectEnchant, "aura"))
	assert.True(t, s.ClickObject("bear"))

	actions := f.sender.actions()
	require.Len(t, actions, 1)
	assert.Equal(t, protocol.ActionEnchantAttach, actions[0].Type)
}

func TestSelector_InvalidTargetsKeepSelectionArmed(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	require.True(t, s.Start(SelectEquip, "sword"))
	assert.False(t, s.ClickObject("theirs"), "opponent's object is not a target")
	assert.False(t, s.ClickObject("handCard"), "hand card is not a target")

	_, source, active := s.Active()
	assert.True(t, active)
	assert.Equal(t, game.ObjectID("sword"), source)
	assert.Empty(t, f.sender.actions())
}

func TestSelector_StartRejectsInvalidSource(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	assert.False(t, s.Start(SelectEquip, "theirs"))
	assert.False(t, s.Start(SelectEquip, "handCard"))
	assert.False(t, s.Start(SelectEquip, "missing"))
}

func TestSelector_LastStartedWins(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	var cancelled []game.ObjectID
	f.events.Subscribe("probe", func(ev bus.Event) {
		if c, ok := ev.(bus.SelectionCancelled); ok {
			cancelled = append(cancelled, c.Source)
		}
	})

	require.True(t, s.Start(SelectEquip, "sword"))
	require.True(t, s.Start(SelectEnchant, "aura")) // supersedes the equip selection

	kind, source, active := s.Active()
	assert.True(t, active)
	assert.Equal(t, SelectEnchant, kind)
	assert.Equal(t, game.ObjectID("aura"), source)
	assert.Equal(t, []game.ObjectID{"sword"}, cancelled)
}

func TestSelector_EscapeCancels(t *testing.T) {
	f := newFixture(t, attachObjects(), nil)
	s := NewSelector(f.ctx, f.states, f.d, f.events)

	require.True(t, s.Start(SelectEnchant, "aura"))
	s.Cancel()

	_, _, active := s.Active()
	assert.False(t, active)
	assert.Empty(t, f.sender.actions())

	s.Cancel() // idempotent
}

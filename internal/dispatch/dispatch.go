// Package dispatch turns typed player intents into version-stamped
// outbound messages. This is the optimistic concurrency control seam:
// the server compares the stamped version against its own and rejects
// stale actions; correctness is rendered from the next snapshot, so
// sends are fire-and-forget.
package dispatch

import (
	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

// Sender is the live channel seam; the connection manager implements
// it and turns Send into a silent no-op while disconnected.
type Sender interface {
	Send(msg protocol.ClientMessage) error
}

// Versioner exposes the last observed state version.
type Versioner interface {
	CurrentVersion() (int, bool)
}

type Dispatcher struct {
	gameID string
	store  Versioner
	sender Sender
	events *bus.Bus
	log    *zap.Logger
}

func New(gameID string, store Versioner, sender Sender, events *bus.Bus, log *zap.Logger) *Dispatcher {
	return &Dispatcher{gameID: gameID, store: store, sender: sender, events: events, log: log}
}

// Dispatch sends an intent stamped with the version observed right now
// and closes any open context menu as a UI side effect.
func (d *Dispatcher) Dispatch(a protocol.Action) {
	d.dispatch(a, true)
}

// DispatchKeepMenus suppresses the menu-close side effect, for actions
// issued from inside a menu that should stay open.
func (d *Dispatcher) DispatchKeepMenus(a protocol.Action) {
	d.dispatch(a, false)
}

func (d *Dispatcher) dispatch(a protocol.Action, closeMenus bool) {
	version, ok := d.store.CurrentVersion()
	if !ok {
		// No state loaded: nothing to act against.
		d.log.Debug("dropping dispatch, no state loaded", zap.String("action", string(a.Type)))
		return
	}
	msg := protocol.ClientMessage{
		Type:            protocol.MsgAction,
		GameID:          d.gameID,
		ExpectedVersion: version,
		Action:          &a,
	}
	if err := d.sender.Send(msg); err != nil {
		d.log.Warn("action send failed", zap.String("action", string(a.Type)), zap.Error(err))
	}
	if closeMenus && d.events != nil {
		d.events.Publish(bus.CloseMenus{})
	}
}

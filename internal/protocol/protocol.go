package protocol

import "github.com/cardloft/tabletop-client/internal/game"

// ActionType values are opaque to this client: it carries them to the
// authoritative engine, which owns legality.
type ActionType string

const (
	ActionMove             ActionType = "MOVE"
	ActionTap              ActionType = "TAP"
	ActionToggleFace       ActionType = "TOGGLE_FACE"
	ActionEquipAttach      ActionType = "EQUIP_ATTACH"
	ActionEquipDetach      ActionType = "EQUIP_DETACH"
	ActionEnchantAttach    ActionType = "ENCHANT_ATTACH"
	ActionEnchantDetach    ActionType = "ENCHANT_DETACH"
	ActionCounters         ActionType = "COUNTERS"
	ActionDraw             ActionType = "DRAW"
	ActionLifeSet          ActionType = "LIFE_SET"
	ActionPeekZone         ActionType = "PEEK_ZONE"
	ActionPeekLibrary      ActionType = "PEEK_LIBRARY"
	ActionRevealToggleCard ActionType = "REVEAL_TOGGLE_CARD"
	ActionRevealClose      ActionType = "REVEAL_CLOSE"
	ActionTradeLock        ActionType = "TRADE_LOCK"
	ActionTradeUnlock      ActionType = "TRADE_UNLOCK"
	ActionTradeConfirm     ActionType = "TRADE_CONFIRM"
	ActionTradeCancel      ActionType = "TRADE_CANCEL"
)

// Library placement hints for MOVE.
const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// Action is the flat intent payload. Only the fields relevant to the
// action type are set; everything else stays omitted on the wire.
type Action struct {
	Type     ActionType    `json:"type"`
	ObjectID game.ObjectID `json:"object_id,omitempty"`
	TargetID game.ObjectID `json:"target_id,omitempty"` // attach host
	FromZone game.Zone     `json:"from_zone,omitempty"`
	ToZone   game.Zone     `json:"to_zone,omitempty"`
	ToSeat   game.Seat     `json:"to_seat,omitempty"` // destination owner seat
	Seat     game.Seat     `json:"seat,omitempty"`    // DRAW / LIFE_SET subject
	Zone     game.Zone     `json:"zone,omitempty"`    // peek target
	Index    *int          `json:"index,omitempty"`   // hand insertion index
	Position string        `json:"position,omitempty"`
	FaceDown *bool         `json:"face_down,omitempty"`
	Counter  game.Counter  `json:"counter,omitempty"`
	Delta    int           `json:"delta,omitempty"` // signed
	N        int           `json:"n,omitempty"`
}

// Client -> server message types.
const (
	MsgJoin   = "join"
	MsgRejoin = "rejoin"
	MsgAction = "action"
)

// Server -> client message types.
const (
	MsgSnapshot     = "snapshot"
	MsgUpdated      = "updated"
	MsgError        = "error"
	MsgLobbyUpdated = "lobby_updated"
	MsgGameStarted  = "game_started"
	MsgGameStatus   = "game_status"
)

type ClientMessage struct {
	Type            string  `json:"type"`
	GameID          string  `json:"game_id"`
	ClientID        string  `json:"client_id,omitempty"`
	ExpectedVersion int     `json:"expected_version,omitempty"`
	Action          *Action `json:"action,omitempty"`
}

type ServerMessage struct {
	Type    string      `json:"type"`
	State   *game.State `json:"state,omitempty"`
	Message string      `json:"message,omitempty"`
}

package game

// Seat is a stable per-game player slot, distinct from account identity.
type Seat int

// ObjectID identifies one card-like object within a game.
type ObjectID string

type Zone string

const (
	ZoneHand        Zone = "hand"
	ZoneLibrary     Zone = "library"
	ZoneBattlefield Zone = "battlefield"
	ZoneGraveyard   Zone = "graveyard"
	ZoneExile       Zone = "exile"
	ZoneCommand     Zone = "command"
	ZoneSideboard   Zone = "sideboard"
	ZoneTradeOffer  Zone = "trade-offer"
)

type Counter string

const (
	CounterP1P1      Counter = "P1P1"
	CounterPower     Counter = "POWER"
	CounterToughness Counter = "TOUGHNESS"
	CounterLoyalty   Counter = "LOYALTY"
	CounterCharge    Counter = "CHARGE"
)

// Player is mutated only via server-confirmed snapshots.
type Player struct {
	Seat         Seat           `json:"seat"`
	Username     string         `json:"username"`
	Life         int            `json:"life"`
	CommanderTax int            `json:"commander_tax,omitempty"`
	// CommanderDamage is keyed by the seat that dealt it.
	CommanderDamage map[Seat]int   `json:"commander_damage,omitempty"`
	Counters        map[string]int `json:"counters,omitempty"` // poison, energy, experience, storm, charge
}

// CardFacts is the static, rules-irrelevant face of a card: either
// inlined on the object or resolved from the local metadata cache.
type CardFacts struct {
	Name      string `json:"name,omitempty"`
	TypeLine  string `json:"type_line,omitempty"`
	Power     int    `json:"power,omitempty"`
	Toughness int    `json:"toughness,omitempty"`
	Image     string `json:"image,omitempty"`
}

// GameObject is created and destroyed only by authoritative updates.
// The client never fabricates or deletes one locally; in-flight moves
// live in the interaction machines, not here.
type GameObject struct {
	ID         ObjectID `json:"id"`
	Owner      Seat     `json:"owner"`
	Controller Seat     `json:"controller"`
	Zone       Zone     `json:"zone"`
	// ZonePos orders objects within their (seat, zone) bucket. Objects
	// arrive as a map, so ordering needs an explicit key.
	ZonePos    int             `json:"zone_pos"`
	FaceDown   bool            `json:"face_down,omitempty"`
	Tapped     bool            `json:"tapped,omitempty"`
	AttachedTo ObjectID        `json:"attached_to,omitempty"` // relation only, no ownership
	Counters   map[Counter]int `json:"counters,omitempty"`
	CardID     string          `json:"card_id,omitempty"` // external card identifier
	Facts      *CardFacts      `json:"facts,omitempty"`   // inline override
}

func (o GameObject) ControlledBy(s Seat) bool { return o.Controller == s }

func (o GameObject) OnBattlefield() bool { return o.Zone == ZoneBattlefield }

// RevealState exists only while a reveal is active; cleared by an
// explicit close action from the source seat.
type RevealState struct {
	Source      Seat              `json:"source"`
	All         bool              `json:"all,omitempty"`
	Targets     []Seat            `json:"targets,omitempty"`
	Highlighted map[ObjectID]bool `json:"highlighted,omitempty"`
}

type TradeSide struct {
	Locked    bool `json:"locked"`
	Confirmed bool `json:"confirmed"`
}

// TradeState is rendered and gated by the client but owned by the
// server; the client never clears a Locked flag itself.
type TradeState struct {
	Initiator Seat               `json:"initiator"`
	Target    Seat               `json:"target"`
	Sides     map[Seat]TradeSide `json:"sides"`
}

// SideLocked reports whether the given seat's offer is locked. Nil-safe
// so drop gates can call it without checking for an active trade.
func (t *TradeState) SideLocked(seat Seat) bool {
	if t == nil {
		return false
	}
	return t.Sides[seat].Locked
}

// State is the full shared game state. It is owned by the store,
// replaced wholesale on every authoritative push, and must be treated
// as immutable by every consumer.
type State struct {
	Version int                     `json:"version"`
	Players map[Seat]Player         `json:"players"`
	Objects map[ObjectID]GameObject `json:"objects"`
	Reveal  *RevealState            `json:"reveal,omitempty"`
	Trade   *TradeState             `json:"trade,omitempty"`
}

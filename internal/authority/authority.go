// Package authority is a stub authoritative server for local
// development and integration tests: token exchange, lobby metadata and
// the game channel. It applies only trivial echo semantics to actions -
// the real rules engine is an external system this client talks to.
package authority

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
)

type Server struct {
	log   *zap.Logger
	token string

	mu       sync.Mutex
	games    map[string]*room
	dropJoin bool
}

type room struct {
	state   *game.State
	clients map[string]chan []byte
}

func New(log *zap.Logger) *Server {
	return &Server{
		log:   log,
		token: uuid.NewString(),
		games: make(map[string]*room),
	}
}

// Token returns the bearer credential the stub accepts on /ws.
func (s *Server) Token() string { return s.token }

// Seed installs an initial state for a game, as if players had already
// set it up.
func (s *Server) Seed(gameID string, st *game.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureRoom(gameID).state = st
}

func (s *Server) ensureRoom(gameID string) *room {
	r := s.games[gameID]
	if r == nil {
		r = &room{clients: make(map[string]chan []byte)}
		s.games[gameID] = r
	}
	return r
}

// Announce pushes a bare status signal to every client in a game, the
// way the real server notifies rooms of lobby changes.
func (s *Server) Announce(gameID, msgType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.games[gameID]
	if r == nil {
		return
	}
	for id, ch := range r.clients {
		if !send(ch, protocol.ServerMessage{Type: msgType}) {
			close(ch)
			delete(r.clients, id)
		}
	}
}

// DropNextJoinSnapshot makes the next join skip its snapshot reply,
// simulating a lost initial state push.
func (s *Server) DropNextJoinSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropJoin = true
}

func (s *Server) join(gameID, clientID string, out chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.ensureRoom(gameID)
	r.clients[clientID] = out
	if r.state == nil {
		return
	}
	if s.dropJoin {
		s.dropJoin = false
		return
	}
	send(out, protocol.ServerMessage{Type: protocol.MsgSnapshot, State: r.state})
}

func (s *Server) rejoin(gameID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.games[gameID]
	if r == nil || r.state == nil {
		return
	}
	if out := r.clients[clientID]; out != nil {
		send(out, protocol.ServerMessage{Type: protocol.MsgSnapshot, State: r.state})
	}
}

func (s *Server) leave(gameID, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.games[gameID]; r != nil {
		delete(r.clients, clientID)
	}
}

// action applies the optimistic concurrency check: a stale expected
// version answers an error with a corrective snapshot to just that
// client, a current one bumps the version and broadcasts.
func (s *Server) action(gameID, clientID string, cm protocol.ClientMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.games[gameID]
	if r == nil || r.state == nil {
		return
	}
	out := r.clients[clientID]
	if cm.ExpectedVersion != r.state.Version {
		s.log.Info("rejecting stale action",
			zap.Int("expected", cm.ExpectedVersion), zap.Int("have", r.state.Version))
		if out != nil {
			send(out, protocol.ServerMessage{Type: protocol.MsgError, Message: "stale version", State: r.state})
		}
		return
	}
	applyEcho(r.state, cm.Action)
	msg := protocol.ServerMessage{Type: protocol.MsgUpdated, State: r.state}
	for id, ch := range r.clients {
		if !send(ch, msg) {
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (s *Server) lobbyInfo(gameID string) (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.games[gameID]
	if r == nil || r.state == nil {
		return "open", 0
	}
	return "active", len(r.clients)
}

// send marshals under the server lock so later state mutation cannot
// race the socket writer. Slow clients are dropped by the caller.
func send(out chan []byte, msg protocol.ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		return true
	}
	select {
	case out <- data:
		return true
	default:
		return false
	}
}

// applyEcho bumps the version and mirrors the few object fields needed
// for end-to-end tests. No legality checking happens here.
func applyEcho(st *game.State, a *protocol.Action) {
	st.Version++
	if a == nil {
		return
	}
	switch a.Type {
	case protocol.ActionMove:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			obj.Zone = a.ToZone
			obj.Controller = a.ToSeat
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionTap:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			obj.Tapped = !obj.Tapped
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionToggleFace:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			obj.FaceDown = !obj.FaceDown
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionEquipAttach, protocol.ActionEnchantAttach:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			obj.AttachedTo = a.TargetID
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionEquipDetach, protocol.ActionEnchantDetach:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			obj.AttachedTo = ""
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionCounters:
		if obj, ok := st.Objects[a.ObjectID]; ok {
			if obj.Counters == nil {
				obj.Counters = make(map[game.Counter]int)
			}
			obj.Counters[a.Counter] += a.Delta
			st.Objects[a.ObjectID] = obj
		}
	case protocol.ActionLifeSet:
		if p, ok := st.Players[a.Seat]; ok {
			p.Life += a.Delta
			st.Players[a.Seat] = p
		}
	case protocol.ActionTradeLock:
		if st.Trade != nil {
			side := st.Trade.Sides[a.Seat]
			side.Locked = true
			st.Trade.Sides[a.Seat] = side
		}
	case protocol.ActionTradeUnlock:
		if st.Trade != nil {
			side := st.Trade.Sides[a.Seat]
			side.Locked = false
			st.Trade.Sides[a.Seat] = side
		}
	}
}

package authority

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/protocol"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/token", s.handleToken)
	r.Get("/lobbies/{gameID}", s.handleLobby)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}

// handleToken trades a session cookie for the short-lived bearer token
// the channel requires.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("session"); err != nil {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Token string `json:"token"`
	}{Token: s.token})
}

func (s *Server) handleLobby(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	status, players := s.lobbyInfo(gameID)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		PlayerCount int    `json:"player_count"`
	}{ID: gameID, Status: status, PlayerCount: players})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		http.Error(w, "bad token", http.StatusUnauthorized)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	out := make(chan []byte, 8)
	clientID := uuid.NewString()
	var gameID string
	defer func() {
		if gameID != "" {
			s.leave(gameID, clientID)
		}
	}()

	writeCtx, writeCancel := context.WithCancel(r.Context())
	defer writeCancel()
	go func() {
		for data := range out {
			ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, data)
			cancel()
		}
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var cm protocol.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			s.log.Warn("bad client message", zap.Error(err))
			continue
		}
		switch cm.Type {
		case protocol.MsgJoin:
			gameID = cm.GameID
			s.join(gameID, clientID, out)
		case protocol.MsgRejoin:
			s.rejoin(cm.GameID, clientID)
		case protocol.MsgAction:
			s.action(cm.GameID, clientID, cm)
		default:
			s.log.Debug("ignoring client message", zap.String("type", cm.Type))
		}
	}
}

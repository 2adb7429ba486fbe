// Package conn owns the one live channel to the authoritative server
// for the active game: it exchanges the session cookie for a bearer
// token, dials, announces room membership, and pumps messages between
// the socket and the state store.
package conn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cardloft/tabletop-client/internal/protocol"
	"github.com/cardloft/tabletop-client/internal/store"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrBackpressure = errors.New("outbox full")
)

// TokenSource yields the bearer credential for the channel. The
// exchange may block; channel creation waits for it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

const StatusActive = "active"

type LobbyInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Status      string `json:"status"`
	PlayerCount int    `json:"player_count,omitempty"`
}

// LobbyAPI is the external REST collaborator consulted on server-pushed
// lobby signals. Lobby CRUD itself is out of scope here.
type LobbyAPI interface {
	Lobby(ctx context.Context, gameID string) (LobbyInfo, error)
}

// Events are the manager's callbacks into the UI layer.
type Events struct {
	OnError func(message string)
	OnLobby func(LobbyInfo)
}

type Config struct {
	PrimaryURL  string
	FallbackURL string
	GameID      string
	DialTimeout time.Duration
}

type Manager struct {
	cfg     Config
	tokens  TokenSource
	lobbies LobbyAPI
	store   *store.Store
	events  Events
	log     *zap.Logger

	clientID  string
	connected atomic.Bool
	outbox    chan protocol.ClientMessage

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

func New(cfg Config, tokens TokenSource, lobbies LobbyAPI, st *store.Store, events Events, log *zap.Logger) *Manager {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &Manager{
		cfg:      cfg,
		tokens:   tokens,
		lobbies:  lobbies,
		store:    st,
		events:   events,
		log:      log,
		clientID: uuid.NewString(),
		outbox:   make(chan protocol.ClientMessage, 64),
	}
}

// Connect exchanges the credential, dials, announces the game room and
// starts the pump loops. Transport failures are logged, not escalated:
// the engine simply stays disconnected and dispatch becomes a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		m.log.Error("token exchange failed", zap.Error(err))
		return err
	}
	c, err := m.dial(ctx, token)
	if err != nil {
		m.log.Error("connect failed, staying down", zap.Error(err))
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.conn = c
	m.cancel = cancel
	m.mu.Unlock()
	m.connected.Store(true)

	m.enqueue(m.joinMessage())
	go m.run(runCtx, c)

	// A join into an already-running game can lose its snapshot; arm
	// the recovery timer so the store requests a rejoin if none arrives.
	info, err := m.lobbies.Lobby(ctx, m.cfg.GameID)
	if err != nil {
		m.log.Debug("lobby check skipped", zap.Error(err))
	} else if info.Status == StatusActive {
		m.store.Inbox() <- store.PrimeRejoin{}
	}
	return nil
}

// dial tries the primary endpoint, then the fixed fallback exactly once
// per connection attempt - and only when the primary was a relative
// path, whose resolution is ambiguous outside a browser.
func (m *Manager) dial(ctx context.Context, token string) (*websocket.Conn, error) {
	opts := &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": {"Bearer " + token}},
	}
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DialTimeout)
	c, _, err := websocket.Dial(dctx, m.cfg.PrimaryURL, opts)
	cancel()
	if err == nil {
		return c, nil
	}
	if m.cfg.FallbackURL == "" || strings.Contains(m.cfg.PrimaryURL, "://") {
		return nil, err
	}
	m.log.Warn("primary endpoint failed, trying fallback",
		zap.String("primary", m.cfg.PrimaryURL), zap.Error(err))
	dctx, cancel = context.WithTimeout(ctx, m.cfg.DialTimeout)
	defer cancel()
	c, _, err = websocket.Dial(dctx, m.cfg.FallbackURL, opts)
	return c, err
}

func (m *Manager) run(ctx context.Context, c *websocket.Conn) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return m.readLoop(ctx, c) })
	eg.Go(func() error { return m.writeLoop(ctx, c) })
	err := eg.Wait()
	m.connected.Store(false)
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		m.log.Info("connection closed")
	default:
		m.log.Warn("connection lost", zap.Error(err))
	}
}

func (m *Manager) readLoop(ctx context.Context, c *websocket.Conn) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		var sm protocol.ServerMessage
		if err := json.Unmarshal(data, &sm); err != nil {
			m.log.Warn("bad server message", zap.Error(err))
			continue
		}
		m.route(ctx, sm)
	}
}

func (m *Manager) route(ctx context.Context, sm protocol.ServerMessage) {
	switch sm.Type {
	case protocol.MsgSnapshot, protocol.MsgUpdated:
		if sm.State == nil {
			m.log.Warn("state message without state", zap.String("type", sm.Type))
			return
		}
		m.store.Inbox() <- store.Apply{State: sm.State}

	case protocol.MsgError:
		m.log.Warn("server rejected action", zap.String("message", sm.Message))
		if m.events.OnError != nil {
			m.events.OnError(sm.Message)
		}
		// A rejection may carry a corrective snapshot; apply it like
		// any other authoritative update.
		if sm.State != nil {
			m.store.Inbox() <- store.Apply{State: sm.State}
		}

	case protocol.MsgLobbyUpdated, protocol.MsgGameStarted, protocol.MsgGameStatus:
		info, err := m.lobbies.Lobby(ctx, m.cfg.GameID)
		if err != nil {
			m.log.Warn("lobby refetch failed", zap.Error(err))
			return
		}
		if m.events.OnLobby != nil {
			m.events.OnLobby(info)
		}
		// Re-announce membership and, if the game is already running
		// with no state on our side, arm the missed-snapshot recovery.
		m.enqueue(m.joinMessage())
		if info.Status == StatusActive {
			m.store.Inbox() <- store.PrimeRejoin{}
		}

	default:
		m.log.Debug("ignoring server message", zap.String("type", sm.Type))
	}
}

func (m *Manager) writeLoop(ctx context.Context, c *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-m.outbox:
			data, err := json.Marshal(msg)
			if err != nil {
				m.log.Warn("marshal failed", zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = c.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// Send implements dispatch.Sender. While disconnected it fails fast;
// the dispatcher logs and drops, matching the fire-and-forget contract.
func (m *Manager) Send(msg protocol.ClientMessage) error {
	if !m.connected.Load() {
		return ErrNotConnected
	}
	select {
	case m.outbox <- msg:
		return nil
	default:
		return ErrBackpressure
	}
}

// Rejoin requests a fresh snapshot; wired as the store's rejoin timer
// callback.
func (m *Manager) Rejoin() {
	if err := m.Send(protocol.ClientMessage{Type: protocol.MsgRejoin, GameID: m.cfg.GameID, ClientID: m.clientID}); err != nil {
		m.log.Debug("rejoin dropped", zap.Error(err))
	}
}

func (m *Manager) Connected() bool { return m.connected.Load() }

func (m *Manager) Close() {
	m.mu.Lock()
	cancel, c := m.cancel, m.conn
	m.cancel, m.conn = nil, nil
	m.mu.Unlock()
	m.connected.Store(false)
	if cancel != nil {
		cancel()
	}
	if c != nil {
		_ = c.Close(websocket.StatusNormalClosure, "bye")
	}
}

func (m *Manager) joinMessage() protocol.ClientMessage {
	return protocol.ClientMessage{Type: protocol.MsgJoin, GameID: m.cfg.GameID, ClientID: m.clientID}
}

func (m *Manager) enqueue(msg protocol.ClientMessage) {
	select {
	case m.outbox <- msg:
	default:
		m.log.Warn("outbox full, message dropped", zap.String("type", msg.Type))
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/bus"
	"github.com/cardloft/tabletop-client/internal/cardcache"
	"github.com/cardloft/tabletop-client/internal/config"
	"github.com/cardloft/tabletop-client/internal/conn"
	"github.com/cardloft/tabletop-client/internal/dispatch"
	"github.com/cardloft/tabletop-client/internal/game"
	"github.com/cardloft/tabletop-client/internal/protocol"
	"github.com/cardloft/tabletop-client/internal/store"
)

func main() {
	log, _ := zap.NewDevelopment()
	defer log.Sync()

	cfg := config.Load(log)
	var (
		serverFlag   = flag.String("server", cfg.ServerURL, "game channel endpoint")
		fallbackFlag = flag.String("fallback", cfg.FallbackURL, "fallback channel endpoint")
		apiFlag      = flag.String("api", "http://localhost:8080", "REST collaborator base URL")
		gameFlag     = flag.String("game", cfg.GameID, "game identifier")
		sessionFlag  = flag.String("session", cfg.SessionCookie, "session cookie value")
		seatFlag     = flag.Int("seat", 1, "local seat number")
		drawFlag     = flag.Int("draw", 0, "draw N cards once the first snapshot lands")
	)
	flag.Parse()

	if *gameFlag == "" {
		log.Fatal("missing -game")
	}

	ctx := context.Background()

	cache := cardcache.New()
	if err := cache.Load(cfg.CardCachePath); err != nil {
		log.Warn("card cache load failed", zap.Error(err))
	}
	log.Info("card cache ready", zap.Int("cards", cache.Len()))

	var mgr *conn.Manager
	st := store.New(ctx, cfg.RejoinDelay, func() {
		if mgr != nil {
			mgr.Rejoin()
		}
	}, log)

	mgr = conn.New(
		conn.Config{PrimaryURL: *serverFlag, FallbackURL: *fallbackFlag, GameID: *gameFlag},
		conn.NewHTTPAuth(*apiFlag, *sessionFlag),
		conn.NewHTTPLobby(*apiFlag),
		st,
		conn.Events{
			OnError: func(msg string) { log.Warn("action rejected", zap.String("message", msg)) },
			OnLobby: func(info conn.LobbyInfo) { log.Info("lobby", zap.String("status", info.Status)) },
		},
		log,
	)
	defer mgr.Close()

	if err := mgr.Connect(ctx); err != nil {
		log.Fatal("connect failed", zap.Error(err))
	}

	d := dispatch.New(*gameFlag, st, mgr, bus.New(), log)

	snaps := make(chan store.Snapshot, 8)
	st.Inbox() <- store.Subscribe{ID: "main", Outbox: snaps}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	drawn := false
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			if *drawFlag > 0 && !drawn {
				drawn = true
				d.Dispatch(protocol.Action{Type: protocol.ActionDraw, Seat: game.Seat(*seatFlag), N: *drawFlag})
			}
			log.Info("state",
				zap.Int("version", snap.Version),
				zap.Int("objects", len(snap.State.Objects)),
				zap.Int("players", len(snap.State.Players)))
		case <-stop:
			st.Inbox() <- store.Shutdown{}
			return
		}
	}
}

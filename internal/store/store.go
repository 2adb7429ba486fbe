// Package store holds the single locally-cached copy of shared game
// state. The server is the single source of truth: snapshots replace
// the state wholesale, the client never merges or patches in place.
package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cardloft/tabletop-client/internal/game"
)

type Msg interface{ isStoreMsg() }

// Apply replaces the state with an authoritative snapshot. Stale or
// duplicate deliveries (version <= current) are discarded.
type Apply struct {
	State *game.State
}

func (Apply) isStoreMsg() {}

type Subscribe struct {
	ID     string
	Outbox chan Snapshot // where this subscriber wants to receive snapshots
}

func (Subscribe) isStoreMsg() {}

type Unsubscribe struct{ ID string }

func (Unsubscribe) isStoreMsg() {}

// PrimeRejoin arms the one-shot recovery timer for a missed initial
// snapshot. Ignored when state is already loaded; superseded by any
// accepted snapshot.
type PrimeRejoin struct{}

func (PrimeRejoin) isStoreMsg() {}

type Shutdown struct{}

func (Shutdown) isStoreMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isStoreMsg() {}

// rejoinFired is internal; stale generations are dropped.
type rejoinFired struct{ gen int }

func (rejoinFired) isStoreMsg() {}

// Snapshot is what subscribers receive: a self-consistent
// (state, index) pair for one version. Consumers treat both as
// immutable.
type Snapshot struct {
	Version int
	State   *game.State
	Index   game.ZoneIndex
}

// View reflects internal state without data races; used by the
// dispatcher's version read and by tests.
type View struct {
	Loaded         bool
	Version        int
	NumSubscribers int
	RejoinArmed    bool
	State          *game.State
	Index          game.ZoneIndex
}

type Store struct {
	inbox       chan Msg
	state       *game.State
	index       game.ZoneIndex
	subs        map[string]chan Snapshot
	rejoinDelay time.Duration
	rejoin      func() // invoked when the rejoin timer fires
	rejoinGen   int
	rejoinArmed bool
	log         *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(parent context.Context, rejoinDelay time.Duration, rejoin func(), log *zap.Logger) *Store {
	ctx, cancel := context.WithCancel(parent)
	s := &Store{
		inbox:       make(chan Msg, 64),
		subs:        make(map[string]chan Snapshot),
		rejoinDelay: rejoinDelay,
		rejoin:      rejoin,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
	go s.loop()
	return s
}

func (s *Store) Inbox() chan<- Msg { return s.inbox }

// CurrentVersion reports the last applied version, false when no state
// is loaded yet.
func (s *Store) CurrentVersion() (int, bool) {
	v, ok := s.view()
	return v.Version, ok && v.Loaded
}

// Current returns the latest self-consistent snapshot, false when no
// state is loaded yet.
func (s *Store) Current() (Snapshot, bool) {
	v, ok := s.view()
	if !ok || !v.Loaded {
		return Snapshot{}, false
	}
	return Snapshot{Version: v.Version, State: v.State, Index: v.Index}, true
}

func (s *Store) view() (View, bool) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- GetView{Reply: reply}:
	case <-s.ctx.Done():
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-s.ctx.Done():
		return View{}, false
	}
}

func (s *Store) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Apply:
				s.apply(msg.State)

			case Subscribe:
				s.subs[msg.ID] = msg.Outbox
				if s.state != nil {
					msg.Outbox <- Snapshot{Version: s.state.Version, State: s.state, Index: s.index}
				}

			case Unsubscribe:
				delete(s.subs, msg.ID)

			case PrimeRejoin:
				s.primeRejoin()

			case rejoinFired:
				if msg.gen != s.rejoinGen || s.state != nil {
					break // superseded or recovered in the meantime
				}
				s.rejoinArmed = false
				s.log.Info("no snapshot received, requesting rejoin")
				if s.rejoin != nil {
					s.rejoin()
				}

			case GetView:
				msg.Reply <- View{
					Loaded:         s.state != nil,
					Version:        s.version(),
					NumSubscribers: len(s.subs),
					RejoinArmed:    s.rejoinArmed,
					State:          s.state,
					Index:          s.index,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Store) apply(next *game.State) {
	if next == nil {
		return
	}
	if s.state != nil && next.Version <= s.state.Version {
		s.log.Debug("discarding stale snapshot",
			zap.Int("have", s.state.Version), zap.Int("got", next.Version))
		return
	}
	s.state = next
	s.index = game.BuildZoneIndex(next.Objects)
	// Any accepted snapshot supersedes a pending rejoin.
	s.rejoinGen++
	s.rejoinArmed = false
	s.broadcast(Snapshot{Version: next.Version, State: next, Index: s.index})
}

func (s *Store) primeRejoin() {
	if s.state != nil || s.rejoinDelay <= 0 {
		return
	}
	s.rejoinGen++
	s.rejoinArmed = true
	gen := s.rejoinGen
	time.AfterFunc(s.rejoinDelay, func() {
		select {
		case s.inbox <- rejoinFired{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

func (s *Store) version() int {
	if s.state == nil {
		return 0
	}
	return s.state.Version
}

func (s *Store) broadcast(snap Snapshot) {
	for id, ch := range s.subs {
		select {
		case ch <- snap:
			// ok
		default:
			// Subscriber is slow/full - drop them.
			close(ch)
			delete(s.subs, id)
		}
	}
}

func (s *Store) shutdown() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.cancel()
}

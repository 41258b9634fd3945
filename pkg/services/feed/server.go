package feed

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"go.uber.org/zap"
)

// Ledger is the part of the blockchain the feed needs: event subscriptions.
type Ledger interface {
	SubscribeForBlocks(ch chan<- *block.Block)
	UnsubscribeFromBlocks(ch chan<- *block.Block)
	SubscribeForExecutions(ch chan<- *state.AppExecResult)
	UnsubscribeFromExecutions(ch chan<- *state.AppExecResult)
}

const (
	// Per-subscriber buffer, slow readers get dropped once it fills.
	subscriberBufSize = 64
	chainBufSize      = 16
)

type subscriber struct {
	id     uuid.UUID
	conn   *websocket.Conn
	ch     chan Event
	filter Filter
	lock   sync.RWMutex
}

func (s *subscriber) getFilter() Filter {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.filter
}

func (s *subscriber) setFilter(f Filter) {
	s.lock.Lock()
	s.filter = f
	s.lock.Unlock()
}

// Server streams chain events to websocket subscribers. A client connects
// to /ws, optionally sends Filter messages to narrow the stream and
// receives Event messages.
type Server struct {
	http     *http.Server
	cfg      config.BasicService
	log      *zap.Logger
	chain    Ledger
	upgrader websocket.Upgrader

	subLock sync.RWMutex
	subs    map[uuid.UUID]*subscriber

	blockCh chan *block.Block
	execCh  chan *state.AppExecResult
	quit    chan struct{}
	done    chan struct{}
}

// NewServer creates a feed server bound to the given chain.
func NewServer(chain Ledger, cfg config.BasicService, log *zap.Logger) *Server {
	if log == nil {
		return nil
	}
	s := &Server{
		cfg:     cfg,
		log:     log.With(zap.String("service", "Feed")),
		chain:   chain,
		subs:    make(map[uuid.UUID]*subscriber),
		blockCh: make(chan *block.Block, chainBufSize),
		execCh:  make(chan *state.AppExecResult, chainBufSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{
		Addr:    cfg.GetAddress(),
		Handler: mux,
	}
	return s
}

// Start runs the feed on the configured port.
func (s *Server) Start() {
	if !s.cfg.Enabled {
		s.log.Info("service hasn't started since it's disabled")
		return
	}
	s.chain.SubscribeForBlocks(s.blockCh)
	s.chain.SubscribeForExecutions(s.execCh)
	go s.pump()

	s.log.Info("service is running", zap.String("endpoint", s.http.Addr))
	err := s.http.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.log.Warn("service couldn't start on configured port", zap.Error(err))
	}
}

// ShutDown stops the feed and drops all subscribers.
func (s *Server) ShutDown() {
	if !s.cfg.Enabled {
		return
	}
	s.log.Info("shutting down service", zap.String("endpoint", s.http.Addr))
	s.chain.UnsubscribeFromBlocks(s.blockCh)
	s.chain.UnsubscribeFromExecutions(s.execCh)
	close(s.quit)
	<-s.done
	if err := s.http.Shutdown(context.Background()); err != nil {
		s.log.Error("can't shut service down", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	sub := &subscriber{
		id:   uuid.New(),
		conn: conn,
		ch:   make(chan Event, subscriberBufSize),
	}
	s.subLock.Lock()
	s.subs[sub.id] = sub
	s.subLock.Unlock()
	s.log.Info("subscriber connected",
		zap.String("id", sub.id.String()),
		zap.String("remote", conn.RemoteAddr().String()))

	go s.writeLoop(sub)
	s.readLoop(sub)
}

// readLoop accepts filter updates until the connection dies, then drops
// the subscriber.
func (s *Server) readLoop(sub *subscriber) {
	defer s.dropSubscriber(sub)
	for {
		var f Filter
		if err := sub.conn.ReadJSON(&f); err != nil {
			return
		}
		sub.setFilter(f)
		s.log.Debug("subscriber filter updated",
			zap.String("id", sub.id.String()),
			zap.Uint64("fingerprint", f.Fingerprint()))
	}
}

func (s *Server) writeLoop(sub *subscriber) {
	for ev := range sub.ch {
		if err := sub.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (s *Server) dropSubscriber(sub *subscriber) {
	s.subLock.Lock()
	_, ok := s.subs[sub.id]
	delete(s.subs, sub.id)
	s.subLock.Unlock()
	if !ok {
		return
	}
	close(sub.ch)
	_ = sub.conn.Close()
	s.log.Info("subscriber disconnected", zap.String("id", sub.id.String()))
}

// pump fans chain events out to subscribers. Sends never block, a
// subscriber that can't keep up loses events.
func (s *Server) pump() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			s.subLock.Lock()
			for id, sub := range s.subs {
				delete(s.subs, id)
				close(sub.ch)
				_ = sub.conn.Close()
			}
			s.subLock.Unlock()
			return
		case b := <-s.blockCh:
			s.broadcast(Event{Type: BlockEventType, Payload: b}, func(f Filter) bool {
				return f.MatchesBlock(b)
			})
		case aer := <-s.execCh:
			s.broadcast(Event{Type: ExecutionEventType, Payload: aer}, func(f Filter) bool {
				return f.MatchesExecution(aer)
			})
			for i := range aer.Events {
				n := &aer.Events[i]
				s.broadcast(Event{Type: NotificationEventType, Payload: n}, func(f Filter) bool {
					return f.MatchesNotification(n)
				})
			}
		}
	}
}

func (s *Server) broadcast(ev Event, matches func(Filter) bool) {
	s.subLock.RLock()
	defer s.subLock.RUnlock()
	for _, sub := range s.subs {
		if !matches(sub.getFilter()) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			s.log.Debug("subscriber is slow, event dropped",
				zap.String("id", sub.id.String()))
		}
	}
}

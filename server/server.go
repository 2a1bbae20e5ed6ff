package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"Tcp_postgres_redis_library_system/db"
	"Tcp_postgres_redis_library_system/protocol"
	"Tcp_postgres_redis_library_system/session"

	"github.com/redis/go-redis/v9"
)

// Options carries the server's tunables out of config.
type Options struct {
	ListenAddr    string
	MaxFrameSize  uint32
	SweepInterval time.Duration
	SeenThrottle  time.Duration
}

// Server accepts connections and runs one goroutine per client. Stop closes
// the listener and every live connection, unblocking handlers stuck in a
// read.
type Server struct {
	opts       Options
	dispatcher *Dispatcher
	repo       *db.Repo

	ln      net.Listener
	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	running atomic.Bool
	wg      sync.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(opts Options, tokens *session.TokenService, repo *db.Repo, rdb *redis.Client) *Server {
	if opts.MaxFrameSize == 0 {
		opts.MaxFrameSize = protocol.DefaultMaxFrameSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:       opts,
		dispatcher: NewDispatcher(tokens, newPresence(repo, rdb, opts.SeenThrottle)),
		repo:       repo,
		conns:      make(map[net.Conn]struct{}),
		baseCtx:    ctx,
		cancel:     cancel,
	}
}

// Dispatcher exposes the action table for route registration.
func (s *Server) Dispatcher() *Dispatcher { return s.dispatcher }

// Start binds the listener and spawns the accept loop and the overdue
// sweeper. It returns once the address is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.running.Store(true)
	log.Printf("server listening on %s", ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop()

	if s.opts.SweepInterval > 0 {
		s.wg.Add(1)
		go s.sweepLoop()
	}
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if s.running.Load() {
				log.Printf("accept: %v", err)
			}
			return
		}
		if !s.running.Load() {
			_ = c.Close()
			return
		}
		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go s.handleConn(c)
	}
}

func (s *Server) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-ticker.C:
			n, err := s.repo.SweepOverdue(s.baseCtx, time.Now().UTC())
			if err != nil {
				log.Printf("overdue sweep: %v", err)
			} else if n > 0 {
				log.Printf("overdue sweep: %d transactions marked overdue", n)
			}
		}
	}
}

// handleConn drives one connection: read a frame, dispatch, respond,
// repeat. Requests on one connection are strictly sequential.
func (s *Server) handleConn(c net.Conn) {
	defer s.wg.Done()
	cs := &ConnState{RemoteAddr: c.RemoteAddr().String()}
	log.Printf("client connected from %s", cs.RemoteAddr)

	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		_ = c.Close()
		log.Printf("client disconnected from %s", cs.RemoteAddr)
	}()

	for s.running.Load() {
		req, err := protocol.ReadRequest(c, s.opts.MaxFrameSize)
		if err != nil {
			var ferr *protocol.FrameError
			switch {
			case errors.Is(err, io.EOF):
				// clean close
			case errors.As(err, &ferr):
				log.Printf("dropping %s: %v", cs.RemoteAddr, ferr)
			case s.running.Load():
				log.Printf("read from %s: %v", cs.RemoteAddr, err)
			}
			return
		}
		resp := s.dispatcher.Dispatch(s.baseCtx, cs, req)
		if err := protocol.WriteResponse(c, resp, s.opts.MaxFrameSize); err != nil {
			if s.running.Load() {
				log.Printf("write to %s: %v", cs.RemoteAddr, err)
			}
			return
		}
	}
}

// Stop flips the running flag, closes the listener and every live socket,
// then waits for the handlers to drain.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	log.Println("server stopped")
}

package redisserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// Config holds the server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string

	// IdleTimeout bounds the wait for the first byte of a request,
	// ReadTimeout the rest of it and WriteTimeout each reply. Zero
	// disables the deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimit is the sustained commands per second allowed on one
	// connection; RateBurst the bucket size. Zero RateLimit disables it.
	RateLimit float64
	RateBurst int

	// Limits bound the size of decoded requests.
	Limits resp.Limits
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:   "0.0.0.0:6379",
		Limits: resp.DefaultLimits,
	}
}

// Executor runs one command and returns its reply.
type Executor interface {
	Submit(ctx context.Context, verb command.Verb, args []string) (resp.Value, error)
}

// Metrics receives connection events.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	ProtocolError()
	Throttled()
}

type nopMetrics struct{}

func (nopMetrics) ConnectionOpened() {}
func (nopMetrics) ConnectionClosed() {}
func (nopMetrics) ProtocolError()    {}
func (nopMetrics) Throttled()        {}

// Server accepts client connections and feeds their requests to the
// executor.
type Server struct {
	cfg     *Config
	exec    Executor
	metrics Metrics
	logger  *slog.Logger

	mu      sync.Mutex
	ln      net.Listener
	cancel  context.CancelFunc
	running atomic.Bool

	conns *xsync.MapOf[string, *Conn]
	wg    sync.WaitGroup
}

// New creates a server. metrics and logger may be nil.
func New(cfg *Config, exec Executor, metrics Metrics, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		exec:    exec,
		metrics: metrics,
		logger:  logger,
		conns:   xsync.NewMapOf[string, *Conn](),
	}
}

// Start listens on cfg.Addr and serves connections in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.Serve(ctx, ln)
	return nil
}

// Serve accepts connections from ln in the background until Shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.ln = ln
	s.cancel = cancel
	s.mu.Unlock()
	s.running.Store(true)

	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis server accept failed", "error", err)
		}
	}()
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ConnCount returns the number of open client connections.
func (s *Server) ConnCount() int {
	return s.conns.Size()
}

// Shutdown stops accepting, closes every client connection and waits for
// their goroutines or for ctx to end. A request already submitted still
// executes; its reply is dropped.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	s.mu.Lock()
	ln, cancel := s.ln, s.cancel
	s.mu.Unlock()

	err := ln.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	cancel()

	s.conns.Range(func(_ string, c *Conn) bool {
		_ = c.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				s.logger.Warn("accept failed, retrying", "error", err, "delay", backoff)
				time.Sleep(backoff)
				continue
			}
			return err
		}
		backoff = 0

		c := newConn(ulid.Make().String(), nc, s.cfg)
		s.conns.Store(c.id, c)
		s.metrics.ConnectionOpened()
		if !s.running.Load() {
			// Shutdown may have ranged over conns before the Store.
			_ = c.Close()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				s.conns.Delete(c.id)
				_ = c.Close()
				s.metrics.ConnectionClosed()
			}()
			s.serveConn(ctx, c)
		}()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > time.Second {
		d = time.Second
	}
	return d
}

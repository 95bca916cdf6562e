package redisserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/telemetry/logger"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// Conn is one client connection.
type Conn struct {
	id      string
	netConn net.Conn
	br      *bufio.Reader
	rd      *resp.Reader
	wr      *resp.Writer
	limiter *rate.Limiter

	readTimeout  time.Duration
	writeTimeout time.Duration
	idleTimeout  time.Duration

	closed atomic.Bool
}

func newConn(id string, nc net.Conn, cfg *Config) *Conn {
	br := bufio.NewReader(nc)
	c := &Conn{
		id:           id,
		netConn:      nc,
		br:           br,
		rd:           resp.NewReaderWithLimits(br, cfg.Limits),
		wr:           resp.NewWriter(nc),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		idleTimeout:  cfg.IdleTimeout,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// ID returns the connection ID.
func (c *Conn) ID() string {
	return c.id
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Conn) setReadDeadline(d time.Duration) error {
	if d <= 0 {
		return c.netConn.SetReadDeadline(time.Time{})
	}
	return c.netConn.SetReadDeadline(time.Now().Add(d))
}

func (c *Conn) setWriteDeadline() error {
	if c.writeTimeout <= 0 {
		return c.netConn.SetWriteDeadline(time.Time{})
	}
	return c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
}

// reply buffers v and flushes unless more pipelined input is waiting.
func (c *Conn) reply(v resp.Value) error {
	if err := c.wr.Write(v); err != nil {
		return err
	}
	if c.br.Buffered() > 0 {
		return nil
	}
	if err := c.setWriteDeadline(); err != nil {
		return err
	}
	return c.wr.Flush()
}

// fail sends a final error and leaves the caller to close the connection.
func (c *Conn) fail(msg string) {
	_ = c.wr.Write(resp.Error(msg))
	_ = c.setWriteDeadline()
	_ = c.wr.Flush()
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	ctx = logger.WithConnID(ctx, c.id)
	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	for {
		// The idle deadline covers the wait for the next request; once a
		// byte arrives the read deadline covers the rest of it.
		if err := c.setReadDeadline(c.idleTimeout); err != nil {
			return
		}
		if _, err := c.br.Peek(1); err != nil {
			if !errors.Is(err, io.EOF) && !isClosed(err) {
				log.Debug("connection read failed", "error", err)
			}
			return
		}
		if err := c.setReadDeadline(c.readTimeout); err != nil {
			return
		}

		v, err := c.rd.Read()
		if err != nil {
			switch {
			case errors.Is(err, resp.ErrLimitExceeded), errors.Is(err, resp.ErrProtocol):
				s.metrics.ProtocolError()
				log.Warn("protocol error, closing connection", "error", err)
				c.fail(protocolError(err))
			case !errors.Is(err, io.EOF) && !isClosed(err):
				log.Debug("connection read failed", "error", err)
			}
			return
		}

		verb, args, err := parseRequest(v)
		if err != nil {
			s.metrics.ProtocolError()
			log.Warn("malformed request, closing connection", "error", err)
			c.fail(protocolError(err))
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			s.metrics.Throttled()
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
		}

		reply, err := s.exec.Submit(ctx, verb, args)
		if err != nil {
			log.Debug("command not executed", "verb", verb.String(), "error", err)
			c.fail("ERR server is shutting down")
			return
		}
		if err := c.reply(reply); err != nil {
			log.Debug("connection write failed", "error", err)
			return
		}
	}
}

var errBadRequest = errors.New("request must be a non-empty array of bulk strings")

// parseRequest splits a request into its verb and arguments.
func parseRequest(v resp.Value) (command.Verb, []string, error) {
	if v.Kind() != resp.KindArray || v.Len() == 0 {
		return command.VerbUnknown, nil, fmt.Errorf("%w, got %s", errBadRequest, v.Kind())
	}
	elems := v.Elems()
	for i, e := range elems {
		if e.Kind() != resp.KindBulkString {
			return command.VerbUnknown, nil, fmt.Errorf("%w, element %d is %s", errBadRequest, i, e.Kind())
		}
	}
	args := make([]string, len(elems)-1)
	for i, e := range elems[1:] {
		args[i] = e.Str()
	}
	return command.ParseVerb(elems[0].Str()), args, nil
}

// protocolError formats err as the reply sent before closing.
func protocolError(err error) string {
	msg := err.Error()
	for _, prefix := range []string{resp.ErrProtocol.Error(), resp.ErrLimitExceeded.Error()} {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			msg = strings.TrimPrefix(rest, ": ")
			if msg == "" {
				msg = prefix
			}
			break
		}
	}
	return "ERR protocol error: " + msg
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// DefaultDialTimeout bounds connection setup when the context has no deadline.
const DefaultDialTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection closed")

// Client is a single RESP connection to a server. Requests are serialized,
// so a Client may be shared, but a Pool gives better throughput.
type Client struct {
	addr string

	mu     sync.Mutex
	conn   net.Conn
	reader *resp.Reader
	writer *resp.Writer
	broken bool
	closed bool
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	d := net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{
		addr:   addr,
		conn:   conn,
		reader: resp.NewReader(bufio.NewReader(conn)),
		writer: resp.NewWriter(conn),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends args as one command and waits for the reply. Server errors
// come back as error values, not as a Go error. A Go error means the
// connection is no longer usable.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return resp.Value{}, ErrClosed
	}
	if c.broken {
		return resp.Value{}, fmt.Errorf("connection to %s is broken", c.addr)
	}
	if err := ctx.Err(); err != nil {
		return resp.Value{}, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, c.fail(err)
	}

	// Unblock the read if ctx is cancelled without a deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := c.writer.Write(resp.BulkStrings(args...)); err != nil {
		return resp.Value{}, c.fail(err)
	}
	if err := c.writer.Flush(); err != nil {
		return resp.Value{}, c.fail(err)
	}
	v, err := c.reader.Read()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return resp.Value{}, c.fail(err)
	}
	return v, nil
}

func (c *Client) fail(err error) error {
	c.broken = true
	return fmt.Errorf("%s: %w", c.addr, err)
}

// Healthy reports whether the connection can still be used.
func (c *Client) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && !c.broken
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

package connection

import (
	"context"
	"errors"
	"time"

	pool "github.com/jolestar/go-commons-pool/v2"

	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// PoolConfig sizes a Pool.
type PoolConfig struct {
	// MaxTotal caps the connections open at once.
	MaxTotal int
	// MaxIdle caps the connections kept open while unused.
	MaxIdle int
	// MaxWait bounds how long Do waits for a free connection when the
	// pool is exhausted. Zero waits until the context ends.
	MaxWait time.Duration
}

// DefaultPoolConfig returns a pool of up to 8 connections.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxTotal: 8, MaxIdle: 8}
}

// Pool shares connections to one server between goroutines.
type Pool struct {
	addr    string
	maxWait time.Duration
	p       *pool.ObjectPool
}

type clientFactory struct {
	addr string
}

func (f *clientFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	c, err := Dial(ctx, f.addr)
	if err != nil {
		return nil, err
	}
	return pool.NewPooledObject(c), nil
}

func (f *clientFactory) DestroyObject(_ context.Context, obj *pool.PooledObject) error {
	return obj.Object.(*Client).Close()
}

func (f *clientFactory) ValidateObject(_ context.Context, obj *pool.PooledObject) bool {
	return obj.Object.(*Client).Healthy()
}

func (f *clientFactory) ActivateObject(context.Context, *pool.PooledObject) error {
	return nil
}

func (f *clientFactory) PassivateObject(context.Context, *pool.PooledObject) error {
	return nil
}

// NewPool creates a pool for addr. Connections are dialed lazily.
func NewPool(ctx context.Context, addr string, cfg PoolConfig) *Pool {
	pc := pool.NewDefaultPoolConfig()
	if cfg.MaxTotal > 0 {
		pc.MaxTotal = cfg.MaxTotal
	}
	if cfg.MaxIdle > 0 {
		pc.MaxIdle = cfg.MaxIdle
	}
	pc.TestOnBorrow = true
	pc.TestOnReturn = true

	return &Pool{
		addr:    addr,
		maxWait: cfg.MaxWait,
		p:       pool.NewObjectPool(ctx, &clientFactory{addr: addr}, pc),
	}
}

// Addr returns the server address.
func (p *Pool) Addr() string {
	return p.addr
}

// Do borrows a connection, runs one command on it and gives it back.
// Broken connections are discarded instead of being returned.
func (p *Pool) Do(ctx context.Context, args ...string) (resp.Value, error) {
	borrowCtx := ctx
	if p.maxWait > 0 {
		var cancel context.CancelFunc
		borrowCtx, cancel = context.WithTimeout(ctx, p.maxWait)
		defer cancel()
	}
	obj, err := p.p.BorrowObject(borrowCtx)
	if err != nil {
		return resp.Value{}, err
	}
	c, ok := obj.(*Client)
	if !ok {
		return resp.Value{}, errors.New("pool returned a foreign object")
	}

	v, doErr := c.Do(ctx, args...)
	if c.Healthy() {
		err = p.p.ReturnObject(ctx, c)
	} else {
		err = p.p.InvalidateObject(ctx, c)
	}
	if doErr != nil {
		return resp.Value{}, doErr
	}
	return v, err
}

// Active returns the number of borrowed connections.
func (p *Pool) Active() int {
	return p.p.GetNumActive()
}

// Idle returns the number of open connections waiting to be borrowed.
func (p *Pool) Idle() int {
	return p.p.GetNumIdle()
}

// Close closes every idle connection and rejects further use.
func (p *Pool) Close(ctx context.Context) {
	p.p.Close(ctx)
}

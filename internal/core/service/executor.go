package service

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/internal/telemetry/logger"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// ExecFunc runs one command. command.Execute is the default.
type ExecFunc func(s command.Store, verb command.Verb, args []string) resp.Value

// Observer receives per-command measurements. Implementations must be
// safe for use from the worker goroutine while other goroutines read them.
type Observer interface {
	CommandExecuted(verb command.Verb, reply resp.Value, elapsed time.Duration)
	CommandPanicked(verb command.Verb)
}

type nopObserver struct{}

func (nopObserver) CommandExecuted(command.Verb, resp.Value, time.Duration) {}
func (nopObserver) CommandPanicked(command.Verb)                            {}

// ExecutorConfig holds configuration for Executor.
type ExecutorConfig struct {
	// QueueWarn logs a warning when the queue grows past this depth
	// (0 disables the warning).
	QueueWarn int

	// Exec replaces command.Execute.
	Exec ExecFunc

	// Observer receives command measurements.
	Observer Observer

	Logger *slog.Logger
}

// DefaultExecutorConfig returns default configuration.
func DefaultExecutorConfig() *ExecutorConfig {
	return &ExecutorConfig{
		QueueWarn: 1024,
		Exec:      command.Execute,
		Observer:  nopObserver{},
		Logger:    slog.Default(),
	}
}

type request struct {
	verb   command.Verb
	args   []string
	connID string
	once   sync.Once
	done   chan resp.Value
}

func (r *request) complete(v resp.Value) {
	r.once.Do(func() {
		r.done <- v
	})
}

// Executor runs submitted commands one at a time, in arrival order.
type Executor struct {
	store     command.Store
	exec      ExecFunc
	observer  Observer
	logger    *slog.Logger
	queueWarn int

	mu       sync.Mutex
	queue    []*request
	running  bool
	stopping bool
	warned   bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	notify   chan struct{}

	executed atomic.Uint64
	panics   atomic.Uint64
}

// NewExecutor creates an Executor for store. It must be started before
// it accepts submissions.
func NewExecutor(store command.Store, config *ExecutorConfig) *Executor {
	def := DefaultExecutorConfig()
	if config == nil {
		config = def
	}
	e := &Executor{
		store:     store,
		exec:      config.Exec,
		observer:  config.Observer,
		logger:    config.Logger,
		queueWarn: config.QueueWarn,
		notify:    make(chan struct{}, 1),
	}
	if e.exec == nil {
		e.exec = def.Exec
	}
	if e.observer == nil {
		e.observer = def.Observer
	}
	if e.logger == nil {
		e.logger = def.Logger
	}
	return e
}

// Start launches the worker. Starting a running executor is a no-op.
// Starting an executor whose Stop gave up before the queue drained
// cancels that stop: the same worker keeps running and submissions are
// accepted again.
func (e *Executor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		if e.stopping {
			e.stopping = false
			e.stopCh = make(chan struct{})
		}
		return
	}
	e.running = true
	e.stopping = false
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	go e.worker(e.doneCh)
}

// Stop rejects new submissions, lets the worker drain the queue and waits
// for it to exit or for ctx to end. When ctx ends first Stop returns
// ctx.Err() and the worker keeps draining in the background; the executor
// is stopped once the queue is empty. Stopping a stopped executor is a
// no-op.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	if !e.stopping {
		e.stopping = true
		close(e.stopCh)
	}
	doneCh := e.doneCh
	e.mu.Unlock()

	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues a command and waits for its result. If ctx ends first,
// Submit returns ctx.Err(); the command still runs and its result is
// dropped.
func (e *Executor) Submit(ctx context.Context, verb command.Verb, args []string) (resp.Value, error) {
	req := &request{
		verb:   verb,
		args:   args,
		connID: logger.ConnIDFromContext(ctx),
		done:   make(chan resp.Value, 1),
	}

	e.mu.Lock()
	if !e.running || e.stopping {
		e.mu.Unlock()
		return resp.Value{}, domain.ErrExecutorStopped
	}
	e.queue = append(e.queue, req)
	depth := len(e.queue)
	warn := e.queueWarn > 0 && depth > e.queueWarn && !e.warned
	if warn {
		e.warned = true
	}
	e.mu.Unlock()

	if warn {
		e.logger.Warn("executor queue is backing up", "depth", depth, "threshold", e.queueWarn)
	}

	select {
	case e.notify <- struct{}{}:
	default:
	}

	select {
	case v := <-req.done:
		return v, nil
	case <-ctx.Done():
		return resp.Value{}, ctx.Err()
	}
}

// QueueDepth returns the number of requests waiting to execute.
func (e *Executor) QueueDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Running reports whether the worker accepts submissions.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running && !e.stopping
}

// Executed returns the number of completed requests since creation.
func (e *Executor) Executed() uint64 {
	return e.executed.Load()
}

// Panics returns the number of commands that panicked since creation.
func (e *Executor) Panics() uint64 {
	return e.panics.Load()
}

func (e *Executor) worker(doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		req, ok := e.next()
		if !ok {
			return
		}
		e.execute(req)
	}
}

// next blocks until a request is queued. It returns false once the
// executor is stopping and the queue is empty.
func (e *Executor) next() (*request, bool) {
	for {
		e.mu.Lock()
		if len(e.queue) > 0 {
			req := e.queue[0]
			e.queue[0] = nil
			e.queue = e.queue[1:]
			if len(e.queue) == 0 {
				e.warned = false
			}
			e.mu.Unlock()
			return req, true
		}
		if e.stopping {
			e.running = false
			e.stopping = false
			e.queue = nil
			e.mu.Unlock()
			return nil, false
		}
		stopCh := e.stopCh
		e.mu.Unlock()

		select {
		case <-e.notify:
		case <-stopCh:
		}
	}
}

func (e *Executor) execute(req *request) {
	start := time.Now()
	reply := e.run(req)
	elapsed := time.Since(start)

	e.executed.Add(1)
	e.observer.CommandExecuted(req.verb, reply, elapsed)
	req.complete(reply)
}

func (e *Executor) run(req *request) (reply resp.Value) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			e.logger.Error("command panicked",
				"verb", req.verb.String(),
				"conn_id", req.connID,
				"panic", r,
				"stack", string(debug.Stack()))
			e.observer.CommandPanicked(req.verb)
			reply = resp.Error(command.MsgUnknownError)
		}
	}()
	return e.exec(e.store, req.verb, req.args)
}

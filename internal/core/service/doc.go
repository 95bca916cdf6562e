// Package service provides the command executor.
//
// The Executor is the single serialization point for command side effects.
// Any number of connection handlers may Submit concurrently; one worker
// goroutine takes requests in arrival order and runs each to completion
// before starting the next, which gives all commands a single total order.
//
// Request lifecycle:
//
//	pending -> executing -> completed(result)
//
// Every submitted request is completed exactly once. A panic inside a
// command is recovered at the worker boundary, logged, and delivered to
// its caller as the "Unknown error" value; the worker keeps going.
//
// Stop policy: after Stop, new submissions fail with
// domain.ErrExecutorStopped while requests already queued are drained
// before the worker exits. A stopped executor can be started again.
package service

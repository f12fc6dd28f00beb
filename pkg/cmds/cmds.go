// Package cmds provides the standard leaf commands used with command groups:
// function adapters, printing, timed delays, shared-store writes, and shell
// execution.
package cmds

import "github.com/hay-kot/convoy/pkg/command"

// Func adapts a plain function into a synchronous command.
type Func struct {
	fn func()
}

// NewFunc wraps fn; the command completes when fn returns.
func NewFunc(fn func()) *Func {
	return &Func{fn: fn}
}

// Execute runs the wrapped function.
func (c *Func) Execute() { c.fn() }

// AsyncFunc adapts a callback-style function into an asynchronous command.
// The wrapped function receives the completion callback and must invoke it
// exactly once when its work finishes.
type AsyncFunc struct {
	fn   func(done func())
	done func()
}

// NewAsyncFunc wraps fn.
func NewAsyncFunc(fn func(done func())) *AsyncFunc {
	return &AsyncFunc{fn: fn}
}

// SetOnComplete implements command.Completable.
func (c *AsyncFunc) SetOnComplete(fn func()) { c.done = fn }

// Execute starts the wrapped function, handing it the completion callback.
func (c *AsyncFunc) Execute() {
	done := c.done
	if done == nil {
		done = func() {}
	}
	c.fn(done)
}

// Set writes a key/value pair into the shared store. It is the data-exchange
// building block for plans and tests: a later command in the same tree reads
// the value back through the same store instance.
type Set struct {
	key   string
	value any
	store *command.Store
}

// NewSet creates a store-write command.
func NewSet(key string, value any) *Set {
	return &Set{key: key, value: value}
}

// SetStore implements command.StoreAware.
func (c *Set) SetStore(s *command.Store) { c.store = s }

// Execute writes the pair. Without a store attached it does nothing.
func (c *Set) Execute() {
	if c.store == nil {
		return
	}
	c.store.Set(c.key, c.value)
}

// Package command provides a composable unit-of-work abstraction: commands
// that execute synchronously or asynchronously, and groups that run a set of
// commands concurrently or in strict sequence. Groups satisfy the command
// contract themselves, so execution plans nest to arbitrary depth.
package command

// Command is a unit of executable work. Execute begins the work; for
// synchronous commands it returns once the work is done, for asynchronous
// commands it returns immediately and completion is signaled through the
// callback injected via Completable.
type Command interface {
	Execute()
}

// Completable is an asynchronous command. The owner injects a completion
// callback before calling Execute; the command must invoke it exactly once
// when its work finishes. A command that never invokes the callback stalls
// its owning group forever.
type Completable interface {
	Command
	SetOnComplete(fn func())
}

// Cancellable is an asynchronous command that supports early termination.
// After Cancel returns the command may still be tearing down, but it must
// not invoke its completion callback afterward. Cancelling a command that
// has already finished is a no-op.
type Cancellable interface {
	Completable
	Cancel()
}

// StoreAware is an optional capability: commands that declare it receive the
// owning group's shared store before Execute is called. Groups are StoreAware
// and propagate the store they receive to their own children, so every
// store-aware command in one tree observes the same instance.
type StoreAware interface {
	SetStore(s *Store)
}

package cmds

import (
	"sync"
	"time"
)

// Delay is a cancellable command that completes after a fixed duration.
// Cancel stops the timer; a cancelled delay never invokes its completion
// callback.
type Delay struct {
	d time.Duration

	mu        sync.Mutex
	done      func()
	timer     *time.Timer
	cancelled bool
}

// NewDelay creates a delay command for the given duration.
func NewDelay(d time.Duration) *Delay {
	return &Delay{d: d}
}

// SetOnComplete implements command.Completable.
func (c *Delay) SetOnComplete(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = fn
}

// Execute arms the timer and returns immediately.
func (c *Delay) Execute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = false
	c.timer = time.AfterFunc(c.d, c.fire)
}

// Cancel stops the timer. The completion callback will not be invoked even
// if the timer already fired and the callback is racing to run.
func (c *Delay) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	t := c.timer
	c.timer = nil
	c.mu.Unlock()

	if t != nil {
		t.Stop()
	}
}

func (c *Delay) fire() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	fn := c.done
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}

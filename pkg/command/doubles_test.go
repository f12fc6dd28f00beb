package command

import "sync"

// spy records the order in which commands execute.
type spy struct {
	mu    sync.Mutex
	order []string
}

func (s *spy) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, name)
}

func (s *spy) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// syncCmd completes as soon as Execute returns.
type syncCmd struct {
	name string
	spy  *spy
}

func (c *syncCmd) Execute() { c.spy.record(c.name) }

// asyncCmd suspends after Execute until the test fires complete.
type asyncCmd struct {
	name string
	spy  *spy

	mu      sync.Mutex
	done    func()
	started bool
}

func (c *asyncCmd) SetOnComplete(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = fn
}

func (c *asyncCmd) Execute() {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()
	c.spy.record(c.name)
}

func (c *asyncCmd) complete() {
	c.mu.Lock()
	fn := c.done
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *asyncCmd) wasStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// cancelCmd is an asyncCmd that also supports cancellation.
type cancelCmd struct {
	asyncCmd
	cancelled bool
}

func (c *cancelCmd) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
}

func (c *cancelCmd) wasCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// inlineCmd is a completable that finishes synchronously inside Execute.
type inlineCmd struct {
	name string
	spy  *spy
	done func()
}

func (c *inlineCmd) SetOnComplete(fn func()) { c.done = fn }

func (c *inlineCmd) Execute() {
	c.spy.record(c.name)
	c.done()
}

// storeCmd captures the shared store it was handed.
type storeCmd struct {
	name  string
	spy   *spy
	store *Store
}

func (c *storeCmd) SetStore(s *Store) { c.store = s }
func (c *storeCmd) Execute()          { c.spy.record(c.name) }

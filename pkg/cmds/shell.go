package cmds

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hay-kot/convoy/pkg/command"
	"github.com/hay-kot/convoy/pkg/executil"
)

// Shell is a cancellable command that runs `sh -c` in a goroutine. Shell
// execution errors are logged, not surfaced: the command still completes so
// the owning group can proceed. With a capture key set, trimmed stdout is
// written into the shared store under that key before completion fires.
// Placeholders in the command line are expanded from the store (see Expand).
type Shell struct {
	dir     string
	cmdline string
	capture string

	mu        sync.Mutex
	done      func()
	cancel    context.CancelFunc
	cancelled bool
	store     *command.Store
}

// NewShell creates a shell command running cmdline in dir (empty means
// inherit cwd).
func NewShell(dir, cmdline string) *Shell {
	return &Shell{dir: dir, cmdline: cmdline}
}

// SetCapture sets the store key trimmed stdout is saved under.
func (c *Shell) SetCapture(key string) { c.capture = key }

// SetOnComplete implements command.Completable.
func (c *Shell) SetOnComplete(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = fn
}

// SetStore implements command.StoreAware.
func (c *Shell) SetStore(s *command.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
}

// Execute starts the shell process and returns immediately.
func (c *Shell) Execute() {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.cancelled = false
	c.cancel = cancel
	store := c.store
	c.mu.Unlock()

	cmdline := Expand(c.cmdline, store)

	go func() {
		out, err := executil.RunSh(ctx, c.dir, cmdline)
		if err != nil {
			log.Warn().Err(err).Str("cmd", cmdline).Msg("shell command failed")
		}

		c.mu.Lock()
		if c.cancelled {
			c.mu.Unlock()
			return
		}
		if c.capture != "" && store != nil {
			store.Set(c.capture, out)
		}
		fn := c.done
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	}()
}

// Cancel kills the running process. The completion callback will not be
// invoked afterward.
func (c *Shell) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

package command

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// slot tracks one child for the duration of a single cycle. The done flag
// makes completion idempotent: a repeated callback from a misbehaving child,
// or a late callback from a child the group has already forgotten, settles
// nothing twice.
type slot struct {
	cmd  Command
	done bool
}

// Group runs its children concurrently. Execute issues every child's start
// call in list order without waiting on completions, and the group's own
// completion callback fires exactly once, after the last child finishes.
// "Concurrent" means started without waiting for each other; children may
// complete on independent goroutines and the bookkeeping is serialized.
//
// A Group is itself Completable, Cancellable, and StoreAware, so groups nest
// inside other groups. A finished group may be executed again; it retains its
// children, store, callback, and auto-start setting across cycles.
//
// Construct with NewGroup; the zero value is not usable.
type Group struct {
	mu        sync.Mutex
	children  []Command
	store     *Store
	onDone    func()
	autoStart bool

	running     bool
	issuing     bool // start loop still handing out Execute calls
	outstanding int
	cycle       uint64
	runID       string
	slots       []*slot
}

// NewGroup creates a concurrent group holding the given children.
func NewGroup(children ...Command) *Group {
	return &Group{children: children}
}

// Add appends a child to the group. If auto-start is enabled and no cycle is
// in progress, the append immediately starts a new cycle over the full
// current child list.
func (g *Group) Add(cmd Command) {
	g.mu.Lock()
	g.children = append(g.children, cmd)
	start := g.autoStart && !g.running
	g.mu.Unlock()

	if start {
		g.Execute()
	}
}

// SetOnComplete sets the callback invoked when a cycle finishes. Replacing
// the callback while a cycle is in flight is a caller error; the last value
// set is the one invoked.
func (g *Group) SetOnComplete(fn func()) {
	g.mu.Lock()
	if g.running && g.onDone != nil {
		log.Debug().Str("run_id", g.runID).Msg("group completion callback replaced mid-cycle")
	}
	g.onDone = fn
	g.mu.Unlock()
}

// SetStore attaches the shared store injected into every store-aware child
// at Execute time. The store is sticky: it survives across cycles until the
// caller replaces it.
func (g *Group) SetStore(s *Store) {
	g.mu.Lock()
	g.store = s
	g.mu.Unlock()
}

// SetAutoStart toggles auto-start. Has no retroactive effect on a cycle
// already in progress.
func (g *Group) SetAutoStart(on bool) {
	g.mu.Lock()
	g.autoStart = on
	g.mu.Unlock()
}

// Running reports whether a cycle is currently in progress.
func (g *Group) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Execute starts a cycle over the current child list. An empty group
// completes immediately, invoking its callback synchronously. Calling
// Execute while a cycle is already running is ignored.
func (g *Group) Execute() {
	g.mu.Lock()
	if g.running {
		log.Debug().Str("run_id", g.runID).Msg("group execute ignored: cycle in progress")
		g.mu.Unlock()
		return
	}

	if len(g.children) == 0 {
		cb := g.onDone
		g.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	children := slices.Clone(g.children)
	store := g.store

	g.running = true
	g.issuing = true
	g.cycle++
	cycle := g.cycle
	runID := uuid.NewString()
	g.runID = runID
	g.outstanding = len(children)
	g.slots = make([]*slot, len(children))
	for i, c := range children {
		g.slots[i] = &slot{cmd: c}
	}
	slots := g.slots
	g.mu.Unlock()

	log.Debug().Str("run_id", runID).Int("children", len(children)).Msg("group cycle started")

	for i, child := range children {
		// A concurrent Cancel invalidates the cycle; later siblings are
		// never started.
		if !g.cycleActive(cycle) {
			return
		}

		if sa, ok := child.(StoreAware); ok && store != nil {
			sa.SetStore(store)
		}

		if comp, ok := child.(Completable); ok {
			s := slots[i]
			comp.SetOnComplete(func() {
				g.childDone(cycle, s)
			})
			child.Execute()
			continue
		}

		// Synchronous child: Execute returns when the work is done.
		child.Execute()
		g.childDone(cycle, slots[i])
	}

	g.mu.Lock()
	if cycle != g.cycle {
		g.mu.Unlock()
		return
	}
	g.issuing = false
	if g.outstanding > 0 {
		g.mu.Unlock()
		return
	}
	g.finishLocked()
}

// Cancel stops the cycle in progress. Outstanding cancellable children are
// cancelled; non-cancellable ones keep running but the group forgets them
// and ignores any late completion. The group's own callback is not invoked.
// The child list is cleared, so a subsequent Execute starts empty unless
// repopulated. Cancelling an idle group is a no-op.
func (g *Group) Cancel() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}

	var toCancel []Cancellable
	for _, s := range g.slots {
		if s.done {
			continue
		}
		if c, ok := s.cmd.(Cancellable); ok {
			toCancel = append(toCancel, c)
		}
	}

	// Invalidate the cycle so in-flight completions and any remaining start
	// calls become no-ops.
	g.cycle++
	g.running = false
	g.issuing = false
	g.outstanding = 0
	g.slots = nil
	g.children = nil
	runID := g.runID
	g.mu.Unlock()

	log.Debug().Str("run_id", runID).Int("cancelled", len(toCancel)).Msg("group cancelled")

	for _, c := range toCancel {
		c.Cancel()
	}
}

// childDone settles one child's slot for the given cycle. Stale cycles and
// already-settled slots are ignored so a double or late callback cannot
// corrupt the outstanding count.
func (g *Group) childDone(cycle uint64, s *slot) {
	g.mu.Lock()
	if cycle != g.cycle || s.done {
		log.Debug().Str("run_id", g.runID).Msg("group ignoring stale or duplicate completion")
		g.mu.Unlock()
		return
	}

	s.done = true
	g.outstanding--
	// The completion check must not fire until every child in this cycle has
	// been issued its start call, even if the count hits zero mid-loop.
	if g.outstanding > 0 || g.issuing {
		g.mu.Unlock()
		return
	}
	g.finishLocked()
}

// finishLocked ends the current cycle and fires the group callback outside
// the lock. Callers must hold g.mu; it is released here.
func (g *Group) finishLocked() {
	g.running = false
	g.slots = nil
	cb := g.onDone
	runID := g.runID
	g.mu.Unlock()

	log.Debug().Str("run_id", runID).Msg("group cycle complete")
	if cb != nil {
		cb()
	}
}

func (g *Group) cycleActive(cycle uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return cycle == g.cycle
}

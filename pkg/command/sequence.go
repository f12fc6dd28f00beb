package command

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Sequence runs its children one at a time, in list order, with no overlap
// between consecutive children's execution windows. The next child starts
// only after the previous one completes, and the sequence's own callback
// fires after the last child finishes.
//
// The queue is live: children appended while a cycle is in flight run in the
// same cycle, strictly after everything already queued. Children are consumed
// as they complete, so auto-start on an exhausted sequence begins a fresh
// cycle over just the newly appended commands.
//
// A Sequence is itself Completable, Cancellable, and StoreAware, so it nests
// inside groups and other sequences. Construct with NewSequence.
type Sequence struct {
	mu        sync.Mutex
	queue     []Command
	store     *Store
	onDone    func()
	autoStart bool

	running     bool
	current     Command
	currentDone bool
	cycle       uint64
	runID       string
}

// NewSequence creates a sequential group holding the given children.
func NewSequence(children ...Command) *Sequence {
	return &Sequence{queue: children}
}

// Add appends a child to the queue. During a cycle the child joins the live
// queue and runs after everything already queued. If auto-start is enabled
// and the sequence is idle, the append starts a cycle immediately.
func (s *Sequence) Add(cmd Command) {
	s.mu.Lock()
	s.queue = append(s.queue, cmd)
	start := s.autoStart && !s.running
	s.mu.Unlock()

	if start {
		s.Execute()
	}
}

// SetOnComplete sets the callback invoked when a cycle finishes. Replacing
// the callback while a cycle is in flight is a caller error; the last value
// set is the one invoked.
func (s *Sequence) SetOnComplete(fn func()) {
	s.mu.Lock()
	if s.running && s.onDone != nil {
		log.Debug().Str("run_id", s.runID).Msg("sequence completion callback replaced mid-cycle")
	}
	s.onDone = fn
	s.mu.Unlock()
}

// SetStore attaches the shared store injected into every store-aware child
// before it starts. Sticky across cycles until replaced.
func (s *Sequence) SetStore(st *Store) {
	s.mu.Lock()
	s.store = st
	s.mu.Unlock()
}

// SetAutoStart toggles auto-start. Has no retroactive effect on a cycle
// already in progress.
func (s *Sequence) SetAutoStart(on bool) {
	s.mu.Lock()
	s.autoStart = on
	s.mu.Unlock()
}

// Running reports whether a cycle is currently in progress.
func (s *Sequence) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Execute starts a cycle over the queued children. An empty sequence
// completes immediately, invoking its callback synchronously. Calling
// Execute while a cycle is already running is ignored.
func (s *Sequence) Execute() {
	s.mu.Lock()
	if s.running {
		log.Debug().Str("run_id", s.runID).Msg("sequence execute ignored: cycle in progress")
		s.mu.Unlock()
		return
	}

	if len(s.queue) == 0 {
		cb := s.onDone
		s.mu.Unlock()
		if cb != nil {
			cb()
		}
		return
	}

	s.running = true
	s.cycle++
	cycle := s.cycle
	runID := uuid.NewString()
	s.runID = runID
	queued := len(s.queue)
	s.mu.Unlock()

	log.Debug().Str("run_id", runID).Int("queued", queued).Msg("sequence cycle started")
	s.advance(cycle)
}

// Cancel stops the cycle in progress. The in-flight child is cancelled if it
// is cancellable (otherwise it runs on, forgotten), and all not-yet-started
// children are dropped from the queue. The sequence's own callback is not
// invoked. Cancelling an idle sequence is a no-op.
func (s *Sequence) Cancel() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	var toCancel Cancellable
	if c, ok := s.current.(Cancellable); ok && !s.currentDone {
		toCancel = c
	}

	s.cycle++
	s.running = false
	s.current = nil
	s.queue = nil
	runID := s.runID
	s.mu.Unlock()

	log.Debug().Str("run_id", runID).Msg("sequence cancelled")

	if toCancel != nil {
		toCancel.Cancel()
	}
}

// advance pops and runs children until one suspends (an asynchronous child
// whose callback has not fired yet) or the queue drains. The queue is read
// live at each step so children appended mid-cycle are picked up.
func (s *Sequence) advance(cycle uint64) {
	for {
		s.mu.Lock()
		if cycle != s.cycle {
			s.mu.Unlock()
			return
		}

		if len(s.queue) == 0 {
			s.running = false
			s.current = nil
			cb := s.onDone
			runID := s.runID
			s.mu.Unlock()

			log.Debug().Str("run_id", runID).Msg("sequence cycle complete")
			if cb != nil {
				cb()
			}
			return
		}

		child := s.queue[0]
		s.queue = s.queue[1:]
		s.current = child
		s.currentDone = false
		store := s.store
		s.mu.Unlock()

		if sa, ok := child.(StoreAware); ok && store != nil {
			sa.SetStore(store)
		}

		if comp, ok := child.(Completable); ok {
			comp.SetOnComplete(func() {
				s.childDone(cycle, child)
			})
			child.Execute()
			// Completion drives the next advance. A child that completes
			// synchronously inside Execute has already advanced past itself
			// through its callback by the time Execute returns.
			return
		}

		// Synchronous child: done when Execute returns.
		child.Execute()
	}
}

// childDone advances past the current child. Stale cycles, forgotten
// children, and duplicate callbacks are ignored.
func (s *Sequence) childDone(cycle uint64, child Command) {
	s.mu.Lock()
	if cycle != s.cycle || s.current != child || s.currentDone {
		log.Debug().Str("run_id", s.runID).Msg("sequence ignoring stale or duplicate completion")
		s.mu.Unlock()
		return
	}
	s.currentDone = true
	s.current = nil
	s.mu.Unlock()

	s.advance(cycle)
}

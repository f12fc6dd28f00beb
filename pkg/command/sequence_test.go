package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Execute_Empty(t *testing.T) {
	sq := NewSequence()

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()

	assert.Equal(t, 1, fired, "empty sequence completes synchronously")
	assert.False(t, sq.Running())
}

func TestSequence_Execute_NonOverlappingWindows(t *testing.T) {
	s := &spy{}
	a := &asyncCmd{name: "a", spy: s}
	b := &asyncCmd{name: "b", spy: s}
	sq := NewSequence(a, b)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	assert.Equal(t, []string{"a"}, s.names(), "b must not start before a completes")
	assert.False(t, b.wasStarted())

	a.complete()
	assert.Equal(t, []string{"a", "b"}, s.names())
	assert.Equal(t, 0, fired)

	b.complete()
	assert.Equal(t, 1, fired)
	assert.False(t, sq.Running())
}

func TestSequence_Execute_SyncChildrenAdvanceInline(t *testing.T) {
	s := &spy{}
	sq := NewSequence(
		&syncCmd{name: "a", spy: s},
		&inlineCmd{name: "b", spy: s},
		&syncCmd{name: "c", spy: s},
	)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()

	assert.Equal(t, []string{"a", "b", "c"}, s.names())
	assert.Equal(t, 1, fired, "callback fires once after the whole chain")
	assert.False(t, sq.Running())
}

func TestSequence_AppendMidCycle(t *testing.T) {
	s := &spy{}
	a := &asyncCmd{name: "a", spy: s}
	sq := NewSequence(a)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()

	// Enqueued while a is in flight: must run after a, before the callback.
	b := &syncCmd{name: "b", spy: s}
	sq.Add(b)
	assert.Equal(t, 0, fired)

	a.complete()
	assert.Equal(t, []string{"a", "b"}, s.names())
	assert.Equal(t, 1, fired)
}

func TestSequence_AutoStart_FreshCycleAfterExhaustion(t *testing.T) {
	s := &spy{}
	sq := NewSequence()
	sq.SetAutoStart(true)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Add(&syncCmd{name: "a", spy: s})
	assert.Equal(t, []string{"a"}, s.names())
	assert.Equal(t, 1, fired)

	// The queue is consumed, so a later append runs just the new command.
	sq.Add(&syncCmd{name: "b", spy: s})
	assert.Equal(t, []string{"a", "b"}, s.names())
	assert.Equal(t, 2, fired)
}

func TestSequence_AutoStart_BusyQueueJoinsCycle(t *testing.T) {
	s := &spy{}
	a := &asyncCmd{name: "a", spy: s}
	sq := NewSequence()
	sq.SetAutoStart(true)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Add(a)
	assert.True(t, a.wasStarted())

	b := &asyncCmd{name: "b", spy: s}
	sq.Add(b)
	assert.False(t, b.wasStarted(), "busy sequence queues instead of restarting")

	a.complete()
	assert.True(t, b.wasStarted())
	assert.Equal(t, 0, fired)

	b.complete()
	assert.Equal(t, 1, fired)
}

func TestSequence_ExecuteWhileRunningIgnored(t *testing.T) {
	s := &spy{}
	a := &asyncCmd{name: "a", spy: s}
	sq := NewSequence(a)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	sq.Execute() // mid-cycle, ignored

	assert.Equal(t, []string{"a"}, s.names())

	a.complete()
	assert.Equal(t, 1, fired)
}

func TestSequence_Cancel(t *testing.T) {
	s := &spy{}
	cc := &cancelCmd{asyncCmd: asyncCmd{name: "current", spy: s}}
	rest := &asyncCmd{name: "rest", spy: s}
	sq := NewSequence(cc, rest)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	sq.Cancel()

	assert.True(t, cc.wasCancelled(), "in-flight child is cancelled")
	assert.False(t, rest.wasStarted(), "queued children are dropped, never started")
	assert.Equal(t, 0, fired, "cancellation is silent for the sequence callback")
	assert.False(t, sq.Running())
}

func TestSequence_Cancel_NonCancellableCurrent(t *testing.T) {
	s := &spy{}
	plain := &asyncCmd{name: "plain", spy: s}
	sq := NewSequence(plain)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	sq.Cancel()

	// The child keeps running, but the sequence has forgotten it.
	plain.complete()
	assert.Equal(t, 0, fired)
}

func TestSequence_DoubleCompletionIgnored(t *testing.T) {
	s := &spy{}
	a := &asyncCmd{name: "a", spy: s}
	b := &asyncCmd{name: "b", spy: s}
	sq := NewSequence(a, b)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	a.complete()
	a.complete() // must not advance past b

	assert.Equal(t, 0, fired)
	b.complete()
	assert.Equal(t, 1, fired)
}

func TestSequence_StoreMutationVisibleToLaterChild(t *testing.T) {
	s := &spy{}
	store := NewStore()

	writer := &inlineSetCmd{key: "who", value: "first"}
	reader := &storeCmd{name: "reader", spy: s}

	sq := NewSequence(writer, reader)
	sq.SetStore(store)
	sq.Execute()

	require.Same(t, store, reader.store)
	got, ok := store.Get("who")
	require.True(t, ok)
	assert.Equal(t, "first", got, "mutation by an earlier child is sequenced before a later read")
}

func TestSequence_NestedGroupChild(t *testing.T) {
	s := &spy{}
	b1 := &asyncCmd{name: "b1", spy: s}
	b2 := &asyncCmd{name: "b2", spy: s}
	inner := NewGroup(b1, b2)

	sq := NewSequence(
		&syncCmd{name: "a", spy: s},
		inner,
		&syncCmd{name: "c", spy: s},
	)

	fired := 0
	sq.SetOnComplete(func() { fired++ })

	sq.Execute()
	assert.Equal(t, []string{"a", "b1", "b2"}, s.names(), "c waits on the whole inner group")

	b2.complete()
	assert.Equal(t, 0, fired)

	b1.complete()
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, s.names())
	assert.Equal(t, 1, fired)
}

// inlineSetCmd writes a key into the shared store synchronously.
type inlineSetCmd struct {
	key   string
	value any
	store *Store
}

func (c *inlineSetCmd) SetStore(s *Store) { c.store = s }
func (c *inlineSetCmd) Execute()          { c.store.Set(c.key, c.value) }

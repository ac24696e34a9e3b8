package extspi

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// BuildTraceNode is one entry in a Director's build trace - the Go
// analogue of the teacher package's ExecutionTree node, repurposed
// here to record instance builds instead of flow executions (spec
// section 4 "SUPPLEMENTED FEATURES" in SPEC_FULL.md).
type BuildTraceNode struct {
	ID       string
	Contract string
	Name     string
	Outcome  string // "built" or "failed"
	Duration time.Duration
	At       time.Time
	Err      error
}

// buildTrace is a fixed-capacity ring buffer of BuildTraceNode, guarded
// by a mutex; once full, the oldest entry is evicted to make room.
type buildTrace struct {
	mu       sync.Mutex
	capacity int
	nodes    []BuildTraceNode
	next     int
	filled   bool
}

func newBuildTrace(capacity int) *buildTrace {
	if capacity <= 0 {
		capacity = 512
	}
	return &buildTrace{capacity: capacity, nodes: make([]BuildTraceNode, capacity)}
}

func (t *buildTrace) record(n BuildTraceNode) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes[t.next] = n
	t.next = (t.next + 1) % t.capacity
	if t.next == 0 {
		t.filled = true
	}
}

// Snapshot returns the trace nodes in chronological order.
func (t *buildTrace) Snapshot() []BuildTraceNode {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled {
		out := make([]BuildTraceNode, t.next)
		copy(out, t.nodes[:t.next])
		return out
	}
	out := make([]BuildTraceNode, t.capacity)
	copy(out, t.nodes[t.next:])
	copy(out[t.capacity-t.next:], t.nodes[:t.next])
	return out
}

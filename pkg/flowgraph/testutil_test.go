package flowgraph

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Counter is a minimal state; Add updates are summed into it.
type Counter struct {
	Value int
}

// Add is the update type for Counter.
type Add struct {
	N int
}

func sumReducer(s Counter, u Add) Counter {
	s.Value += u.N
	return s
}

// Trail records which nodes ran, plus a free-form input field.
type Trail struct {
	Visited []string `json:"visited"`
	Input   string   `json:"input"`
}

// Mark is the update type for Trail. Visit is appended; a non-empty Input
// replaces the current one.
type Mark struct {
	Visit string
	Input string
}

func trailReducer(s Trail, u Mark) Trail {
	if u.Visit != "" {
		s.Visited = append(append([]string(nil), s.Visited...), u.Visit)
	}
	if u.Input != "" {
		s.Input = u.Input
	}
	return s
}

func increment(_ Context, _ Counter) (Add, error) {
	return Add{N: 1}, nil
}

// visit returns a node that records its own name.
func visit(name string) NodeFunc[Trail, Mark] {
	return func(_ Context, _ Trail) (Mark, error) {
		return Mark{Visit: name}, nil
	}
}

func failing(err error) NodeFunc[Trail, Mark] {
	return func(_ Context, _ Trail) (Mark, error) {
		return Mark{Visit: "should-be-discarded"}, err
	}
}

func panicking(value any) NodeFunc[Trail, Mark] {
	return func(_ Context, _ Trail) (Mark, error) {
		panic(value)
	}
}

// linearTrail compiles a -> b -> c -> END.
func linearTrail(t *testing.T) *CompiledGraph[Trail, Mark] {
	t.Helper()
	compiled, err := NewGraph[Trail, Mark](trailReducer).
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddNode("c", visit("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a").
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return compiled
}

func testCtx() Context {
	return NewContext(context.Background())
}

// recordingStore wraps a MemoryStore and records every Put.
// failGet and failPut inject errors.
type recordingStore struct {
	*checkpoint.MemoryStore

	mu      sync.Mutex
	puts    []*checkpoint.Checkpoint
	failGet error
	failPut error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: checkpoint.NewMemoryStore()}
}

func (s *recordingStore) Get(ctx context.Context, threadID string) (*checkpoint.Checkpoint, error) {
	if s.failGet != nil {
		return nil, s.failGet
	}
	return s.MemoryStore.Get(ctx, threadID)
}

func (s *recordingStore) Put(ctx context.Context, threadID string, cp *checkpoint.Checkpoint) error {
	if s.failPut != nil {
		return s.failPut
	}
	s.mu.Lock()
	s.puts = append(s.puts, cp.Clone())
	s.mu.Unlock()
	return s.MemoryStore.Put(ctx, threadID, cp)
}

func (s *recordingStore) saved() []*checkpoint.Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*checkpoint.Checkpoint(nil), s.puts...)
}

var errBoom = errors.New("boom")

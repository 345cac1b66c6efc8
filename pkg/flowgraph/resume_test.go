package flowgraph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

func TestResume_ContinuesFromNextNode(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	crash := true

	compiled, err := NewGraph[Trail, Mark](trailReducer).
		AddNode("a", visit("a")).
		AddNode("b", func(Context, Trail) (Mark, error) {
			if crash {
				return Mark{}, errBoom
			}
			return Mark{Visit: "b"}, nil
		}).
		AddNode("c", visit("c")).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), Mark{Input: "x"},
		WithCheckpointing(store), WithThreadID("t1"))
	require.ErrorIs(t, err, errBoom)

	crash = false
	result, err := compiled.Resume(testCtx(), store, "t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Visited, "a is not re-run")
	assert.Equal(t, "x", result.Input)

	cp, err := store.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, END, cp.NextNode)
	assert.Equal(t, 3, cp.Sequence)
}

func TestResume_CompletedThreadIsUnchanged(t *testing.T) {
	compiled := linearTrail(t)
	store := newRecordingStore()

	_, err := compiled.Run(testCtx(), Mark{},
		WithCheckpointing(store), WithThreadID("t1"))
	require.NoError(t, err)
	before := len(store.saved())

	result, err := compiled.Resume(testCtx(), store, "t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Visited)
	assert.Len(t, store.saved(), before)
}

func TestResume_Errors(t *testing.T) {
	compiled := linearTrail(t)

	t.Run("no checkpoint", func(t *testing.T) {
		_, err := compiled.Resume(testCtx(), checkpoint.NewMemoryStore(), "nobody")
		assert.ErrorIs(t, err, ErrNoCheckpoint)
	})

	t.Run("empty thread", func(t *testing.T) {
		_, err := compiled.Resume(testCtx(), checkpoint.NewMemoryStore(), "")
		assert.ErrorIs(t, err, ErrThreadIDRequired)
	})

	t.Run("nil context", func(t *testing.T) {
		_, err := compiled.Resume(nil, checkpoint.NewMemoryStore(), "t1")
		assert.ErrorIs(t, err, ErrNilContext)
	})

	t.Run("unknown next node", func(t *testing.T) {
		store := checkpoint.NewMemoryStore()
		require.NoError(t, store.Put(context.Background(), "t1",
			checkpoint.New("t1", "a", 1, []byte(`{}`), "removed")))

		_, err := compiled.Resume(testCtx(), store, "t1")
		assert.ErrorIs(t, err, ErrInvalidResumeNode)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newRecordingStore()
		store.failGet = checkpoint.ErrStoreClosed

		_, err := compiled.Resume(testCtx(), store, "t1")
		var cpErr *CheckpointError
		require.ErrorAs(t, err, &cpErr)
		assert.Equal(t, "load", cpErr.Op)
	})
}

func TestLoadState(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	compiled := linearTrail(t)
	ctx := context.Background()

	_, found, err := compiled.LoadState(ctx, store, "user:new")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = compiled.Run(testCtx(), Mark{Input: "hola"},
		WithCheckpointing(store), WithThreadID("user:u1"))
	require.NoError(t, err)

	state, found, err := compiled.LoadState(ctx, store, "user:u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b", "c"}, state.Visited)
	assert.Equal(t, "hola", state.Input)

	_, _, err = compiled.LoadState(ctx, store, "")
	assert.ErrorIs(t, err, ErrThreadIDRequired)
}

func TestLoadState_CorruptCheckpoint(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "user:bad", checkpoint.New("user:bad", "a", 1, []byte(`{"visited": 7}`), END)))

	_, _, err := linearTrail(t).LoadState(ctx, store, "user:bad")

	var cpErr *CheckpointError
	require.ErrorAs(t, err, &cpErr)
	assert.Equal(t, "load", cpErr.Op)
	assert.ErrorIs(t, err, ErrDeserializeState)
}

func TestResume_AfterCancellationBetweenNodes(t *testing.T) {
	store, err := checkpoint.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "cp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	compiled, err := NewGraph[Trail, Mark](trailReducer).
		AddNode("a", func(Context, Trail) (Mark, error) {
			cancel()
			return Mark{Visit: "a"}, nil
		}).
		AddNode("b", visit("b")).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(NewContext(ctx), Mark{Input: "x"},
		WithCheckpointing(store), WithThreadID("t1"))

	var cancelErr *CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, "b", cancelErr.NodeID)

	cp, err := store.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "a", cp.NodeID)
	assert.Equal(t, "b", cp.NextNode)

	result, err := compiled.Resume(testCtx(), store, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Visited)
}

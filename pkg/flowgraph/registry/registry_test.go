package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	level, lang string
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New[pair, string]()
	r.Register(pair{"A0", "es"}, "hola")

	v, ok := r.Get(pair{"A0", "es"})
	assert.True(t, ok)
	assert.Equal(t, "hola", v)

	_, ok = r.Get(pair{"A0", "fr"})
	assert.False(t, ok)
}

func TestRegistry_Lookup(t *testing.T) {
	r := New[pair, string]()
	r.Register(pair{"A1", "es"}, "spanish")
	r.Register(pair{"A1", "de"}, "german")

	v, ok := r.Lookup(pair{"A1", "de"}, pair{"A1", "es"})
	assert.True(t, ok)
	assert.Equal(t, "german", v)

	v, ok = r.Lookup(pair{"A1", "fr"}, pair{"A1", "es"})
	assert.True(t, ok)
	assert.Equal(t, "spanish", v)

	v, ok = r.Lookup(pair{"C2", "fr"})
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestRegistry_Freeze(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)
	r.Freeze()

	assert.PanicsWithValue(t, "registry: register b after freeze", func() {
		r.Register("b", 2)
	})
	v, ok := r.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRegistry_Range(t *testing.T) {
	r := New[string, int]()
	for i, k := range []string{"c", "a", "b"} {
		r.Register(k, i)
	}

	seen := map[string]int{}
	r.Range(func(k string, v int) bool {
		r.Register(k+"-copy", v)
		seen[k] = v
		return true
	})
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2}, seen)

	v, ok := r.Get("a-copy")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	stopped := 0
	r.Range(func(string, int) bool {
		stopped++
		return false
	})
	assert.Equal(t, 1, stopped)
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	r := New[int, string]()
	for i := 0; i < 100; i++ {
		r.Register(i, fmt.Sprint(i))
	}
	r.Freeze()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v, ok := r.Get(i)
				assert.True(t, ok)
				assert.Equal(t, fmt.Sprint(i), v)
			}
		}()
	}
	wg.Wait()
}

package typeutil

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentMap(t *testing.T) {
	m := NewConcurrentMap[string, int]()

	_, ok := m.Get("a")
	assert.False(t, ok)

	m.Insert("a", 1)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	actual, loaded := m.GetOrInsert("a", 2)
	assert.True(t, loaded)
	assert.Equal(t, 1, actual)

	actual, loaded = m.GetOrInsert("b", 3)
	assert.False(t, loaded)
	assert.Equal(t, 3, actual)
	assert.Equal(t, 2, m.Len())

	keys := make(map[string]int)
	m.Range(func(key string, value int) bool {
		keys[key] = value
		return true
	})
	assert.Equal(t, map[string]int{"a": 1, "b": 3}, keys)

	m.Remove("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestConcurrentMapParallel(t *testing.T) {
	m := NewConcurrentMap[int, string]()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.GetOrInsert(i%8, strconv.Itoa(i%8))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, m.Len())
	v, ok := m.Get(5)
	assert.True(t, ok)
	assert.Equal(t, "5", v)
}

func TestConcurrentSet(t *testing.T) {
	set := NewConcurrentSet[string]()
	assert.True(t, set.Insert("x"))
	assert.False(t, set.Insert("x"))
	set.Upsert("y", "z")
	assert.True(t, set.Contain("x", "y", "z"))
	assert.ElementsMatch(t, []string{"x", "y", "z"}, set.Collect())

	set.Remove("x")
	assert.False(t, set.Contain("x"))
}

package keyset

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_AddGetRemove(t *testing.T) {
	s := New[string, string]()

	s.Add("sub-1", "dep-1")
	s.Add("sub-1", "dep-2")
	s.Add("sub-1", "dep-2")
	s.Add("sub-2", "dep-3")

	assert.Equal(t, 2, s.Size())
	assert.ElementsMatch(t, []string{"dep-1", "dep-2"}, s.Get("sub-1"))
	assert.True(t, s.Has("sub-2", "dep-3"))
	assert.False(t, s.Has("sub-2", "dep-1"))
	assert.Empty(t, s.Get("missing"))

	assert.Equal(t, 1, s.RemoveValue("sub-1", "dep-1"))
	assert.Equal(t, 0, s.RemoveValue("sub-1", "dep-2"))
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, 0, s.RemoveValue("sub-1", "dep-2"))

	s.Remove("sub-2")
	assert.Equal(t, 0, s.Size())
}

func TestSet_RemoveValueFromAll(t *testing.T) {
	s := New[string, string]()
	s.Add("sub-1", "dep-1")
	s.Add("sub-1", "dep-2")
	s.Add("sub-2", "dep-1")
	s.Add("sub-3", "dep-3")

	assert.Equal(t, 2, s.RemoveValueFromAll("dep-1"))
	assert.Equal(t, 2, s.Size())
	assert.Equal(t, []string{"dep-2"}, s.Get("sub-1"))
	assert.Empty(t, s.Get("sub-2"))
	assert.Equal(t, 0, s.RemoveValueFromAll("dep-1"))
}

func TestSet_GetReturnsCopy(t *testing.T) {
	s := New[string, int]()
	s.Add("k", 1)

	got := s.Get("k")
	got[0] = 42

	assert.Equal(t, []int{1}, s.Get("k"))
}

func TestSet_Clear(t *testing.T) {
	s := New[int, int]()
	s.Add(1, 1)
	s.Add(2, 2)

	s.Clear()

	assert.Equal(t, 0, s.Size())
	s.Add(3, 3)
	assert.Equal(t, 1, s.Size())
}

func TestSet_ConcurrentAccess(t *testing.T) {
	s := New[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%5)
			s.Add(key, i)
			_ = s.Get(key)
			_ = s.Has(key, i)
			_ = s.Size()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, s.Size())
	total := 0
	for i := 0; i < 5; i++ {
		total += len(s.Get(fmt.Sprintf("k%d", i)))
	}
	assert.Equal(t, 50, total)
}

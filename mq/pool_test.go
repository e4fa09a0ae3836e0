package mq

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolWarnsOnPeakModulus(t *testing.T) {
	var peaks []int
	var mu sync.Mutex
	pool := NewPool(0, 4, func(p int) {
		mu.Lock()
		peaks = append(peaks, p)
		mu.Unlock()
	})

	q := New(pool)
	for i := 0; i < 9; i++ {
		require.NoError(t, q.Write(0, i))
	}
	q.Finalize() // returns all 9 headers to the pool's free list

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4, 8}, peaks)
}

func TestPoolCapacityBoundsFreeList(t *testing.T) {
	pool := NewPool(2, 0, nil)
	q := New(pool)
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Write(0, i))
	}
	q.Finalize()
	assert.LessOrEqual(t, pool.Peak(), 2)
}

func TestPoolReusesReleasedHeaders(t *testing.T) {
	pool := NewPool(4, 0, nil)
	q := New(pool)
	require.NoError(t, q.Write(0, "a"))
	m, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, "a", m.Payload)
	require.NoError(t, q.Write(0, "b"))
	m, ok = q.Poll()
	require.True(t, ok)
	assert.Equal(t, "b", m.Payload)
}

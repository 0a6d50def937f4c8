package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsRequestedCapacity(t *testing.T) {
	p := NewDefault()
	buf := p.Get(100)
	require.Len(t, buf, 0)
	assert.GreaterOrEqual(t, cap(buf), 100)
}

func TestGetPicksSmallestFittingTier(t *testing.T) {
	p := New([]int{4 << 10, 16 << 10, 64 << 10})
	buf := p.Get(5000)
	assert.Equal(t, 16<<10, cap(buf))
}

func TestOversizedBypassesPool(t *testing.T) {
	p := New([]int{4 << 10})
	buf := p.Get(1 << 20)
	assert.Equal(t, 1<<20, cap(buf))
	// Put must not panic even though this buffer doesn't match a tier.
	p.Put(buf)
}

func TestPutRecyclesBuffer(t *testing.T) {
	p := New([]int{4 << 10})
	first := p.Get(10)
	first = append(first, make([]byte, 4<<10)...)
	p.Put(first)

	second := p.Get(10)
	assert.Equal(t, 4<<10, cap(second))
	assert.Len(t, second, 0)
}

func TestConcurrentUse(t *testing.T) {
	p := NewDefault()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 1000; j++ {
				b := p.Get(1024)
				b = append(b, 1, 2, 3)
				p.Put(b)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

package surf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryLagIndexing(t *testing.T) {
	h := NewHistory(4)
	_, ok := h.At(0)
	assert.False(t, ok)

	for i := 1; i <= 6; i++ {
		h.Push(Observation{Direction: Right, Bearing: float64(i)})
	}
	require.Equal(t, 4, h.Len())

	// 最新一条在下标 0
	for lag := 0; lag < 4; lag++ {
		o, ok := h.At(lag)
		require.True(t, ok)
		assert.Equal(t, float64(6-lag), o.Bearing)
	}
	_, ok = h.At(4)
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)

	h.Reset()
	assert.Equal(t, 0, h.Len())
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 3; i++ {
		h.Push(Observation{Direction: Left, Bearing: float64(i)})
	}
	o, ok := h.At(FireLag)
	require.True(t, ok)
	assert.Equal(t, 0.0, o.Bearing)
	assert.Equal(t, Left, o.Direction)
}

package tagging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryRing(t *testing.T) {
	h := NewHistory[int](3)
	assert.Equal(t, 3, h.Capacity())
	assert.Equal(t, 0, h.Size())
	assert.Nil(t, h.Recent(5))

	_, ok := h.Previous(1)
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		h.Add(i)
	}
	assert.Equal(t, 3, h.Size())
	assert.Equal(t, []int{3, 4, 5}, h.Recent(10))
	assert.Equal(t, []int{4, 5}, h.Recent(2))

	v, ok := h.Previous(1)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	v, _ = h.Previous(3)
	assert.Equal(t, 3, v)
	_, ok = h.Previous(4)
	assert.False(t, ok)

	for i := 6; i <= 9; i++ {
		h.Add(i)
	}
	assert.Equal(t, []int{7, 8, 9}, h.Recent(3))
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory[string](0)
	assert.Equal(t, 1, h.Capacity())
	h.Add("a")
	h.Add("b")
	assert.Equal(t, []string{"b"}, h.Recent(2))
}

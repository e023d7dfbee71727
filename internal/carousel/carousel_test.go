package carousel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func indexes[T any](slots []Slot[T]) []int {
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Index)
	}
	return out
}

func TestVisibleWrapsAtBothEnds(t *testing.T) {
	c := New([]string{"t0", "t1", "t2", "t3", "t4"})

	slots := c.Visible()
	require.Len(t, slots, 3)
	require.Equal(t, []int{4, 0, 1}, indexes(slots))
	require.Equal(t, Center, slots[1].Position)
	require.Equal(t, "t0", slots[1].Item)

	c.Select(4)
	require.Equal(t, []int{3, 4, 0}, indexes(c.Visible()))

	item, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, "t0", item)
	require.Equal(t, 0, c.Index())

	item, _ = c.Prev()
	require.Equal(t, "t4", item)
}

func TestShortLists(t *testing.T) {
	empty := New[string](nil)
	require.True(t, empty.Empty())
	require.Nil(t, empty.Visible())
	_, ok := empty.Current()
	require.False(t, ok)
	_, ok = empty.Next()
	require.False(t, ok)

	one := New([]string{"only"})
	require.Equal(t, []int{0, 0, 0}, indexes(one.Visible()))

	two := New([]string{"a", "b"})
	require.Equal(t, []int{1, 0, 1}, indexes(two.Visible()))
}

func TestSelectWrapsNegative(t *testing.T) {
	c := New([]int{10, 20, 30})
	v, ok := c.Select(-1)
	require.True(t, ok)
	require.Equal(t, 30, v)
	v, _ = c.Select(7)
	require.Equal(t, 20, v)
}

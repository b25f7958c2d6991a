package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushPopOrder(t *testing.T) {
	r := New[int](3)
	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))
	require.NoError(t, r.Push(3))

	v, err := r.Pop()
	require.NoError(t, err)
	require.Equal(t, 1, v)

	v, err = r.Pop()
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestPushFull(t *testing.T) {
	r := New[int](2)
	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))
	err := r.Push(3)
	require.ErrorIs(t, err, ErrQueueInsufficientSpace)
	require.Equal(t, 2, r.Len())
}

func TestPopEmpty(t *testing.T) {
	r := New[string](2)
	_, err := r.Pop()
	require.ErrorIs(t, err, ErrQueueEmpty)
}

func TestFrontDoesNotRemove(t *testing.T) {
	r := New[int](2)
	require.NoError(t, r.Push(7))
	v, err := r.Front()
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, 1, r.Len())
}

func TestDefaultCapacity(t *testing.T) {
	r := New[int](0)
	require.Equal(t, DefaultCapacity, r.Capacity())
}

func TestDrainFreesSpaceForMore(t *testing.T) {
	r := New[int](2)
	require.NoError(t, r.Push(1))
	require.NoError(t, r.Push(2))
	require.True(t, r.Full())
	_, err := r.Pop()
	require.NoError(t, err)
	require.False(t, r.Full())
	require.NoError(t, r.Push(3))
}

package accumulator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendAndSize(t *testing.T) {
	a := New(16)
	require.NoError(t, a.Append([]byte("hello")))
	require.Equal(t, 5, a.Size())
	require.Equal(t, 11, a.Free())
}

func TestAppendOverCapacity(t *testing.T) {
	a := New(4)
	err := a.Append([]byte("hello"))
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, 0, a.Size())
}

func TestPeekDoesNotMutate(t *testing.T) {
	a := New(16)
	require.NoError(t, a.Append([]byte("hello")))
	got, err := a.Peek(3)
	require.NoError(t, err)
	require.Equal(t, "hel", string(got))
	require.Equal(t, 5, a.Size())
}

func TestTrimConsumesFromFront(t *testing.T) {
	a := New(16)
	require.NoError(t, a.Append([]byte("hello world")))
	require.NoError(t, a.Trim(6))
	got, err := a.Get(5)
	require.NoError(t, err)
	require.Equal(t, "world", string(got))
}

func TestTrimTooLarge(t *testing.T) {
	a := New(16)
	require.NoError(t, a.Append([]byte("hi")))
	err := a.Trim(5)
	require.ErrorIs(t, err, ErrTrimTooLarge)
}

func TestAppendAfterTrimCompacts(t *testing.T) {
	a := New(8)
	require.NoError(t, a.Append([]byte("abcdefgh")))
	require.NoError(t, a.Trim(4))
	require.NoError(t, a.Append([]byte("ijkl")))
	got, err := a.Get(8)
	require.NoError(t, err)
	require.Equal(t, "efghijkl", string(got))
}

func TestReset(t *testing.T) {
	a := New(8)
	require.NoError(t, a.Append([]byte("abcd")))
	a.Reset()
	require.Equal(t, 0, a.Size())
	require.Equal(t, 8, a.Free())
}

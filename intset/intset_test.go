package intset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func valuesOf(t *testing.T, s *Set) []int64 {
	t.Helper()
	out := make([]int64, s.Len())
	for i := range out {
		v, err := s.Get(i)
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func TestUpgradePath(t *testing.T) {
	s := New()
	require.Equal(t, Enc16, s.Encoding())

	require.True(t, s.Add(1))
	require.True(t, s.Add(7))
	require.True(t, s.Add(42))
	require.Equal(t, Enc16, s.Encoding())
	require.Equal(t, []int64{1, 7, 42}, valuesOf(t, s))

	require.True(t, s.Add(70000))
	require.Equal(t, Enc32, s.Encoding())
	require.Equal(t, []int64{1, 7, 42, 70000}, valuesOf(t, s))

	require.True(t, s.Add(-5_000_000_000))
	require.Equal(t, Enc64, s.Encoding())
	require.Equal(t, []int64{-5_000_000_000, 1, 7, 42, 70000}, valuesOf(t, s))
}

func TestNoDowngradeOnRemove(t *testing.T) {
	s := New()
	s.Add(1)
	s.Add(70000)
	require.Equal(t, Enc32, s.Encoding())

	require.True(t, s.Remove(70000))
	require.Equal(t, Enc32, s.Encoding())
	require.Equal(t, []int64{1}, valuesOf(t, s))
}

func TestFindAbsentWiderValue(t *testing.T) {
	s := New()
	s.Add(1)
	s.Add(2)
	require.False(t, s.Find(1<<40))
}

func TestNoDuplicates(t *testing.T) {
	s := New()
	require.True(t, s.Add(5))
	require.False(t, s.Add(5))
	require.Equal(t, 1, s.Len())
}

func TestAddRandomOrderStaysSorted(t *testing.T) {
	s := New()
	vals := []int64{50, 10, 90, -5, 0, 30, -100, 1000000}
	for _, v := range vals {
		s.Add(v)
	}
	got := valuesOf(t, s)
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1], got[i])
	}
	for _, v := range vals {
		require.True(t, s.Find(v))
	}
}

func TestGetOutOfRange(t *testing.T) {
	s := New()
	s.Add(1)
	_, err := s.Get(5)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestBlobLen(t *testing.T) {
	s := New()
	s.Add(1)
	s.Add(2)
	require.Equal(t, 2*int(Enc16), s.BlobLen())
}

package hashfn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedDeterminism(t *testing.T) {
	defer SetSeed(Seed())

	SetSeed(42)
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	require.Equal(t, a, b)

	SetSeed(43)
	c := Sum([]byte("hello"))
	require.NotEqual(t, a, c)
}

func TestSumCaseInsensitive(t *testing.T) {
	require.Equal(t, SumCaseInsensitive([]byte("Hello")), SumCaseInsensitive([]byte("HELLO")))
	require.Equal(t, SumCaseInsensitive([]byte("hello")), SumCaseInsensitive([]byte("hElLo")))
	require.NotEqual(t, SumCaseInsensitive([]byte("hello")), SumCaseInsensitive([]byte("world")))
}

func TestSumIsCaseSensitive(t *testing.T) {
	// Different mixer families: no expectation they agree on mixed-case input,
	// but Sum itself must still be case-sensitive.
	require.NotEqual(t, Sum([]byte("hello")), Sum([]byte("HELLO")))
}

func BenchmarkSum(b *testing.B) {
	key := []byte("benchmark-key-0000000000")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Sum(key)
	}
}

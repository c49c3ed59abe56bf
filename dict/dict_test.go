package dict

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStringDict() *Dict {
	return Create(StringKeyType, nil)
}

func TestRehashCorrectness(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 100; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}

	require.NoError(t, d.Expand(1024))

	steps := int(d.ht[0].size)
	for i := 0; i < steps*4 && d.IsRehashing(); i++ {
		d.Rehash(1)
	}

	require.False(t, d.IsRehashing())
	require.Equal(t, uint64(0), d.ht[1].size)
	for i := 0; i < 100; i++ {
		v, ok := d.FetchValue(fmt.Sprintf("%d", i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestIncrementalCorrectnessUnderInterleaving(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 100; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	require.NoError(t, d.Expand(1024))

	for k := 0; k < 50; k++ {
		_, _ = d.FetchValue(fmt.Sprintf("%d", 50+k))
		require.NoError(t, d.Add(fmt.Sprintf("%d", 100+k), 100+k))
		require.True(t, d.Delete(fmt.Sprintf("%d", k)))
	}

	require.False(t, d.IsRehashing())
	require.Equal(t, uint64(100), d.Len())
	for i := 50; i < 150; i++ {
		_, ok := d.FetchValue(fmt.Sprintf("%d", i))
		require.True(t, ok)
	}
	for i := 0; i < 50; i++ {
		_, ok := d.FetchValue(fmt.Sprintf("%d", i))
		require.False(t, ok)
	}
}

func TestScanCompletenessUnderGrowth(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 1000; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}

	seen := make(map[string]bool)
	cursor := uint64(0)
	iterations := 0
	for {
		cursor = d.Scan(cursor, func(_ interface{}, e *Entry) {
			seen[e.Key().(string)] = true
		}, nil)
		iterations++
		if iterations%3 == 0 {
			_ = d.Expand(d.ht[0].size * 2)
			d.Rehash(4)
		}
		if cursor == 0 {
			break
		}
		if iterations > 100000 {
			t.Fatal("scan did not terminate")
		}
	}

	for i := 0; i < 1000; i++ {
		require.True(t, seen[fmt.Sprintf("%d", i)], "missing key %d", i)
	}
}

func TestAddDuplicateFails(t *testing.T) {
	d := newStringDict()
	require.NoError(t, d.Add("a", 1))
	require.Error(t, d.Add("a", 2))
}

func TestReplace(t *testing.T) {
	d := newStringDict()
	inserted := d.Replace("a", 1)
	require.True(t, inserted)
	inserted = d.Replace("a", 2)
	require.False(t, inserted)
	v, _ := d.FetchValue("a")
	require.Equal(t, 2, v)
}

func TestDeleteNotFound(t *testing.T) {
	d := newStringDict()
	require.False(t, d.Delete("missing"))
}

func TestSafeIteratorAllowsMutation(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}

	it := d.GetSafeIterator()
	count := 0
	for e := it.Next(); e != nil; e = it.Next() {
		count++
		if e.Key().(string) == "5" {
			d.Delete("5")
		}
	}
	it.Release()

	require.Equal(t, 19, int(d.Len()))
	require.Equal(t, int32(0), d.Iterators())
}

func TestUnsafeIteratorFingerprintMismatchPanics(t *testing.T) {
	d := newStringDict()
	require.NoError(t, d.Add("a", 1))
	require.NoError(t, d.Add("b", 2))

	it := d.GetIterator()
	it.Next()
	require.NoError(t, d.Add("c", 3))

	require.Panics(t, func() { it.Release() })
}

func TestUnsafeIteratorNoMutationMatches(t *testing.T) {
	d := newStringDict()
	require.NoError(t, d.Add("a", 1))
	require.NoError(t, d.Add("b", 2))

	it := d.GetIterator()
	for e := it.Next(); e != nil; e = it.Next() {
	}
	require.NotPanics(t, func() { it.Release() })
}

func TestExpandFailsWhileRehashing(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	// finish the rehash that automatic growth started during the adds
	for d.IsRehashing() {
		d.Rehash(100)
	}
	require.NoError(t, d.Expand(1024))
	require.True(t, d.IsRehashing())
	require.ErrorIs(t, d.Expand(2048), ErrAlreadyRehashing)
}

func TestExpandFailsWhenSmallerThanUsed(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	// finish the rehash that automatic growth started during the adds
	for d.IsRehashing() {
		d.Rehash(100)
	}
	require.ErrorIs(t, d.Expand(5), ErrSizeTooSmall)
}

func TestGetRandomKeyOnEmptyDict(t *testing.T) {
	d := newStringDict()
	require.Nil(t, d.GetRandomKey())
}

func TestGetRandomKeyReturnsLiveEntry(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 50; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	for i := 0; i < 200; i++ {
		e := d.GetRandomKey()
		require.NotNil(t, e)
		_, ok := d.FetchValue(e.Key().(string))
		require.True(t, ok)
	}
}

func TestEmptyAllResetsToInitialState(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 500; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	calls := 0
	d.EmptyAll(func() { calls++ })
	require.Equal(t, uint64(0), d.Len())
	require.False(t, d.IsRehashing())
}

func TestScalarValueAccessors(t *testing.T) {
	d := newStringDict()
	e := d.AddRaw("k")
	require.NotNil(t, e)
	e.SetSignedInt(-7)
	require.Equal(t, int64(-7), e.SignedInt())
	e.SetUnsignedInt(42)
	require.Equal(t, uint64(42), e.UnsignedInt())
}

func TestResizeForbiddenWhileRehashing(t *testing.T) {
	d := newStringDict()
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	// finish the rehash that automatic growth started during the adds
	for d.IsRehashing() {
		d.Rehash(100)
	}
	require.NoError(t, d.Expand(1024))
	require.ErrorIs(t, d.Resize(), ErrResizeForbidden)
}

func TestDisableResizeSuppressesAutoGrowth(t *testing.T) {
	DisableResize()
	defer EnableResize()

	d := newStringDict()
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("%d", i), i))
	}
	// the fifth add saw a load factor of exactly 1, which would start a
	// rehash into 8 buckets with resize enabled; with resize disabled and
	// below the force-resize ratio, the table must not have grown past 4.
	require.False(t, d.IsRehashing())
	require.Equal(t, uint64(4), d.ht[0].size)
}

package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/rkvcore/rkv/dict"
	"github.com/rkvcore/rkv/internal/metrics"
)

func TestRecorderTracksRehashAndIterators(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg, "test")

	d := dict.Create(dict.StringKeyType, nil)
	d.Metrics = rec

	for i := 0; i < 50; i++ {
		require.NoError(t, d.Add(string(rune('a'+i%26))+string(rune(i)), i))
	}
	// finish the rehash that automatic growth started during the adds
	for d.IsRehashing() {
		d.Rehash(100)
	}
	require.NoError(t, d.Expand(1024))
	for d.IsRehashing() {
		d.Rehash(4)
	}

	it := d.GetSafeIterator()
	it.Next()
	it.Release()

	metricFamilies, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, metricFamilies)
}

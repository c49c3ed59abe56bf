// Command rkv-bench exercises dict, intset, and sds under a synthetic
// workload and prints periodic stats, the way the rest of the stack's
// binaries seed a component, drive it, and log milestones through the
// ambient logger.
package main

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rkvcore/rkv/dict"
	"github.com/rkvcore/rkv/intset"
	rkvlog "github.com/rkvcore/rkv/internal/log"
	"github.com/rkvcore/rkv/internal/metrics"
	"github.com/rkvcore/rkv/util"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed parsing config: %v\n", err)
		os.Exit(1)
	}
	rkvlog.SetLevel(cfg.LogLevel)

	reg := prometheus.NewRegistry()
	go serveMetrics(cfg.MetricsAddr, reg)

	is := intset.New()
	for i := 0; i < cfg.IntSetSampleSize; i++ {
		is.Add(rand.Int64N(1 << 40))
	}
	level.Info(rkvlog.Logger).Log("msg", "seeded int set", "len", is.Len(), "encoding", is.Encoding())

	// dict.Dict permits only one mutator at a time (see dict/dict.go's
	// package doc): it is not safe to Add/Replace/Delete/Expand/Rehash
	// the same instance from more than one goroutine. Every worker
	// therefore gets its own dictionary and touches nothing but that
	// one for its entire lifetime — there is no shared Dict for two
	// goroutines to race on.
	numWorkers := cfg.WorkerPoolSize
	dicts := make([]*dict.Dict, numWorkers)
	keysPerWorker := cfg.InitialKeys / numWorkers
	for w := 0; w < numWorkers; w++ {
		d := dict.Create(dict.StringKeyType, nil)
		d.Metrics = metrics.NewRecorder(reg, fmt.Sprintf("bench-%d", w))
		d.Logger = rkvlog.NewRateLimitedLogger(5, level.Debug(rkvlog.Logger))
		for i := 0; i < keysPerWorker; i++ {
			if err := d.Add(fmt.Sprintf("w%d-key-%d", w, i), i); err != nil {
				level.Warn(rkvlog.Logger).Log("msg", "duplicate key during seed", "err", err)
			}
		}
		dicts[w] = d
	}
	level.Info(rkvlog.Logger).Log("msg", "seeded dictionaries", "workers", numWorkers, "keys_per_worker", keysPerWorker)

	latencies := util.NewCircularQueue(1024)
	bwg := util.NewBoundedWaitGroup(uint(numWorkers))

	level.Info(rkvlog.Logger).Log("msg", "starting churn loop")

	churnRounds := 200
	for w := 0; w < numWorkers; w++ {
		bwg.Add(1)
		go func(w int) {
			defer bwg.Done()
			d := dicts[w]
			for round := 0; round < churnRounds; round++ {
				start := time.Now()
				key := fmt.Sprintf("w%d-key-%d", w, keysPerWorker+round)
				_ = d.Replace(key, round)
				d.Delete(fmt.Sprintf("w%d-key-%d", w, round))
				latencies.Write(time.Since(start))

				if round%64 == 0 {
					if err := d.Expand(d.Slots() * 2); err != nil {
						level.Debug(rkvlog.Logger).Log("msg", "expand skipped", "worker", w, "err", err)
					}
				}
				d.RehashMilliseconds(int(cfg.RehashBudget / time.Millisecond))
			}
		}(w)
	}

	done := make(chan struct{})
	go func() {
		bwg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-ticker.C:
			printStats(dicts, latencies)
		case <-done:
			break loop
		}
	}

	printStats(dicts, latencies)
	level.Info(rkvlog.Logger).Log("msg", "done")
}

func printStats(dicts []*dict.Dict, latencies *util.CircularQueue) {
	var keys, slots uint64
	rehashing := false
	for _, d := range dicts {
		keys += d.Len()
		slots += d.Slots()
		rehashing = rehashing || d.IsRehashing()
	}
	level.Info(rkvlog.Logger).Log(
		"msg", "stats",
		"keys", keys,
		"slots", humanize.Comma(int64(slots)),
		"rehashing", rehashing,
		"samples", latencies.Len(),
	)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	level.Info(rkvlog.Logger).Log("msg", "serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		level.Error(rkvlog.Logger).Log("msg", "metrics server exited", "err", err)
	}
}

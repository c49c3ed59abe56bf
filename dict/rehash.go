package dict

import "time"

// rehashStep performs the single-bucket migration every add/find/
// delete triggers automatically. It is a no-op while a safe iterator
// is live.
func (d *Dict) rehashStep() {
	if d.iterators.Load() != 0 {
		return
	}
	d.rehash(1)
}

// Rehash migrates up to n non-empty buckets from the old table into
// the new one, bounded internally so it cannot spin forever across a
// sparse table. It reports whether rehashing is still in progress
// after the call. Like rehashStep, it is a no-op while a safe
// iterator is live.
func (d *Dict) Rehash(n int) bool {
	if d.iterators.Load() != 0 {
		return d.IsRehashing()
	}
	return d.rehash(n)
}

func (d *Dict) rehash(n int) bool {
	if !d.IsRehashing() {
		return false
	}

	emptyVisits := n * 10

	for ; n > 0 && d.ht[0].used != 0; n-- {
		for d.ht[0].buckets[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}

		e := d.ht[0].buckets[d.rehashIdx]
		for e != nil {
			next := e.next
			h := uint64(d.typ.hash(e.key)) & d.ht[1].mask
			e.next = d.ht[1].buckets[h]
			d.ht[1].buckets[h] = e
			d.ht[0].used--
			d.ht[1].used++
			e = next
		}
		d.ht[0].buckets[d.rehashIdx] = nil
		d.rehashIdx++

		if d.Metrics != nil {
			d.Metrics.RehashStepped(d)
		}
		if d.Logger != nil {
			d.Logger.Log("msg", "rehash step", "rehashidx", d.rehashIdx, "ht0_used", d.ht[0].used, "ht1_used", d.ht[1].used)
		}
	}

	if d.ht[0].used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1].reset()
		d.rehashIdx = -1
		if d.Metrics != nil {
			d.Metrics.RehashFinished(d)
		}
		return false
	}

	return true
}

// RehashMilliseconds calls Rehash(100) repeatedly until either
// rehashing completes or the wall-clock deadline elapses, returning
// the number of 100-bucket batches performed.
func (d *Dict) RehashMilliseconds(ms int) int {
	deadline := time.Now().Add(time.Duration(ms) * time.Millisecond)
	batches := 0
	for d.Rehash(100) {
		batches++
		if time.Now().After(deadline) {
			break
		}
	}
	return batches
}

